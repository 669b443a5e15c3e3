package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/panchayat/internal/domain"
	"github.com/mtlprog/panchayat/internal/handler/dto"
	"github.com/mtlprog/panchayat/internal/service"
)

func submitCommand() *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "Report a civic issue and print its tracking id",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Required: true, Usage: "Issue category (road, light, water, drain, waste, power, prop, other)"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Short title"},
			&cli.StringFlag{Name: "description", Usage: "Details of the problem"},
			&cli.StringFlag{Name: "location", Required: true, Usage: "Where the problem is"},
			&cli.StringFlag{Name: "urgency", Value: string(domain.UrgencyMedium), Usage: "low, medium or high"},
			&cli.StringSliceFlag{Name: "image", Usage: "Image data URL, repeatable up to 3 times"},
			&cli.BoolFlag{Name: "anonymous", Usage: "Do not store contact details"},
			&cli.StringFlag{Name: "phone", Usage: "Contact phone"},
			&cli.StringFlag{Name: "email", Usage: "Contact email"},
		},
		Action: func(c *cli.Context) error {
			s, err := openStore(c)
			if err != nil {
				return err
			}
			defer s.close()

			svc := newIssueService(c.Context, s, nil)
			issue, err := svc.Submit(c.Context, service.Draft{
				Category:    domain.Category(c.String("category")),
				Title:       c.String("title"),
				Description: c.String("description"),
				Images:      c.StringSlice("image"),
				Location:    c.String("location"),
				Urgency:     domain.Urgency(c.String("urgency")),
				IsAnonymous: c.Bool("anonymous"),
				Phone:       c.String("phone"),
				Email:       c.String("email"),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(c.App.Writer, issue.ID)
			return nil
		},
	}
}

func trackCommand() *cli.Command {
	return &cli.Command{
		Name:      "track",
		Usage:     "Show the status timeline of an issue",
		ArgsUsage: "<tracking-id>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one tracking id")
			}

			s, err := openStore(c)
			if err != nil {
				return err
			}
			defer s.close()

			issue, err := newIssueService(c.Context, s, nil).Track(c.Context, c.Args().First())
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "%s  %s  [%s]\n", issue.ID, dto.CategoryLabel(issue.Category), issue.Status)
			if issue.Title != "" {
				fmt.Fprintln(c.App.Writer, issue.Title)
			}
			fmt.Fprintln(c.App.Writer, issue.Location)

			tw := table.NewWriter()
			tw.SetOutputMirror(c.App.Writer)
			tw.AppendHeader(table.Row{"Status", "When"})
			for _, change := range issue.StatusHistory {
				tw.AppendRow(table.Row{change.Status, change.Timestamp.Local().Format(time.DateTime)})
			}
			tw.Render()
			return nil
		},
	}
}
