package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/panchayat/internal/domain"
	"github.com/mtlprog/panchayat/internal/export"
	"github.com/mtlprog/panchayat/internal/handler/dto"
	"github.com/mtlprog/panchayat/internal/service"
	"github.com/mtlprog/panchayat/internal/session"
)

// loginFlags identify the dashboard account a command acts as.
func loginFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{Name: "id", Required: true, Usage: "Account id", EnvVars: []string{"PANCHAYAT_ID"}},
		&cli.StringFlag{Name: "secret", Required: true, Usage: "Account secret", EnvVars: []string{"PANCHAYAT_SECRET"}},
		&cli.StringFlag{Name: "role", Value: string(domain.RoleOfficer), Usage: "officer or admin", EnvVars: []string{"PANCHAYAT_ROLE"}},
	}, extra...)
}

func statusFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "status",
		Value: "all",
		Usage: "Status filter (all, Submitted, In Progress, Resolved)",
	}
}

// dashboardEnv is an opened store and a logged-in session.
type dashboardEnv struct {
	store   *store
	service *service.IssueService
	session *session.Session
}

// openDashboard opens the store and logs in with the account flags.
func openDashboard(c *cli.Context) (*dashboardEnv, error) {
	directory, err := loadDirectory(c)
	if err != nil {
		return nil, err
	}

	sess := session.New(directory)
	viewer, err := sess.Login(session.Credentials{
		ID:     c.String("id"),
		Secret: c.String("secret"),
		Role:   domain.Role(c.String("role")),
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("dashboard login", "viewer_id", viewer.ID, "role", viewer.Role, "scope", scopeLabel(viewer))

	s, err := openStore(c)
	if err != nil {
		return nil, err
	}

	return &dashboardEnv{
		store:   s,
		service: newIssueService(c.Context, s, nil),
		session: sess,
	}, nil
}

// scopeLabel names the categories a viewer can see.
func scopeLabel(viewer domain.Viewer) string {
	if viewer.IsOfficer() {
		return dto.CategoryLabel(viewer.Category)
	}
	return "All categories"
}

func (e *dashboardEnv) close() {
	e.session.Logout()
	e.store.close()
}

func dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "dashboard",
		Usage: "List the issues visible to an officer or the admin",
		Flags: loginFlags(statusFlag()),
		Action: func(c *cli.Context) error {
			filter, err := service.ParseStatusFilter(c.String("status"))
			if err != nil {
				return err
			}

			env, err := openDashboard(c)
			if err != nil {
				return err
			}
			defer env.close()

			viewer, err := env.session.Require()
			if err != nil {
				return err
			}

			issues, err := env.service.Dashboard(c.Context, viewer, filter)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "%s (%s), %s, status %s\n", viewer.Name, viewer.Role, scopeLabel(viewer), filter)

			tw := table.NewWriter()
			tw.SetOutputMirror(c.App.Writer)
			tw.AppendHeader(table.Row{"ID", "Category", "Title", "Location", "Urgency", "Status", "Created"})
			for _, issue := range issues {
				tw.AppendRow(table.Row{
					issue.ID,
					dto.CategoryLabel(issue.Category),
					issue.Title,
					issue.Location,
					issue.Urgency,
					issue.Status,
					issue.CreatedAt.Local().Format(time.DateTime),
				})
			}
			tw.AppendFooter(table.Row{"", "", "", "", "", "Total", len(issues)})
			tw.Render()
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show issue counts for an officer or the admin",
		Flags: loginFlags(),
		Action: func(c *cli.Context) error {
			env, err := openDashboard(c)
			if err != nil {
				return err
			}
			defer env.close()

			viewer, err := env.session.Require()
			if err != nil {
				return err
			}

			stats, err := env.service.Stats(c.Context, viewer)
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(c.App.Writer)
			tw.AppendHeader(table.Row{"Total", "Pending", "In Progress", "Resolved"})
			tw.AppendRow(table.Row{stats.Total, stats.Submitted, stats.InProgress, stats.Resolved})
			tw.Render()

			categories := make([]domain.Category, 0, len(stats.ByCategory))
			for category := range stats.ByCategory {
				categories = append(categories, category)
			}
			sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

			byCategory := table.NewWriter()
			byCategory.SetOutputMirror(c.App.Writer)
			byCategory.AppendHeader(table.Row{"Category", "Issues"})
			for _, category := range categories {
				byCategory.AppendRow(table.Row{dto.CategoryLabel(category), stats.ByCategory[category]})
			}
			byCategory.Render()

			if stats.OldestOpenSince != nil {
				fmt.Fprintf(c.App.Writer, "oldest open issue since %s\n", stats.OldestOpenSince.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}

func setStatusCommand() *cli.Command {
	return &cli.Command{
		Name:      "set-status",
		Usage:     "Move an issue to a new status",
		ArgsUsage: "<tracking-id> <status>",
		Flags:     loginFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected a tracking id and a status")
			}

			env, err := openDashboard(c)
			if err != nil {
				return err
			}
			defer env.close()

			viewer, err := env.session.Require()
			if err != nil {
				return err
			}

			issue, err := env.service.TransitionStatus(c.Context, viewer, c.Args().Get(0), domain.Status(c.Args().Get(1)))
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "%s is now %s\n", issue.ID, issue.Status)
			return nil
		},
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Mark an issue resolved",
		ArgsUsage: "<tracking-id>",
		Flags:     loginFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one tracking id")
			}

			env, err := openDashboard(c)
			if err != nil {
				return err
			}
			defer env.close()

			viewer, err := env.session.Require()
			if err != nil {
				return err
			}

			issue, err := env.service.Resolve(c.Context, viewer, c.Args().First())
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "%s is now %s\n", issue.ID, issue.Status)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the visible issues as CSV",
		Flags: loginFlags(statusFlag(), &cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file (stdout when empty)",
		}),
		Action: func(c *cli.Context) error {
			filter, err := service.ParseStatusFilter(c.String("status"))
			if err != nil {
				return err
			}

			env, err := openDashboard(c)
			if err != nil {
				return err
			}
			defer env.close()

			viewer, err := env.session.Require()
			if err != nil {
				return err
			}

			issues, err := env.service.Dashboard(c.Context, viewer, filter)
			if err != nil {
				return err
			}

			path := c.String("output")
			if path == "" {
				return export.WriteCSV(c.App.Writer, issues)
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if err := export.WriteCSV(f, issues); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
}
