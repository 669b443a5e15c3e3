package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/panchayat/internal/config"
	"github.com/mtlprog/panchayat/internal/logger"
	"github.com/mtlprog/panchayat/internal/repository"
)

func main() {
	// Values from .env never override the real environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	app := &cli.App{
		Name:  "panchayat",
		Usage: "Civic issue tracker for citizens and ward officers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   config.DefaultLogLevel,
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   config.DefaultLogFormat,
				Usage:   "Log format (json, text)",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "store",
				Aliases: []string{"s"},
				Value:   config.DefaultStore,
				Usage:   "Issue store (" + strings.Join(config.Stores, ", ") + ")",
				EnvVars: []string{"PANCHAYAT_STORE"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Value:   config.DefaultDataDir,
				Usage:   "Directory for the file and sqlite stores",
				EnvVars: []string{"PANCHAYAT_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "collection",
				Value:   repository.DefaultCollectionKey,
				Usage:   "Collection key holding the issues",
				EnvVars: []string{"PANCHAYAT_COLLECTION"},
			},
			&cli.StringFlag{
				Name:    "database-url",
				Aliases: []string{"d"},
				Value:   config.DefaultDatabaseURL,
				Usage:   "PostgreSQL database URL (postgres store)",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "accounts",
				Usage:   "YAML file with dashboard accounts (built-in accounts when empty)",
				EnvVars: []string{"PANCHAYAT_ACCOUNTS"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(os.Stderr, logger.ParseLevel(c.String("log-level")), c.String("log-format"))
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			submitCommand(),
			trackCommand(),
			dashboardCommand(),
			statsCommand(),
			setStatusCommand(),
			resolveCommand(),
			exportCommand(),
			migrateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}
