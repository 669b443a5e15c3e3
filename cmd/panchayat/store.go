package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/panchayat/internal/config"
	"github.com/mtlprog/panchayat/internal/database"
	"github.com/mtlprog/panchayat/internal/domain"
	"github.com/mtlprog/panchayat/internal/repository"
	"github.com/mtlprog/panchayat/internal/session"
)

// store is an opened issue repository and the resources behind it.
type store struct {
	repo  *repository.IssueRepository
	close func()
}

// openStore opens the backend selected by --store, migrates it and
// initializes the issue collection.
func openStore(c *cli.Context) (*store, error) {
	ctx := c.Context
	kind := c.String("store")

	var (
		backend repository.Backend
		closeFn = func() {}
	)

	switch kind {
	case config.StoreMemory:
		backend = repository.NewMemoryBackend()

	case config.StoreFile:
		backend = repository.NewFileBackend(c.String("data-dir"))

	case config.StoreSQLite:
		db, err := database.OpenSQLite(ctx, filepath.Join(c.String("data-dir"), config.SQLiteFileName))
		if err != nil {
			return nil, err
		}
		if err := database.RunSQLiteMigrations(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		backend = repository.NewSQLiteBackend(db)
		closeFn = func() { db.Close() }

	case config.StorePostgres:
		db, err := database.New(ctx, c.String("database-url"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.RunMigrations(ctx, db.Pool()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		backend = repository.NewPostgresBackend(db.Pool())
		closeFn = db.Close

	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}

	repo := repository.NewIssueRepository(backend, repository.WithCollectionKey(c.String("collection")))
	if err := repo.Init(ctx); err != nil {
		closeFn()
		return nil, fmt.Errorf("failed to open issue collection: %w", err)
	}

	slog.Debug("issue store ready", "store", kind, "collection", c.String("collection"))

	return &store{repo: repo, close: closeFn}, nil
}

// loadDirectory builds the dashboard account directory from --accounts.
func loadDirectory(c *cli.Context) (*session.Directory, error) {
	specs, err := config.LoadAccounts(c.String("accounts"))
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(specs))
	for _, spec := range specs {
		account, err := session.NewAccount(spec.ID, spec.Secret, spec.SecretHash, spec.Role, spec.Category, spec.Name)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", spec.ID, err)
		}
		accounts = append(accounts, account)
	}

	return session.NewDirectory(accounts)
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create the issue store schema and collection",
		Action: func(c *cli.Context) error {
			s, err := openStore(c)
			if err != nil {
				return err
			}
			defer s.close()

			slog.Info("store migrated", "store", c.String("store"), "issues", len(s.repo.GetAll(c.Context)))
			return nil
		},
	}
}
