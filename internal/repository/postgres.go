package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores collections as JSONB rows in the collections table.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend creates a new PostgresBackend.
func NewPostgresBackend(pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

// Ping checks that the database is reachable.
func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

// Open inserts an empty collection row unless one exists.
func (b *PostgresBackend) Open(ctx context.Context, key string) error {
	query, args, err := insertEmptyCollection(key)
	if err != nil {
		return err
	}

	if _, err := b.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("open collection %s: %w", key, err)
	}
	return nil
}

// Read returns the collection document, or nil if the row does not exist.
func (b *PostgresBackend) Read(ctx context.Context, key string) ([]byte, error) {
	query, args, err := psql.
		Select("document").
		From(collectionsTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Read query for collection %s: %w", key, err)
	}

	return scanDocument(b.pool.QueryRow(ctx, query, args...), key)
}

// Write upserts the collection document.
func (b *PostgresBackend) Write(ctx context.Context, key string, doc []byte) error {
	query, args, err := psql.
		Insert(collectionsTable).
		Columns("key", "document").
		Values(key, doc).
		Suffix("ON CONFLICT (key) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Write query for collection %s: %w", key, err)
	}

	if _, err := b.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("write collection %s: %w", key, err)
	}
	return nil
}

// Update runs fn on the row locked with FOR UPDATE and stores its result
// in the same transaction.
func (b *PostgresBackend) Update(ctx context.Context, key string, fn func(doc []byte) ([]byte, error)) error {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	query, args, err := insertEmptyCollection(key)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("open collection %s: %w", key, err)
	}

	query, args, err = psql.
		Select("document").
		From(collectionsTable).
		Where(sq.Eq{"key": key}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("build locked Read query for collection %s: %w", key, err)
	}

	doc, err := scanDocument(tx.QueryRow(ctx, query, args...), key)
	if err != nil {
		return err
	}

	next, err := fn(doc)
	if err != nil {
		return err
	}

	query, args, err = psql.
		Update(collectionsTable).
		Set("document", next).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Update query for collection %s: %w", key, err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update collection %s: %w", key, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertEmptyCollection(key string) (string, []any, error) {
	query, args, err := psql.
		Insert(collectionsTable).
		Columns("key", "document").
		Values(key, emptyCollection).
		Suffix("ON CONFLICT (key) DO NOTHING").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build Open query for collection %s: %w", key, err)
	}
	return query, args, nil
}

func scanDocument(row pgx.Row, key string) ([]byte, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read collection %s: %w", key, err)
	}
	return doc, nil
}
