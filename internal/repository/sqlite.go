package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
)

// SQLiteBackend stores collections as text rows in a local SQLite database.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend creates a new SQLiteBackend.
func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

// Ping checks that the database file is usable.
func (b *SQLiteBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Open inserts an empty collection row unless one exists.
func (b *SQLiteBackend) Open(ctx context.Context, key string) error {
	query, args, err := sqlite.
		Insert(collectionsTable).
		Columns("key", "document").
		Values(key, string(emptyCollection)).
		Suffix("ON CONFLICT (key) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Open query for collection %s: %w", key, err)
	}

	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("open collection %s: %w", key, err)
	}
	return nil
}

// Read returns the collection document, or nil if the row does not exist.
func (b *SQLiteBackend) Read(ctx context.Context, key string) ([]byte, error) {
	return b.read(ctx, b.db, key)
}

// Write upserts the collection document.
func (b *SQLiteBackend) Write(ctx context.Context, key string, doc []byte) error {
	return b.write(ctx, b.db, key, doc)
}

// Update runs fn inside an immediate transaction, which holds the database
// write lock from the first statement.
func (b *SQLiteBackend) Update(ctx context.Context, key string, fn func(doc []byte) ([]byte, error)) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	doc, err := b.read(ctx, tx, key)
	if err != nil {
		return err
	}

	next, err := fn(doc)
	if err != nil {
		return err
	}

	if err := b.write(ctx, tx, key, next); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// execQuerier is satisfied by *sql.DB and *sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (b *SQLiteBackend) read(ctx context.Context, q execQuerier, key string) ([]byte, error) {
	query, args, err := sqlite.
		Select("document").
		From(collectionsTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Read query for collection %s: %w", key, err)
	}

	var doc string
	if err := q.QueryRowContext(ctx, query, args...).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read collection %s: %w", key, err)
	}
	return []byte(doc), nil
}

func (b *SQLiteBackend) write(ctx context.Context, q execQuerier, key string, doc []byte) error {
	query, args, err := sqlite.
		Insert(collectionsTable).
		Columns("key", "document").
		Values(key, string(doc)).
		Suffix("ON CONFLICT (key) DO UPDATE SET document = excluded.document, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Write query for collection %s: %w", key, err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("write collection %s: %w", key, err)
	}
	return nil
}
