// Package sqlite implements the persistence gateway on SQLite.
//
// Queries are built with goqu's sqlite3 dialect and scanned into row
// structs with sqlx; the row structs convert to domain types.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/bookshelfapp/bookshelf-server/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

var (
	dialect = goqu.Dialect("sqlite3")
	json    = jsoniter.ConfigCompatibleWithStandardLibrary
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var _ store.Gateway = (*Store)(nil)

// Store provides SQLite-backed persistence for the bookshelf server.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open creates a new SQLite store at the given path.
// It configures WAL mode, enables foreign keys on every pooled connection,
// and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	logger.Debug("sqlite store opened", "path", path)

	return &Store{
		db:     sqlx.NewDb(db, "sqlite3"),
		logger: logger,
	}, nil
}

// dsn builds a connection string whose pragmas apply to each new connection.
// Transactions start IMMEDIATE so read-then-write transactions never fail
// on lock upgrade.
func dsn(path string) string {
	params := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=journal_mode(WAL)",
		"_pragma=synchronous(NORMAL)",
		"_pragma=busy_timeout(5000)",
		"_txlock=immediate",
	}
	return "file:" + path + "?" + strings.Join(params, "&")
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn inside a transaction, committing when fn returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// builder is satisfied by every goqu dataset.
type builder interface {
	ToSQL() (string, []any, error)
}

// get runs a single-row query. sql.ErrNoRows becomes store.ErrNotFound.
func get(ctx context.Context, q sqlx.QueryerContext, dest any, b builder) error {
	query, args, err := b.ToSQL()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := sqlx.GetContext(ctx, q, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

// selectAll runs a multi-row query into a slice.
func selectAll(ctx context.Context, q sqlx.QueryerContext, dest any, b builder) error {
	query, args, err := b.ToSQL()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return sqlx.SelectContext(ctx, q, dest, query, args...)
}

// exec runs a write statement and classifies constraint violations.
// It returns the number of affected rows.
func exec(ctx context.Context, e sqlx.ExecerContext, b builder) (int64, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(err)
	}
	return res.RowsAffected()
}

// count runs a COUNT(*) over table.
func count(ctx context.Context, q sqlx.QueryerContext, table string) (int, error) {
	var n int
	if err := get(ctx, q, &n, dialect.From(table).Select(goqu.COUNT(goqu.Star())).Prepared(true)); err != nil {
		return 0, err
	}
	return n, nil
}

// classify maps SQLite constraint failures to store sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return store.ErrAlreadyExists.WithCause(err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return store.ErrReferenceNotFound.WithCause(err)
	default:
		return err
	}
}

// formatTime formats a time.Time for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// insertionOrder orders rows by creation time, then by rowid for ties.
func insertionOrder() []exp.OrderedExpression {
	return []exp.OrderedExpression{
		goqu.C("created_at").Asc(),
		goqu.L("rowid").Asc(),
	}
}
