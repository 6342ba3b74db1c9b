// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// The pure-Go modernc.org/sqlite driver is used, so no C toolchain is needed.
// SQL is built with goqu (sqlite3 dialect) and always rendered in prepared mode,
// so values travel as driver arguments and the driver owns time formatting.
// The schema lives in migrations/ and is applied with goose.
//
// The pattern is always:
//  1. build the statement with goqu → ToSQL() gives SQL + args
//  2. conn.QueryContext / conn.ExecContext (or the tx equivalent)
//  3. rows.Scan(&field1, &field2)
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/pressly/goose/v3"
	sqlitedrv "modernc.org/sqlite"

	"github.com/sakif/shopping-list/internal/apperror"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	listsTable   = "shopping_lists"
	membersTable = "list_members"
	itemsTable   = "items"
)

// DB wraps a sql.DB connection pool and provides repository methods.
// It implements repository.Store.
type DB struct {
	conn    *sql.DB
	dialect goqu.DialectWrapper
}

// New opens the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/shoplist.db" → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests, lost on close)
//
// The pool is limited to one connection. SQLite serialises writers anyway,
// PRAGMAs are per connection, and an in-memory database exists only on the
// connection that created it.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. Items reference their list
	// with ON DELETE CASCADE, which only fires with this enabled.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{
		conn:    conn,
		dialect: goqu.Dialect("sqlite3"),
	}

	if err := db.Migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Migrate applies every pending migration from the embedded migrations directory.
// It is idempotent; New calls it, and the migrate command can run it on its own.
func (db *DB) Migrate() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db.conn, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// SchemaVersion returns the latest applied migration version.
func (db *DB) SchemaVersion() (int64, error) {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("setting goose dialect: %w", err)
	}
	return goose.GetDBVersion(db.conn)
}

// sqlBuilder is satisfied by every goqu dataset (select, insert, update, delete).
type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (db *DB) exec(ctx context.Context, q queryer, b sqlBuilder) (sql.Result, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building statement: %w", err)
	}
	return q.ExecContext(ctx, query, args...)
}

func (db *DB) query(ctx context.Context, q queryer, b sqlBuilder) (*sql.Rows, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return q.QueryContext(ctx, query, args...)
}

func (db *DB) queryRow(ctx context.Context, q queryer, b sqlBuilder) (*sql.Row, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return q.QueryRowContext(ctx, query, args...), nil
}

// inTx runs fn inside a transaction, rolling back when fn fails.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// storageError turns a driver failure into an apperror.Storage carrying the
// operation name and, when the driver exposes one, SQLite's result code.
// Errors that are already application errors (not found, etc.) pass through.
func storageError(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	code := 0
	var sqlErr *sqlitedrv.Error
	if errors.As(err, &sqlErr) {
		code = sqlErr.Code()
	}
	return apperror.Storage(op, code, fmt.Errorf("sqlite: %w", err))
}
