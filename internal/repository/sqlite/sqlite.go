// Package sqlite implements the repository interfaces on top of SQLite.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite, so the binary builds without a C
// toolchain and cross-compiles like any other Go program.
//
// Queries go through sqlx, which keeps plain SQL but scans rows straight into
// structs using their `db` tags. The schema is owned by goose migrations
// embedded in the binary (see migrations/).
package sqlite

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// DB owns the connection pool. The per-table repositories returned by
// Users and Movies share it.
type DB struct {
	conn   *sqlx.DB
	logger *slog.Logger
}

// New opens (or creates) the database file at dbPath, and its directory, and
// applies any pending migrations.
//
// PRAGMAS IN THE DSN:
// foreign_keys and busy_timeout are per-connection settings in SQLite. Passing
// them as _pragma parameters makes the driver apply them to every connection
// the pool opens, not just the first one.
//   - foreign_keys(1): enforce users → movies references (and ON DELETE CASCADE)
//   - busy_timeout(5000): wait up to 5s for a lock instead of failing at once
//   - journal_mode(WAL): readers don't block the writer
func New(dbPath string, logger *slog.Logger) (*DB, error) {
	// Create the parent directory on first run (like `mkdir -p`).
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: creating database directory: %w", err)
		}
	}

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	conn, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	db := &DB{conn: conn, logger: logger}

	if err := db.Migrate(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserDB {
	return &UserDB{db: db}
}

// Movies returns the movie repository backed by this database.
func (db *DB) Movies() *MovieDB {
	return &MovieDB{db: db}
}

// Migrate applies every pending migration. Running it on an up-to-date
// database is a no-op.
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.prepareGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.conn.DB, migrationsDir); err != nil {
		return fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return nil
}

// Reset rolls back every migration, dropping all tables and their data.
// Call Migrate afterwards to recreate an empty schema.
func (db *DB) Reset(ctx context.Context) error {
	if err := db.prepareGoose(); err != nil {
		return err
	}
	if err := goose.ResetContext(ctx, db.conn.DB, migrationsDir); err != nil {
		return fmt.Errorf("sqlite: resetting schema: %w", err)
	}
	return nil
}

// prepareGoose points goose at the embedded migrations. goose keeps this
// configuration in package-level state, so it is set before every run.
func (db *DB) prepareGoose() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger: db.logger})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("sqlite: setting goose dialect: %w", err)
	}
	return nil
}

// gooseLogger routes goose's printf-style output into slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), slog.String("component", "goose"))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...), slog.String("component", "goose"))
	os.Exit(1)
}

// isUniqueViolation reports whether err is SQLite's UNIQUE constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlitedriver.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
