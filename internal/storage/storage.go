package storage

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// DB wraps a sql.DB for the session store.
type DB struct {
	conn *sql.DB
	log  zerolog.Logger
}

// Option customises Open.
type Option func(*DB)

// WithLogger routes migration and storage logs to l.
func WithLogger(l zerolog.Logger) Option {
	return func(db *DB) { db.log = l }
}

// Open opens (or creates) the SQLite database at the given path and migrates it to the
// latest schema.
func Open(path string, opts ...Option) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across queries and
	// serialises writers.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, log: zerolog.Nop()}
	for _, o := range opts {
		o(db)
	}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrate() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{db.log})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db.conn, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// gooseLogger adapts zerolog to goose.Logger.
type gooseLogger struct {
	l zerolog.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.l.Debug().Str("component", "goose").Msgf(format, v...)
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.l.Fatal().Str("component", "goose").Msgf(format, v...)
}
