package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	sqlite "modernc.org/sqlite"
)

// Database only stores the application log, prices are never persisted.
// Reads go through a pool, writes through a single connection.
type Database struct {
	logger *slog.Logger
	read   *sql.DB
	write  *sql.DB
}

const pragmas = `
	PRAGMA journal_mode = WAL;
	PRAGMA synchronous = NORMAL;
	PRAGMA temp_store = MEMORY;
	PRAGMA busy_timeout = 5000;
	PRAGMA trusted_schema = OFF;
`

var registerHook sync.Once

func openPool(path string, maxConns int) (*sql.DB, error) {
	pool, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(maxConns)
	pool.SetConnMaxIdleTime(time.Minute)
	return pool, nil
}

// New opens the log database at path and brings its schema up to date.
func New(ctx context.Context, path string) (*Database, error) {
	registerHook.Do(func() {
		sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, _ string) error {
			_, err := conn.ExecContext(context.Background(), pragmas, nil)
			return err
		})
	})

	read, err := openPool(path, 4)
	if err != nil {
		return nil, fmt.Errorf("opening log database for reading: %w", err)
	}
	write, err := openPool(path, 1)
	if err != nil {
		read.Close()
		return nil, fmt.Errorf("opening log database for writing: %w", err)
	}

	d := &Database{
		logger: slog.Default().With(slog.String("module", "database")),
		read:   read,
		write:  write,
	}

	if err := d.migrate(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("log database migration failed: %w", err)
	}

	return d, nil
}

// SetLogger replaces the logger once logging to the database itself is set up.
func (d *Database) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

func (d *Database) Close() {
	d.read.Close()
	d.write.Close()
}
