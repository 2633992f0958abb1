package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS receipts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	filename TEXT UNIQUE,
	store TEXT,
	date TEXT,
	time TEXT,
	payment TEXT,
	subtotal REAL,
	tax REAL,
	total REAL,
	items TEXT,
	extractor TEXT,
	uploaded_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_receipts_store ON receipts(store);
`

type Config struct {
	Path        string
	BusyTimeout time.Duration
}

// Open connects to the sqlite database at cfg.Path and ensures the schema exists.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "path", cfg.Path)

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, err
	}
	// sqlite writes serialize on a single connection; avoids SQLITE_BUSY under load
	db.SetMaxOpenConns(1)

	if cfg.BusyTimeout > 0 {
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = ?", cfg.BusyTimeout.Milliseconds()); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		logger.Error("failed to create schema", "error", err)
		_ = db.Close()
		return nil, err
	}

	logger.Info("successfully connected to database")
	return db, nil
}

// Close closes the database connection gracefully.
func Close(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	logger.Info("closing database connection")
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}

// HealthCheck pings the database to catch path or lock issues early.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}
