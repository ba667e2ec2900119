package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/gradebook/internal/infrastructure/config"
)

const connectTimeout = 5 * time.Second

// DB is a database/sql handle together with the ent dialect used to build queries
// against it.
type DB struct {
	*sql.DB
	Dialect string
}

// Open connects to the configured relational database. Postgres goes through the
// pgx pool, SQLite through go-sqlite3 with foreign keys enforced.
func Open(cfg *config.Config, logger logrus.FieldLogger) (*DB, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch cfg.DatabaseDriver() {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.DriverSQLite:
		db, err := OpenSQLite(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// OpenSQLite opens a single-connection SQLite database.
func OpenSQLite(ctx context.Context, dsn string) (*DB, error) {
	rawDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	rawDB.SetMaxOpenConns(1)
	rawDB.SetMaxIdleConns(1)

	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := rawDB.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		rawDB.Close()
		return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
	}
	return &DB{DB: rawDB, Dialect: dialect.SQLite}, nil
}
