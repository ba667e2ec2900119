package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/gradebook/internal/infrastructure/config"
)

// openPostgres connects through a pgx pool and exposes the pool as a database/sql
// handle for the ent builders.
func openPostgres(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*DB, func(), error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, nil, fmt.Errorf("parse pool config: %w", err)
	}
	poolCfg.MaxConns = int32(max(cfg.Database.MaxConns, 1))
	if cfg.Database.LogSQL {
		poolCfg.ConnConfig.Tracer = queryTracer(logger.WithField("component", "pgx"))
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	return &DB{DB: db, Dialect: dialect.Postgres}, func() {
		_ = db.Close()
		pool.Close()
	}, nil
}

// queryTracer logs every statement at debug level.
func queryTracer(logger logrus.FieldLogger) *tracelog.TraceLog {
	return &tracelog.TraceLog{
		LogLevel: tracelog.LogLevelTrace,
		Logger: tracelog.LoggerFunc(func(_ context.Context, lvl tracelog.LogLevel, msg string, data map[string]any) {
			logger.WithFields(data).WithField("pgx_level", lvl.String()).Debug(msg)
		}),
	}
}
