package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/gradebook/internal/adapter/connectrpc"
	adapterrepo "github.com/eslsoft/gradebook/internal/adapter/repository"
	"github.com/eslsoft/gradebook/internal/infrastructure/config"
	"github.com/eslsoft/gradebook/internal/infrastructure/database"
	"github.com/eslsoft/gradebook/internal/infrastructure/database/migrate"
	"github.com/eslsoft/gradebook/internal/repository"
	"github.com/eslsoft/gradebook/internal/usecase"
)

const remoteTimeout = 15 * time.Second

// OpenCourseTree builds and loads the session's course tree for the configured store
// mode. The returned cleanup releases the backing connection.
func OpenCourseTree(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (usecase.CourseTree, func(), error) {
	logger = logger.WithField("user_id", cfg.User.ID)

	var (
		tree    usecase.CourseTree
		cleanup = func() {}
	)
	switch strings.ToLower(cfg.Store.Mode) {
	case config.StoreRemote:
		client := connectrpc.NewCourseClient(&http.Client{Timeout: remoteTimeout}, cfg.Store.RemoteURL, cfg.User.ID)
		tree = usecase.NewRemoteCourseTree(cfg.User.ID, client, logger)
	case config.StoreLocal:
		store, closeStore, err := openKeyValueStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup = closeStore
		tree = usecase.NewLocalCourseTree(cfg.User.ID, adapterrepo.NewCourseSnapshotRepository(store), logger)
	default:
		return nil, nil, fmt.Errorf("unsupported store mode %q", cfg.Store.Mode)
	}

	if err := tree.Load(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("load course: %w", err)
	}
	return tree, cleanup, nil
}

func openKeyValueStore(ctx context.Context, cfg *config.Config) (repository.KeyValueStore, func(), error) {
	switch strings.ToLower(cfg.Store.Local.Backend) {
	case config.BackendRedis:
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.Redis.Addr},
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return adapterrepo.NewRedisKeyValueStore(client), func() { _ = client.Close() }, nil
	case config.BackendSQLite:
		db, err := database.OpenSQLite(ctx, config.SQLiteDSN(cfg.Store.Local.Path))
		if err != nil {
			return nil, nil, err
		}
		if err := migrate.Create(ctx, db.DB, db.Dialect, migrate.KvEntriesTable); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return adapterrepo.NewSQLKeyValueStore(db), func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported local store backend %q", cfg.Store.Local.Backend)
	}
}
