package repository

import (
	"context"
	stdsql "database/sql"
	"errors"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/redis/go-redis/v9"

	"github.com/eslsoft/gradebook/internal/entity"
	"github.com/eslsoft/gradebook/internal/infrastructure/database"
	"github.com/eslsoft/gradebook/internal/repository"
)

const tableKV = "kv_entries"

// SQLKeyValueStore keeps blobs in the kv_entries table.
type SQLKeyValueStore struct {
	db      *stdsql.DB
	dialect string
}

func NewSQLKeyValueStore(db *database.DB) repository.KeyValueStore {
	return &SQLKeyValueStore{db: db.DB, dialect: db.Dialect}
}

func (s *SQLKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	query, args := sql.Dialect(s.dialect).
		Select("value").
		From(sql.Table(tableKV)).
		Where(sql.EQ("key", key)).
		Query()
	var value []byte
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, stdsql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, storageError("kv get", err)
	}
	return value, nil
}

func (s *SQLKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	query, args := sql.Dialect(s.dialect).
		Insert(tableKV).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		OnConflict(
			sql.ConflictColumns("key"),
			sql.ResolveWithNewValues(),
		).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return storageError("kv set", err)
	}
	return nil
}

func (s *SQLKeyValueStore) Delete(ctx context.Context, key string) error {
	query, args := sql.Dialect(s.dialect).Delete(tableKV).Where(sql.EQ("key", key)).Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return storageError("kv delete", err)
	}
	return nil
}

// RedisKeyValueStore keeps blobs as plain redis string keys.
type RedisKeyValueStore struct {
	client redis.UniversalClient
}

func NewRedisKeyValueStore(client redis.UniversalClient) repository.KeyValueStore {
	return &RedisKeyValueStore{client: client}
}

func (s *RedisKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, storageError("redis get", err)
	}
	return value, nil
}

func (s *RedisKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return storageError("redis set", err)
	}
	return nil
}

func (s *RedisKeyValueStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return storageError("redis del", err)
	}
	return nil
}

