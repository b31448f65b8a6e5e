package storage

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/at-ishikawa/sigmareview/internal/config"
)

// RedisStorage keeps each entry under <keyPrefix><name>.
type RedisStorage struct {
	client    *goredis.Client
	keyPrefix string
}

func NewRedisStorage(ctx context.Context, cfg config.RedisConfig) (*RedisStorage, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Address, err)
	}
	return newRedisStorage(client, cfg.KeyPrefix), nil
}

func newRedisStorage(client *goredis.Client, keyPrefix string) *RedisStorage {
	return &RedisStorage{client: client, keyPrefix: keyPrefix}
}

// Key returns the redis key of an entry.
func (s *RedisStorage) Key(name string) string {
	return s.keyPrefix + name
}

func (s *RedisStorage) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.Key(name)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis GET %s > %w", s.Key(name), err)
	}
	return data, nil
}

func (s *RedisStorage) Save(ctx context.Context, name string, data []byte) error {
	if err := s.client.Set(ctx, s.Key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("redis SET %s > %w", s.Key(name), err)
	}
	return nil
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}
