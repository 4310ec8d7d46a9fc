package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Options select and configure a storage driver.
type Options struct {
	Driver string // memory, file, redis, sqlite, postgres, mongo

	Dir string // file

	RedisAddr     string
	RedisPassword string

	SQLitePath string

	Postgres Credentials

	MongoURI string
	MongoDB  string
}

// Open builds the Store for opts.Driver. Remote drivers are wrapped in a circuit breaker.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (Store, error) {
	switch opts.Driver {
	case "", "memory":
		return NewMemoryStore(), nil

	case "file":
		return NewFileStore(opts.Dir)

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return withBreaker(NewRedisStore(client), "redis", logger), nil

	case "sqlite":
		return NewSQLiteStore(opts.SQLitePath)

	case "postgres":
		s, err := NewPostgresStore(opts.Postgres)
		if err != nil {
			return nil, err
		}
		return withBreaker(s, "postgres", logger), nil

	case "mongo":
		db, err := ConnectMongoDB(ctx, opts.MongoURI, opts.MongoDB)
		if err != nil {
			return nil, err
		}
		return withBreaker(NewMongoStore(db), "mongo", logger), nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
}

func withBreaker(s Store, name string, logger *slog.Logger) Store {
	settings := DefaultBreakerSettings
	settings.Name = "storage-" + name
	return NewBreakerStore(s, settings, logger)
}
