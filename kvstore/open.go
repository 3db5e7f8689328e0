package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/pharmacie-api/config"
	"github.com/giygas/pharmacie-api/entities"
	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/giygas/pharmacie-api/logging"
	"github.com/redis/go-redis/v9"
)

// Open builds the store selected by cfg.StoreDriver and checks it answers.
func Open(ctx context.Context, cfg *config.Config) (interfaces.TransactionalKVStore, error) {
	var (
		store interfaces.TransactionalKVStore
		err   error
	)

	switch cfg.StoreDriver {
	case config.DriverMemory, "":
		store = NewMemoryStore()
	case config.DriverSQLite, config.DriverPostgres, config.DriverMySQL:
		store, err = OpenSQL(cfg.StoreDriver, cfg.StoreDSN)
		if err != nil {
			return nil, err
		}
	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		store = NewRedisStore(rdb, cfg.RedisPrefix, entities.AllKeys())
	default:
		return nil, fmt.Errorf("kvstore: unsupported driver %q", cfg.StoreDriver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("kvstore: ping %s: %w", cfg.StoreDriver, err)
	}

	logging.Info("Key-value store ready", "driver", cfg.StoreDriver)
	return store, nil
}
