package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/giygas/pharmacie-api/interfaces"
	"github.com/redis/go-redis/v9"
)

// Compile-time check to ensure RedisStore implements TransactionalKVStore
var _ interfaces.TransactionalKVStore = (*RedisStore)(nil)

// RedisStore keeps each key as a redis string under prefix+key.
type RedisStore struct {
	rdb       *redis.Client
	prefix    string
	watchKeys []string
}

// NewRedisStore wraps a client. Update watches every key in watchKeys, so it
// must list all keys a transaction may read.
func NewRedisStore(rdb *redis.Client, prefix string, watchKeys []string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, watchKeys: watchKeys}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

// Get returns the value stored under key
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return redisGet(ctx, s.rdb, s.key(key))
}

// Set replaces the value under key
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("kvstore: set %s: %w", key, err)
	}
	return nil
}

// Update runs fn with WATCH on the collection keys and commits its writes in
// one MULTI/EXEC. If a watched key changed meanwhile nothing is written and
// ErrConflict is returned.
func (s *RedisStore) Update(ctx context.Context, fn func(tx interfaces.KVTx) error) error {
	watched := make([]string, len(s.watchKeys))
	for i, k := range s.watchKeys {
		watched[i] = s.key(k)
	}

	err := s.rdb.Watch(ctx, func(rtx *redis.Tx) error {
		tx := &redisTx{store: s, rtx: rtx, writes: make(map[string][]byte)}
		if err := fn(tx); err != nil {
			return err
		}
		if len(tx.writes) == 0 {
			return nil
		}
		_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for k, v := range tx.writes {
				pipe.Set(ctx, s.key(k), v, 0)
			}
			return nil
		})
		return err
	}, watched...)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

// Ping checks the redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

type redisTx struct {
	store  *RedisStore
	rtx    *redis.Tx
	writes map[string][]byte
}

func (tx *redisTx) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok := tx.writes[key]; ok {
		return cloneBytes(v), true, nil
	}
	return redisGet(ctx, tx.rtx, tx.store.key(key))
}

func (tx *redisTx) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.writes[key] = cloneBytes(value)
	return nil
}

func redisGet(ctx context.Context, c redis.Cmdable, key string) ([]byte, bool, error) {
	v, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kvstore: get %s: %w", key, err)
	}
	return v, true, nil
}
