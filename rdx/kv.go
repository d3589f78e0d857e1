package rdx

import (
	"context"
	"errors"
	"strings"
	"time"

	"calufestas/storage"

	"github.com/redis/go-redis/v9"
)

// KV stores slots as plain Redis strings, optionally under a key prefix.
type KV struct {
	conn   *redis.Client
	prefix string
}

// NewKV stores keys as prefix:key. A trailing colon on prefix is dropped.
func NewKV(conn *redis.Client, prefix string) *KV {
	return &KV{conn: conn, prefix: strings.TrimSuffix(prefix, ":")}
}

func (k *KV) key(key string) string {
	if k.prefix == "" {
		return key
	}
	return k.prefix + ":" + key
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := k.conn.Get(ctx, k.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return k.conn.Set(ctx, k.key(key), value, ttl).Err()
}

func (k *KV) Delete(ctx context.Context, key string) error {
	return k.conn.Del(ctx, k.key(key)).Err()
}
