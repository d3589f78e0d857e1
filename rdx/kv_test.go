package rdx

import (
	"context"
	"testing"
	"time"

	"calufestas/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) (*KV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	conn := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = conn.Close() })
	return NewKV(conn, "calu"), mr
}

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv, mr := newTestKV(t)

	_, err := kv.Get(ctx, "cart:s1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, kv.Set(ctx, "cart:s1", []byte(`[{"_id":"p1"}]`), 0))
	got, err := kv.Get(ctx, "cart:s1")
	require.NoError(t, err)
	assert.Equal(t, `[{"_id":"p1"}]`, string(got))
	assert.True(t, mr.Exists("calu:cart:s1"))

	require.NoError(t, kv.Delete(ctx, "cart:s1"))
	_, err = kv.Get(ctx, "cart:s1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestKVExpiry(t *testing.T) {
	ctx := context.Background()
	kv, mr := newTestKV(t)

	require.NoError(t, kv.Set(ctx, "produtos", []byte(`[]`), time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("calu:produtos"))

	mr.FastForward(2 * time.Minute)
	_, err := kv.Get(ctx, "produtos")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestKVPrefixJoin(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	conn := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = conn.Close() })

	for _, prefix := range []string{"cache", "cache:"} {
		mr.FlushAll()
		kv := NewKV(conn, prefix)
		require.NoError(t, kv.Set(ctx, "produtos", []byte(`[]`), 0))
		assert.Equal(t, []string{"cache:produtos"}, mr.Keys(), prefix)
	}

	mr.FlushAll()
	require.NoError(t, NewKV(conn, "").Set(ctx, "cart:s1", []byte(`[]`), 0))
	assert.Equal(t, []string{"cart:s1"}, mr.Keys())
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	conn, err := Connect(context.Background(), addr, "", 0)
	require.NoError(t, err)
	defer conn.Close()

	mr.Close()
	_, err = Connect(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
