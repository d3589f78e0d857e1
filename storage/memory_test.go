package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "cart:a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set(ctx, "cart:a", []byte(`[]`), 0))
	got, err := m.Get(ctx, "cart:a")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, m.Delete(ctx, "cart:a"))
	_, err = m.Get(ctx, "cart:a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory().WithClock(func() time.Time { return now })

	require.NoError(t, m.Set(ctx, "produtos", []byte(`[1]`), time.Minute))
	_, err := m.Get(ctx, "produtos")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = m.Get(ctx, "produtos")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryExpiryKeepsNewerWrite(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var between func()
	m := NewMemory()
	m.WithClock(func() time.Time {
		if f := between; f != nil {
			between = nil
			f()
		}
		return now
	})

	require.NoError(t, m.Set(ctx, "produtos", []byte(`[1]`), time.Minute))
	now = now.Add(time.Minute)

	// another writer refreshes the key while the expired read is in flight
	between = func() { require.NoError(t, m.Set(ctx, "produtos", []byte(`[2]`), 0)) }
	_, err := m.Get(ctx, "produtos")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := m.Get(ctx, "produtos")
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got))
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	v := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", v, 0))
	v[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestEventRemoved(t *testing.T) {
	assert.True(t, Event{Key: "cart"}.Removed())
	assert.True(t, Event{Key: "cart", NewValue: []byte("null")}.Removed())
	assert.False(t, Event{Key: "cart", NewValue: []byte("[]")}.Removed())
}
