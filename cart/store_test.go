package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"calufestas/models"
	"calufestas/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPersister struct {
	saves int
}

func (f *failingPersister) Load(context.Context) ([]models.CartItem, error) {
	return nil, errors.New("disk on fire")
}

func (f *failingPersister) Save(context.Context, []models.CartItem) error {
	f.saves++
	return errors.New("disk on fire")
}

// gatedPersister holds the first Save until release is closed.
type gatedPersister struct {
	Persister
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedPersister) Save(ctx context.Context, items []models.CartItem) error {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.Persister.Save(ctx, items)
}

func TestStorePersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := Open(ctx, NewSlotPersister(kv, "cart:s1"), nil)

	s.AddToCart(ctx, product("p1", "Mesa", "12.5", 10, 0), 2)
	s.AddToCart(ctx, product("p2", "Cadeira", "3", 50, 0), 10)

	raw, err := kv.Get(ctx, "cart:s1")
	require.NoError(t, err)
	items, err := DecodeItems(raw)
	require.NoError(t, err)
	assert.Equal(t, s.Items(), items)
	assert.Equal(t, "55", s.Total().String())

	reopened := Open(ctx, NewSlotPersister(kv, "cart:s1"), nil)
	assert.Equal(t, s.Items(), reopened.Items())
}

func TestStoreClearWritesEmptyArray(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := Open(ctx, NewSlotPersister(kv, "cart:s1"), nil)
	s.AddToCart(ctx, product("p1", "Mesa", "1", 10, 0), 1)

	s.ClearCart(ctx)
	raw, err := kv.Get(ctx, "cart:s1")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
	assert.Empty(t, s.Items())
}

func TestStoreOpensEmptyOnBadValue(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, "cart:s1", []byte("{not json"), 0))

	s := Open(ctx, NewSlotPersister(kv, "cart:s1"), nil)
	assert.Empty(t, s.Items())
}

func TestStoreKeepsStateWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	p := &failingPersister{}
	s := Open(ctx, p, nil)

	ev := s.AddToCart(ctx, product("p1", "Mesa", "1", 10, 0), 2)
	assert.Equal(t, Added, ev.Kind)
	assert.Equal(t, 1, p.saves)
	require.Len(t, s.Items(), 1)
}

func TestStoreSkipsSaveWhenNothingChanged(t *testing.T) {
	ctx := context.Background()
	p := &failingPersister{}
	s := Open(ctx, p, nil)

	s.AddToCart(ctx, product("p1", "Mesa", "1", 10, 0), 0)
	s.RemoveFromCart(ctx, "missing")
	assert.Equal(t, 0, p.saves)
}

func TestStoreApplyStorageEvent(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := Open(ctx, NewSlotPersister(kv, "cart:s1"), nil)

	var seen []Event
	s.Subscribe(func(_ context.Context, _ []models.CartItem, ev Event) { seen = append(seen, ev) })

	_, ok := s.ApplyStorageEvent(ctx, "cart:s1", storage.Event{Key: "token:s1", NewValue: []byte(`[]`)})
	assert.False(t, ok)

	_, ok = s.ApplyStorageEvent(ctx, "cart:s1", storage.Event{Key: "cart:s1", NewValue: []byte(`{"bad"`)})
	assert.False(t, ok)

	ev, ok := s.ApplyStorageEvent(ctx, "cart:s1", storage.Event{
		Key:      "cart:s1",
		NewValue: []byte(`[{"_id":"p9","nome":"Toalha","quantidade":2,"preco":4.5}]`),
	})
	require.True(t, ok)
	assert.Equal(t, Replaced, ev.Kind)
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "p9", s.Items()[0].ID)
	require.Len(t, seen, 1)

	// adopted values are not written back
	_, err := kv.Get(ctx, "cart:s1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, ok = s.ApplyStorageEvent(ctx, "cart:s1", storage.Event{Key: "cart:s1"})
	require.True(t, ok)
	assert.Empty(t, s.Items())
}

func TestEncodeItemsNeverNull(t *testing.T) {
	raw, err := EncodeItems(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	items, err := DecodeItems([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestStoreReplaceExternalDoesNotWriteBack(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := Open(ctx, NewSlotPersister(kv, "cart:s1"), nil)

	ev := s.ReplaceExternal(ctx, []models.CartItem{{ID: "p9", Name: "Toalha", Quantity: 4}})

	assert.True(t, ev.External)
	require.Len(t, s.Items(), 1)
	assert.Equal(t, "p9", s.Items()[0].ID)
	_, err := kv.Get(ctx, "cart:s1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreOverwriteSavesAndNotifies(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := Open(ctx, NewSlotPersister(kv, "cart:s1"), nil)
	s.AddToCart(ctx, product("p1", "Mesa", "10", 5, 0), 1)

	var got []Event
	s.Subscribe(func(_ context.Context, _ []models.CartItem, ev Event) { got = append(got, ev) })

	tab := []models.CartItem{{ID: "x", Name: "X", Quantity: 3, UnitPrice: decimal.NewFromInt(2)}}
	ev, err := s.Overwrite(ctx, tab)
	require.NoError(t, err)
	assert.Equal(t, Replaced, ev.Kind)
	assert.True(t, ev.External)
	require.Len(t, got, 1)

	raw, err := kv.Get(ctx, "cart:s1")
	require.NoError(t, err)
	items, err := DecodeItems(raw)
	require.NoError(t, err)
	assert.Equal(t, s.Items(), items)
	assert.Equal(t, "6", s.Total().String())
}

func TestStoreOverwriteKeepsCartWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, &failingPersister{}, nil)

	_, err := s.Overwrite(ctx, []models.CartItem{{ID: "x", Name: "X", Quantity: 1}})
	assert.Error(t, err)
	assert.Empty(t, s.Items())
}

func TestStoreOverwriteExcludesConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	gate := &gatedPersister{
		Persister: NewSlotPersister(kv, "cart:s1"),
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	s := Open(ctx, gate, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Overwrite(ctx, []models.CartItem{{ID: "x", Name: "X", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}})
		done <- err
	}()
	<-gate.entered

	added := make(chan struct{})
	go func() {
		s.AddToCart(ctx, product("p1", "Mesa", "10", 5, 0), 1)
		close(added)
	}()
	select {
	case <-added:
		t.Fatal("add ran while the tab write was saving")
	case <-time.After(20 * time.Millisecond):
	}

	close(gate.release)
	require.NoError(t, <-done)
	<-added

	raw, err := kv.Get(ctx, "cart:s1")
	require.NoError(t, err)
	items, err := DecodeItems(raw)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, s.Items(), items)
}
