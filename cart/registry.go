package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"calufestas/globals"
	"calufestas/models"
	"calufestas/notify"
	"calufestas/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Broadcaster pushes a message to every tab of a session.
type Broadcaster interface {
	Broadcast(room string, data []byte)
}

// Publisher fans storage events out to the other instances.
type Publisher interface {
	Publish(ctx context.Context, ev storage.Event) error
}

// SyncMessage is what open tabs receive after every cart change.
type SyncMessage struct {
	Action string            `json:"action"`
	Items  []models.CartItem `json:"items"`
	Total  decimal.Decimal   `json:"total"`
	Count  int               `json:"count"`
	Event  Event             `json:"event"`
	Notice *notify.Toast     `json:"notice,omitempty"`
}

func NewSyncMessage(items []models.CartItem, ev Event) SyncMessage {
	if items == nil {
		items = []models.CartItem{}
	}
	return SyncMessage{
		Action: "cart",
		Items:  items,
		Total:  models.CartTotal(items),
		Count:  models.CartCount(items),
		Event:  ev,
		Notice: ev.Notice(),
	}
}

// SlotKey is the storage key of a session's cart.
func SlotKey(sid string) string {
	return globals.Slot(globals.CartKey, sid)
}

// roomCounter reports how many tabs are attached to a session.
type roomCounter interface {
	Connected(room string) int
}

type openCart struct {
	store    *Store
	lastUsed time.Time
}

// Registry owns one Store per session and keeps the tabs and instances
// that share a session in sync. Stores of idle sessions are evicted by
// Sweep and reopened from their slot on the next use.
type Registry struct {
	mu     sync.Mutex
	stores map[string]*openCart
	kv     storage.KV
	hub    Broadcaster
	pub    Publisher
	origin string
	idle   time.Duration
	now    func() time.Time
	log    *zap.Logger
}

// NewRegistry wires carts to kv. hub and pub may be nil.
func NewRegistry(kv storage.KV, hub Broadcaster, pub Publisher, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		stores: make(map[string]*openCart),
		kv:     kv,
		hub:    hub,
		pub:    pub,
		origin: uuid.NewString(),
		idle:   30 * time.Minute,
		now:    time.Now,
		log:    log,
	}
}

// Origin identifies this instance on the storage event channel.
func (r *Registry) Origin() string { return r.origin }

// Open returns the cart of sid, loading it on first use. The slot is read
// without holding the registry lock.
func (r *Registry) Open(ctx context.Context, sid string) *Store {
	if s, ok := r.lookup(sid); ok {
		return s
	}
	key := SlotKey(sid)
	loaded := Open(ctx, NewSlotPersister(r.kv, key), r.log.With(zap.String("cart", key)))

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.stores[sid]; ok {
		c.lastUsed = r.now()
		return c.store
	}
	loaded.Subscribe(func(ctx context.Context, items []models.CartItem, ev Event) {
		r.fanOut(ctx, sid, items, ev)
	})
	r.stores[sid] = &openCart{store: loaded, lastUsed: r.now()}
	return loaded
}

func (r *Registry) lookup(sid string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.stores[sid]
	if !ok {
		return nil, false
	}
	c.lastUsed = r.now()
	return c.store, true
}

// Len is the number of carts held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Sweep evicts carts that have not been used for a while and have no
// tab attached.
func (r *Registry) Sweep() {
	rooms, _ := r.hub.(roomCounter)
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.idle)
	for sid, c := range r.stores {
		if !c.lastUsed.Before(cutoff) {
			continue
		}
		if rooms != nil && rooms.Connected(sid) > 0 {
			continue
		}
		delete(r.stores, sid)
	}
}

// Janitor runs Sweep every interval until stop is closed.
func (r *Registry) Janitor(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-stop:
			return
		}
	}
}

func (r *Registry) fanOut(ctx context.Context, sid string, items []models.CartItem, ev Event) {
	if r.hub != nil {
		data, err := json.Marshal(NewSyncMessage(items, ev))
		if err != nil {
			r.log.Error("encode cart sync", zap.Error(err))
		} else {
			r.hub.Broadcast(sid, data)
		}
	}
	if ev.External || !ev.Changed {
		return
	}
	raw, err := EncodeItems(items)
	if err != nil {
		r.log.Error("encode cart event", zap.Error(err))
		return
	}
	r.publish(ctx, storage.Event{Key: SlotKey(sid), NewValue: raw})
}

func (r *Registry) publish(ctx context.Context, ev storage.Event) {
	if r.pub == nil {
		return
	}
	ev.Origin = r.origin
	if err := r.pub.Publish(ctx, ev); err != nil {
		r.log.Warn("publish storage event failed", zap.String("key", ev.Key), zap.Error(err))
	}
}

// HandleStorageEvent applies a cart value written by another instance.
// Own events and keys that are not carts are ignored.
func (r *Registry) HandleStorageEvent(ctx context.Context, ev storage.Event) {
	if ev.Origin != "" && ev.Origin == r.origin {
		return
	}
	sid, ok := strings.CutPrefix(ev.Key, globals.CartKey+":")
	if !ok || sid == "" {
		return
	}
	s, ok := r.lookup(sid)
	if !ok {
		return
	}
	s.ApplyStorageEvent(ctx, ev.Key, ev)
}

// WriteFromTab stores a cart value that a tab wrote directly, the way a
// page writes its own storage. Every other tab and instance adopts it.
func (r *Registry) WriteFromTab(ctx context.Context, sid string, raw []byte) error {
	items, err := DecodeItems(raw)
	if err != nil {
		return err
	}
	normalized, err := EncodeItems(items)
	if err != nil {
		return err
	}
	if _, err := r.Open(ctx, sid).Overwrite(ctx, items); err != nil {
		return err
	}
	r.publish(ctx, storage.Event{Key: SlotKey(sid), NewValue: normalized})
	return nil
}

// Drop removes the stored cart of sid, as logout does.
func (r *Registry) Drop(ctx context.Context, sid string) error {
	key := SlotKey(sid)
	if err := r.kv.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	r.publish(ctx, storage.Event{Key: key})
	if s, ok := r.lookup(sid); ok {
		s.ApplyStorageEvent(ctx, key, storage.Event{Key: key})
	}
	return nil
}
