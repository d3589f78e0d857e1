package cart

import (
	"context"
	"errors"
	"sync"

	"calufestas/models"
	"calufestas/storage"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Listener observes every applied mutation with the resulting items.
type Listener func(ctx context.Context, items []models.CartItem, ev Event)

// Store is the cart of one session. Mutations are serialized; each one
// sees the state left by the previous one.
type Store struct {
	mu        sync.Mutex
	state     State
	persister Persister
	listeners []Listener
	log       *zap.Logger
}

// Open loads the persisted cart. A missing or unreadable value starts
// the cart empty.
func Open(ctx context.Context, p Persister, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{state: State{}, persister: p, log: log}
	items, err := p.Load(ctx)
	switch {
	case err == nil:
		s.state = State(items)
	case errors.Is(err, storage.ErrNotFound):
	default:
		log.Warn("cart load failed, starting empty", zap.Error(err))
	}
	return s
}

// Subscribe registers l for every later mutation.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Items returns a copy of the current lines.
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartItem, len(s.state))
	copy(out, s.state)
	return out
}

func (s *Store) Total() decimal.Decimal {
	return models.CartTotal(s.Items())
}

// Dispatch runs an action through the reducer, persists local changes and
// notifies listeners. Persistence failures are logged, the in-memory state
// stays authoritative.
func (s *Store) Dispatch(ctx context.Context, a Action) Event {
	s.mu.Lock()
	next, ev := Reduce(s.state, a)
	s.state = next
	if ev.Changed && !ev.External {
		if err := s.persister.Save(ctx, next); err != nil {
			s.log.Error("cart save failed", zap.String("event", string(ev.Kind)), zap.Error(err))
		}
	}
	listeners, items := s.snapshot(next)
	s.mu.Unlock()

	notifyAll(ctx, listeners, items, ev)
	return ev
}

// Overwrite replaces the list with items a tab wrote directly and saves
// it under the same lock as every other mutation. On a failed save the
// cart is left as it was.
func (s *Store) Overwrite(ctx context.Context, items []models.CartItem) (Event, error) {
	s.mu.Lock()
	next, ev := Reduce(s.state, ExternalReplace{Items: items})
	if err := s.persister.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return Event{Kind: Unchanged}, err
	}
	s.state = next
	listeners, out := s.snapshot(next)
	s.mu.Unlock()

	notifyAll(ctx, listeners, out, ev)
	return ev, nil
}

// snapshot copies listeners and items; s.mu must be held.
func (s *Store) snapshot(items State) ([]Listener, []models.CartItem) {
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return listeners, out
}

func notifyAll(ctx context.Context, listeners []Listener, items []models.CartItem, ev Event) {
	for _, l := range listeners {
		l(ctx, items, ev)
	}
}

func (s *Store) AddToCart(ctx context.Context, p models.Product, quantity int) Event {
	return s.Dispatch(ctx, Add{Product: p, Quantity: quantity})
}

func (s *Store) RemoveFromCart(ctx context.Context, id string) Event {
	return s.Dispatch(ctx, Remove{ID: id})
}

func (s *Store) ChangeQuantity(ctx context.Context, id string, quantity int) Event {
	return s.Dispatch(ctx, ChangeQuantity{ID: id, Quantity: quantity})
}

func (s *Store) ClearCart(ctx context.Context) Event {
	return s.Dispatch(ctx, Clear{})
}

// ReplaceExternal overwrites the whole list with items from another
// writer. Nothing is written back.
func (s *Store) ReplaceExternal(ctx context.Context, items []models.CartItem) Event {
	return s.Dispatch(ctx, ExternalReplace{Items: items})
}

// ApplyStorageEvent adopts a value written elsewhere under key. Events for
// other keys and undecodable values are ignored.
func (s *Store) ApplyStorageEvent(ctx context.Context, key string, ev storage.Event) (Event, bool) {
	if ev.Key != key {
		return Event{Kind: Unchanged}, false
	}
	items, err := DecodeItems(ev.NewValue)
	if err != nil {
		s.log.Warn("ignoring malformed cart from storage event", zap.String("key", key), zap.Error(err))
		return Event{Kind: Unchanged}, false
	}
	return s.ReplaceExternal(ctx, items), true
}
