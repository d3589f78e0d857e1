package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"calufestas/models"
	"calufestas/storage"
)

// Persister loads and saves the item list of one cart.
type Persister interface {
	Load(ctx context.Context) ([]models.CartItem, error)
	Save(ctx context.Context, items []models.CartItem) error
}

type slotPersister struct {
	kv  storage.KV
	key string
}

// NewSlotPersister stores the cart as a JSON array under key.
func NewSlotPersister(kv storage.KV, key string) Persister {
	return &slotPersister{kv: kv, key: key}
}

func (p *slotPersister) Load(ctx context.Context) ([]models.CartItem, error) {
	raw, err := p.kv.Get(ctx, p.key)
	if err != nil {
		return nil, err
	}
	return DecodeItems(raw)
}

func (p *slotPersister) Save(ctx context.Context, items []models.CartItem) error {
	raw, err := EncodeItems(items)
	if err != nil {
		return err
	}
	return p.kv.Set(ctx, p.key, raw, 0)
}

// DecodeItems parses a stored cart. Empty input and JSON null give an
// empty cart.
func DecodeItems(raw []byte) ([]models.CartItem, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []models.CartItem{}, nil
	}
	var items []models.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	return items, nil
}

// EncodeItems always yields a JSON array, never null.
func EncodeItems(items []models.CartItem) ([]byte, error) {
	if items == nil {
		items = []models.CartItem{}
	}
	return json.Marshal(items)
}
