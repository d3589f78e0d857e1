// Package products serves the rental catalog, cached in the "produtos"
// slot the way the storefront caches it.
package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"calufestas/globals"
	"calufestas/models"
	"calufestas/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Backend is the part of the rental API that owns products.
type Backend interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, token string, p models.Product) error
}

type Service struct {
	backend Backend
	cache   storage.KV
	ttl     time.Duration
	images  *http.Client
	group   singleflight.Group
	log     *zap.Logger
}

func NewService(b Backend, cache storage.KV, ttl time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		backend: b,
		cache:   cache,
		ttl:     ttl,
		images:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// List returns the catalog, from cache when possible. Concurrent misses
// share one backend call.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	raw, err := s.cache.Get(ctx, globals.ProductsKey)
	if err == nil {
		var list []models.Product
		if err := json.Unmarshal(raw, &list); err == nil {
			return list, nil
		}
		s.log.Warn("dropping unreadable catalog cache")
	} else if !errors.Is(err, storage.ErrNotFound) {
		s.log.Warn("catalog cache read failed", zap.Error(err))
	}

	v, err, _ := s.group.Do(globals.ProductsKey, func() (any, error) {
		list, err := s.backend.ListProducts(ctx)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		if list == nil {
			list = []models.Product{}
		}
		if data, err := json.Marshal(list); err == nil {
			if err := s.cache.Set(ctx, globals.ProductsKey, data, s.ttl); err != nil {
				s.log.Warn("catalog cache write failed", zap.Error(err))
			}
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Product), nil
}

// Invalidate drops the cached catalog so the next List sees fresh stock.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, globals.ProductsKey)
}

// Find looks a product up by id.
func (s *Service) Find(ctx context.Context, id string) (models.Product, error) {
	list, err := s.List(ctx)
	if err != nil {
		return models.Product{}, err
	}
	for _, p := range list {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, models.ErrProductNotFound
}

// Create registers a product and drops the cached catalog.
func (s *Service) Create(ctx context.Context, token string, p models.Product) error {
	if err := s.backend.CreateProduct(ctx, token, p); err != nil {
		return err
	}
	if err := s.Invalidate(ctx); err != nil {
		s.log.Warn("catalog invalidate failed", zap.Error(err))
	}
	return nil
}
