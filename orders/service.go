// Package orders lists a customer's rentals and lets admins review them.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"calufestas/models"
	"calufestas/utils"
)

var (
	ErrInvalidTransition = errors.New("orders: invalid state transition")
	ErrNotFound          = errors.New("orders: not found")
)

// Backend is the part of the REST API this package talks to.
type Backend interface {
	ListLocations(ctx context.Context, token string) ([]models.Locacao, error)
	LocationsByClient(ctx context.Context, token, email string) ([]models.Locacao, error)
	UpdateLocationState(ctx context.Context, token, id, state string) error
	DeleteLocation(ctx context.Context, token, id string, items []models.Item) error
}

type Service struct {
	backend Backend
}

func NewService(b Backend) *Service {
	return &Service{backend: b}
}

// Mine lists the orders placed with email.
func (s *Service) Mine(ctx context.Context, token, email string) ([]models.Locacao, error) {
	list, err := s.backend.LocationsByClient(ctx, token, email)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Locacao{}
	}
	return list, nil
}

// Page is one window of a filtered listing.
type Page struct {
	Orders []models.Locacao `json:"orders"`
	Total  int              `json:"total"`
	Page   int              `json:"page"`
	Limit  int              `json:"limit"`
}

// Matches applies the admin search box and state filter. An empty or
// "todos" state keeps every order.
func Matches(l models.Locacao, search, state string) bool {
	state = strings.ToLower(strings.TrimSpace(state))
	if state != "" && state != "todos" && strings.ToLower(l.State) != state {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Name), q) ||
		strings.Contains(strings.ToLower(l.Address), q) ||
		strings.Contains(strings.ToLower(l.State), q)
}

// All lists every order, filtered and paginated by opts.
func (s *Service) All(ctx context.Context, token string, opts utils.QueryOptions) (Page, error) {
	list, err := s.backend.ListLocations(ctx, token)
	if err != nil {
		return Page{}, err
	}
	filtered := make([]models.Locacao, 0, len(list))
	for _, l := range list {
		if Matches(l, opts.Search, opts.State) {
			filtered = append(filtered, l)
		}
	}
	start, end := opts.Paginate(len(filtered))
	return Page{Orders: filtered[start:end], Total: len(filtered), Page: opts.Page, Limit: opts.Limit}, nil
}

func (s *Service) find(ctx context.Context, token, id string) (models.Locacao, error) {
	list, err := s.backend.ListLocations(ctx, token)
	if err != nil {
		return models.Locacao{}, err
	}
	for _, l := range list {
		if l.ID == id {
			return l, nil
		}
	}
	return models.Locacao{}, ErrNotFound
}

// CanTransition reports whether an order in from may move to to. Only
// orders under review can be decided, and only once.
func CanTransition(from, to string) bool {
	if !strings.EqualFold(strings.TrimSpace(from), models.StateUnderReview) {
		return false
	}
	return to == models.StateCompleted || to == models.StateRefused
}

// SetState moves order id to state.
func (s *Service) SetState(ctx context.Context, token, id, state string) error {
	l, err := s.find(ctx, token, id)
	if err != nil {
		return err
	}
	if !CanTransition(l.State, state) {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, l.State, state)
	}
	return s.backend.UpdateLocationState(ctx, token, id, state)
}

// Delete removes order id; its items go back to stock.
func (s *Service) Delete(ctx context.Context, token, id string) error {
	l, err := s.find(ctx, token, id)
	if err != nil {
		return err
	}
	return s.backend.DeleteLocation(ctx, token, id, l.Items)
}
