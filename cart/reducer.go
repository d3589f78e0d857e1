package cart

import "calufestas/models"

// State is an immutable snapshot of the cart. Reduce never modifies the
// slice it is given.
type State []models.CartItem

func (s State) index(id string) int {
	for i, it := range s {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s State) clone() State {
	out := make(State, len(s))
	copy(out, s)
	return out
}

// Action is one of Add, Remove, ChangeQuantity, Clear or ExternalReplace.
type Action interface {
	action()
}

type Add struct {
	Product  models.Product
	Quantity int
}

type Remove struct {
	ID string
}

type ChangeQuantity struct {
	ID       string
	Quantity int
}

type Clear struct{}

type ExternalReplace struct {
	Items []models.CartItem
}

func (Add) action()             {}
func (Remove) action()          {}
func (ChangeQuantity) action()  {}
func (Clear) action()           {}
func (ExternalReplace) action() {}

// Reduce applies an action and reports what happened.
func Reduce(s State, a Action) (State, Event) {
	switch a := a.(type) {
	case Add:
		return reduceAdd(s, a)
	case Remove:
		i := s.index(a.ID)
		if i < 0 {
			return s, Event{Kind: Unchanged, ItemID: a.ID}
		}
		name := s[i].Name
		next := make(State, 0, len(s)-1)
		next = append(next, s[:i]...)
		next = append(next, s[i+1:]...)
		return next, Event{Kind: Removed, ItemID: a.ID, ItemName: name, Changed: true}
	case ChangeQuantity:
		i := s.index(a.ID)
		if i < 0 {
			return s, Event{Kind: Unchanged, ItemID: a.ID}
		}
		if a.Quantity <= 0 {
			return Reduce(s, Remove{ID: a.ID})
		}
		next := s.clone()
		next[i].Quantity = a.Quantity
		return next, Event{Kind: Updated, ItemID: a.ID, ItemName: next[i].Name, Quantity: a.Quantity, Requested: a.Quantity, Changed: true}
	case Clear:
		return State{}, Event{Kind: Cleared, Changed: true}
	case ExternalReplace:
		next := make(State, len(a.Items))
		copy(next, a.Items)
		return next, Event{Kind: Replaced, Changed: true, External: true}
	}
	return s, Event{Kind: Unchanged}
}

func reduceAdd(s State, a Add) (State, Event) {
	p := a.Product
	ev := Event{ItemID: p.ID, ItemName: p.Name, Requested: a.Quantity}
	if a.Quantity <= 0 {
		ev.Kind = Rejected
		return s, ev
	}

	i := s.index(p.ID)
	existing := 0
	if i >= 0 {
		existing = s[i].Quantity
	}
	final, clamped := ResolveQuantity(existing, a.Quantity, p.AvailableStock())
	ev.Kind = Added
	if clamped {
		ev.Kind = StockExceeded
	}
	ev.Quantity = final
	if final < 1 || final == existing {
		return s, ev
	}

	next := s.clone()
	if i >= 0 {
		next[i].Quantity = final
	} else {
		next = append(next, models.CartItem{
			ID:          p.ID,
			Name:        p.Name,
			Quantity:    final,
			UnitPrice:   p.Price,
			Description: p.Description,
			Images:      p.Images,
		})
	}
	ev.Changed = true
	return next, ev
}
