package cart

import "calufestas/notify"

type EventKind string

const (
	Rejected      EventKind = "rejected"
	StockExceeded EventKind = "stock_exceeded"
	Added         EventKind = "added"
	Removed       EventKind = "removed"
	Updated       EventKind = "updated"
	Cleared       EventKind = "cleared"
	Unchanged     EventKind = "unchanged"
	Replaced      EventKind = "replaced"
)

// Event describes what a mutation did. Quantity is the resulting line
// quantity for add and update, Requested is what the caller asked for.
type Event struct {
	Kind      EventKind `json:"kind"`
	ItemID    string    `json:"itemId,omitempty"`
	ItemName  string    `json:"itemName,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	Requested int       `json:"requested,omitempty"`

	// Changed is false when the item list stayed the same.
	Changed bool `json:"changed"`
	// External marks state adopted from another writer. Such state is
	// never written back to storage.
	External bool `json:"external,omitempty"`
}

// Notice renders the event as a toast, or nil when there is nothing to say.
func (e Event) Notice() *notify.Toast {
	switch e.Kind {
	case Rejected:
		return notify.QuantityTooLow()
	case StockExceeded:
		return notify.StockExceeded()
	case Added:
		return notify.Added(e.Requested, e.ItemName)
	case Removed:
		return notify.Removed(e.ItemName)
	case Updated:
		return notify.Updated(e.ItemName, e.Quantity)
	case Cleared:
		return notify.Cleared()
	}
	return nil
}
