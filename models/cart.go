package models

import "github.com/shopspring/decimal"

// CartItem is one line of the cart. Field names follow the stored JSON blob.
type CartItem struct {
	ID          string          `json:"_id"`
	Name        string          `json:"nome"`
	Quantity    int             `json:"quantidade"`
	UnitPrice   decimal.Decimal `json:"preco"`
	Description string          `json:"descricao,omitempty"`
	Images      []string        `json:"imagem,omitempty"`
}

func (c CartItem) Subtotal() decimal.Decimal {
	return c.UnitPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// CartTotal sums unit price times quantity over every line.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// CartCount is the number of units across all lines.
func CartCount(items []CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
