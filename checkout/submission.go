package checkout

import (
	"strings"

	"calufestas/models"

	"github.com/shopspring/decimal"
)

// Submission is the order body sent to the backend.
type Submission struct {
	Name     string               `json:"nome"`
	Address  string               `json:"endereco"`
	Delivery string               `json:"data_entrega"`
	Pickup   string               `json:"data_retirada"`
	Payment  models.PaymentMethod `json:"pagamento"`
	Email    string               `json:"email,omitempty"`
	Total    decimal.Decimal      `json:"total"`
	Items    []models.Item        `json:"items"`
}

// NewSubmission snapshots the cart for a validated form.
func NewSubmission(f Form, items []models.CartItem, email string) Submission {
	lines := make([]models.Item, 0, len(items))
	for _, it := range items {
		lines = append(lines, models.Item{
			ID:       it.ID,
			Name:     it.Name,
			Price:    it.UnitPrice,
			Quantity: it.Quantity,
		})
	}
	return Submission{
		Name:     strings.TrimSpace(f.Name),
		Address:  strings.TrimSpace(f.Address),
		Delivery: strings.TrimSpace(f.Delivery),
		Pickup:   strings.TrimSpace(f.Pickup),
		Payment:  f.Payment,
		Email:    email,
		Total:    models.CartTotal(items),
		Items:    lines,
	}
}
