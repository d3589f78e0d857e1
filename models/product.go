package models

import "github.com/shopspring/decimal"

type Product struct {
	ID          string          `json:"_id,omitempty"`
	Name        string          `json:"nome"`
	Category    string          `json:"categoria"`
	Subcategory string          `json:"subcategoria,omitempty"`
	Quantity    int             `json:"quantidade"`
	InRental    int             `json:"quantidadeemlocacao"`
	Price       decimal.Decimal `json:"preco"`
	Description string          `json:"descricao"`
	Images      []string        `json:"imagem"`
}

// AvailableStock is what can still be rented right now.
func (p Product) AvailableStock() int {
	return p.Quantity - p.InRental
}

// FirstImage returns the cover image URL or "".
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
