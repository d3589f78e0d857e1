package products

import (
	"strings"

	"calufestas/models"

	"github.com/shopspring/decimal"
)

// Form is the admin's new-product input. Price is text so "12,50" works.
type Form struct {
	Name        string   `json:"nome"`
	Category    string   `json:"categoria"`
	Subcategory string   `json:"subcategoria"`
	Quantity    int      `json:"quantidade"`
	InRental    int      `json:"quantidadeemlocacao"`
	Price       string   `json:"preco"`
	Description string   `json:"descricao"`
	Images      []string `json:"imagem"`
}

// ParsePrice accepts a decimal comma or point.
func ParsePrice(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.Replace(strings.TrimSpace(s), ",", ".", 1))
}

// Validate returns one message per bad field, keyed by JSON name.
func (f Form) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(f.Name) == "" {
		errs["nome"] = "Nome é obrigatório."
	}
	if strings.TrimSpace(f.Category) == "" {
		errs["categoria"] = "Categoria é obrigatória."
	}
	if strings.TrimSpace(f.Description) == "" {
		errs["descricao"] = "Descrição é obrigatória."
	}
	if p, err := ParsePrice(f.Price); err != nil || p.IsNegative() {
		errs["preco"] = "Preço inválido."
	}
	if f.Quantity < 0 {
		errs["quantidade"] = "Quantidade deve ser >= 0."
	}
	for _, u := range f.Images {
		if !strings.HasPrefix(u, "http") {
			errs["imagem"] = "URL inválida. Deve começar com http(s)."
			break
		}
	}
	return errs
}

// Product converts a validated form.
func (f Form) Product() models.Product {
	price, _ := ParsePrice(f.Price)
	images := f.Images
	if images == nil {
		images = []string{}
	}
	return models.Product{
		Name:        strings.TrimSpace(f.Name),
		Category:    strings.TrimSpace(f.Category),
		Subcategory: strings.TrimSpace(f.Subcategory),
		Quantity:    f.Quantity,
		InRental:    f.InRental,
		Price:       price,
		Description: strings.TrimSpace(f.Description),
		Images:      images,
	}
}
