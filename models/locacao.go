package models

import "github.com/shopspring/decimal"

type PaymentMethod string

const (
	PaymentPix  PaymentMethod = "Pix"
	PaymentCard PaymentMethod = "Cartão"
	PaymentCash PaymentMethod = "Dinheiro"
)

var PaymentMethods = []PaymentMethod{PaymentPix, PaymentCard, PaymentCash}

func (p PaymentMethod) Valid() bool {
	for _, m := range PaymentMethods {
		if p == m {
			return true
		}
	}
	return false
}

// Rental states as the backend spells them.
const (
	StateUnderReview = "Em analise"
	StateCompleted   = "Concluida"
	StateRefused     = "Recusada"
)

// Item is a rented line inside a Locacao.
type Item struct {
	ID       string          `json:"_id"`
	Name     string          `json:"nome"`
	Price    decimal.Decimal `json:"preco"`
	Quantity int             `json:"quantidade"`
}

// Locacao is a rental order as stored by the backend.
type Locacao struct {
	ID           string          `json:"_id"`
	Name         string          `json:"nome"`
	Address      string          `json:"endereco"`
	DeliveryDate string          `json:"data_entrega"`
	PickupDate   string          `json:"data_retirada"`
	Payment      PaymentMethod   `json:"pagamento"`
	Email        string          `json:"email"`
	Total        decimal.Decimal `json:"total"`
	Items        []Item          `json:"items"`
	State        string          `json:"estado"`
}
