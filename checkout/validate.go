// Package checkout validates the rental form and submits the order.
package checkout

import (
	"strings"
	"time"

	"calufestas/models"
)

// DateTimeLayout is dd-mm-aaaa hh:mm.
const DateTimeLayout = "02-01-2006 15:04"

// Field keys of FieldErrors, as the checkout form names its inputs.
const (
	FieldName     = "nome"
	FieldAddress  = "endereco"
	FieldDelivery = "dataEntregaStr"
	FieldPickup   = "dataRetiradaStr"
	FieldPayment  = "pagamento"
)

// Form is what the customer typed.
type Form struct {
	Name     string               `json:"nome"`
	Address  string               `json:"endereco"`
	Delivery string               `json:"dataEntregaStr"`
	Pickup   string               `json:"dataRetiradaStr"`
	Payment  models.PaymentMethod `json:"pagamento"`
}

// EmptyForm is the form after a reset.
func EmptyForm() Form {
	return Form{Payment: models.PaymentPix}
}

// FieldErrors maps a field key to its message.
type FieldErrors map[string]string

// ParseDateTime accepts exactly dd-mm-aaaa hh:mm with a real calendar date.
func ParseDateTime(s string, loc *time.Location) (time.Time, bool) {
	if len(s) != len(DateTimeLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateTimeLayout, s, loc)
	if err != nil || t.Format(DateTimeLayout) != s {
		return time.Time{}, false
	}
	return t, true
}

// Validator checks a Form against the clock. Every rule runs; all failures
// are reported together.
type Validator struct {
	Now      func() time.Time
	Location *time.Location
}

func NewValidator(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.Local
	}
	return &Validator{Now: time.Now, Location: loc}
}

// earliest is the first instant a delivery or pickup may be scheduled:
// tomorrow at 00:00.
func (v *Validator) earliest() time.Time {
	now := v.Now().In(v.Location)
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, v.Location)
}

func (v *Validator) Validate(f Form) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Name) == "" {
		errs[FieldName] = "Informe o nome"
	}
	if strings.TrimSpace(f.Address) == "" {
		errs[FieldAddress] = "Informe o endereço"
	}

	delivery, deliveryOK := ParseDateTime(strings.TrimSpace(f.Delivery), v.Location)
	pickup, pickupOK := ParseDateTime(strings.TrimSpace(f.Pickup), v.Location)
	if !deliveryOK {
		errs[FieldDelivery] = "Data de entrega inválida (use dd-mm-aaaa hh:mm)"
	}
	if !pickupOK {
		errs[FieldPickup] = "Data de retirada inválida (use dd-mm-aaaa hh:mm)"
	}

	first := v.earliest()
	if deliveryOK && delivery.Before(first) {
		errs[FieldDelivery] = "A entrega deve ser a partir de amanhã."
	}
	if pickupOK && pickup.Before(first) {
		errs[FieldPickup] = "A retirada deve ser a partir de amanhã."
	}
	if deliveryOK && pickupOK && !pickup.After(delivery) {
		errs[FieldPickup] = "A retirada deve ser posterior à entrega."
	}

	if !f.Payment.Valid() {
		errs[FieldPayment] = "Escolha a forma de pagamento"
	}
	return errs
}
