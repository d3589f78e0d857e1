package checkout

import (
	"testing"
	"time"

	"calufestas/models"

	"github.com/stretchr/testify/assert"
)

var brt = time.FixedZone("BRT", -3*60*60)

func fixedValidator() *Validator {
	v := NewValidator(brt)
	v.Now = func() time.Time { return time.Date(2026, 10, 18, 15, 0, 0, 0, brt) }
	return v
}

func validForm() Form {
	return Form{
		Name:     "Ana",
		Address:  "Rua A, 1",
		Delivery: "20-10-2026 10:00",
		Pickup:   "21-10-2026 10:00",
		Payment:  models.PaymentPix,
	}
}

func TestValidFormHasNoErrors(t *testing.T) {
	assert.Empty(t, fixedValidator().Validate(validForm()))
}

func TestMissingNameAndAddress(t *testing.T) {
	f := validForm()
	f.Name = "   "
	f.Address = ""

	errs := fixedValidator().Validate(f)
	assert.Equal(t, "Informe o nome", errs[FieldName])
	assert.Equal(t, "Informe o endereço", errs[FieldAddress])
	assert.Len(t, errs, 2)
}

func TestDateFormat(t *testing.T) {
	cases := map[string]bool{
		"20-10-2026 10:00":  true,
		"1-12-2026 10:00":   false,
		"31-02-2027 10:00":  false,
		"20/10/2026 10:00":  false,
		"20-10-2026 24:00":  false,
		"20-10-2026":        false,
		"20-10-2026 10:00 ": false,
		"":                  false,
	}
	for in, ok := range cases {
		_, got := ParseDateTime(in, brt)
		assert.Equal(t, ok, got, in)
	}
}

func TestInvalidDatesReportFormat(t *testing.T) {
	f := validForm()
	f.Delivery = "1-12-2026 10:00"
	f.Pickup = "31-02-2027 10:00"

	errs := fixedValidator().Validate(f)
	assert.Equal(t, "Data de entrega inválida (use dd-mm-aaaa hh:mm)", errs[FieldDelivery])
	assert.Equal(t, "Data de retirada inválida (use dd-mm-aaaa hh:mm)", errs[FieldPickup])
}

func TestSameDayIsRejected(t *testing.T) {
	f := validForm()
	f.Delivery = "18-10-2026 20:00"
	f.Pickup = "18-10-2026 22:00"

	errs := fixedValidator().Validate(f)
	assert.Equal(t, "A entrega deve ser a partir de amanhã.", errs[FieldDelivery])
	assert.Equal(t, "A retirada deve ser a partir de amanhã.", errs[FieldPickup])
}

func TestTomorrowMidnightIsAccepted(t *testing.T) {
	f := validForm()
	f.Delivery = "19-10-2026 00:00"
	f.Pickup = "19-10-2026 00:01"

	assert.Empty(t, fixedValidator().Validate(f))
}

func TestPickupMustFollowDelivery(t *testing.T) {
	f := validForm()
	f.Pickup = f.Delivery

	errs := fixedValidator().Validate(f)
	assert.Equal(t, "A retirada deve ser posterior à entrega.", errs[FieldPickup])

	f.Pickup = "19-10-2026 10:00"
	errs = fixedValidator().Validate(f)
	assert.Equal(t, "A retirada deve ser posterior à entrega.", errs[FieldPickup])
}

func TestUnknownPayment(t *testing.T) {
	f := validForm()
	f.Payment = "Boleto"

	errs := fixedValidator().Validate(f)
	assert.Equal(t, "Escolha a forma de pagamento", errs[FieldPayment])
}

func TestEveryRuleIsReported(t *testing.T) {
	errs := fixedValidator().Validate(Form{})
	assert.Len(t, errs, 5)
}
