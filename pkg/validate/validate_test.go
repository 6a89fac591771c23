package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type checkoutForm struct {
	CustomerName   string  `json:"customer_name" validate:"required,max=255"`
	Email          string  `json:"email" validate:"required,email"`
	DeliveryMethod string  `json:"delivery_method" validate:"required,in=standard,express"`
	PaymentMethod  string  `json:"payment_method" validate:"required,in=card,qr,bank"`
	Note           string  `json:"note" validate:"nullable,max=10"`
	Quantity       int     `json:"quantity" validate:"required,gte=1"`
	Price          float64 `json:"price" validate:"gt=0"`
}

func validForm() checkoutForm {
	return checkoutForm{
		CustomerName:   "Jo Butcher",
		Email:          "jo@example.com",
		DeliveryMethod: "standard",
		PaymentMethod:  "card",
		Quantity:       2,
		Price:          65.00,
	}
}

func TestStructPasses(t *testing.T) {
	errs := Struct(validForm())
	assert.Empty(t, errs)
}

func TestRequired(t *testing.T) {
	f := validForm()
	f.CustomerName = "   "
	errs := Struct(f)
	assert.Contains(t, errs, "customer_name")
}

func TestEmail(t *testing.T) {
	f := validForm()
	f.Email = "not-an-email"
	errs := Struct(f)
	assert.Contains(t, errs, "email")
}

func TestInKeepsCommaSeparatedChoices(t *testing.T) {
	f := validForm()
	f.PaymentMethod = "qr"
	assert.Empty(t, Struct(f))

	f.PaymentMethod = "cash"
	errs := Struct(f)
	assert.Contains(t, errs, "payment_method")
}

func TestInFollowedByAnotherRule(t *testing.T) {
	type form struct {
		Status string `json:"status" validate:"in=pending,active,max=20"`
	}
	assert.Empty(t, Struct(form{Status: "active"}))
	assert.Contains(t, Struct(form{Status: "exploded"}), "status")
}

func TestNullableSkipsWhenEmpty(t *testing.T) {
	f := validForm()
	f.Note = ""
	assert.Empty(t, Struct(f))

	f.Note = "this note is far too long"
	errs := Struct(f)
	assert.Contains(t, errs, "note")
}

func TestNumericBounds(t *testing.T) {
	f := validForm()
	f.Quantity = 0
	assert.Contains(t, Struct(f), "quantity")

	f = validForm()
	f.Price = 0
	assert.Contains(t, Struct(f), "price")
}

func TestConfirmed(t *testing.T) {
	type form struct {
		Password             string `json:"password" validate:"required,min=8"`
		PasswordConfirmation string `json:"password_confirmation" validate:"required,confirmed"`
	}

	assert.Empty(t, Struct(form{Password: "supersecret", PasswordConfirmation: "supersecret"}))

	errs := Struct(form{Password: "supersecret", PasswordConfirmation: "different"})
	assert.Contains(t, errs, "password_confirmation")
}

func TestPointerInput(t *testing.T) {
	f := validForm()
	assert.Empty(t, Struct(&f))
}
