package payment

import (
	"encoding/json"

	"github.com/coloradoleasecheck/leasecheck/internal/core/common/validation"
)

// BillingAddress is the checkout form's address block, stored verbatim on the
// Payment row and copied onto the invoice later.
type BillingAddress struct {
	Street  string `json:"street"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

type CreatePaymentDTO struct {
	PlanID         string         `json:"plan_id"`
	Email          string         `json:"email"`
	CustomerName   string         `json:"customer_name"`
	BillingAddress BillingAddress `json:"billing_address"`
}

func (d *CreatePaymentDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("plan_id", d.PlanID).Required()
	validator.Field("email", d.Email).Required().Email()
	validator.Field("customer_name", d.CustomerName).Required().MaxLength(255)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (d *CreatePaymentDTO) BillingAddressJSON() json.RawMessage {
	raw, err := json.Marshal(d.BillingAddress)
	if err != nil {
		return nil
	}
	return raw
}

// CheckoutResponse is what the frontend needs to confirm the intent with
// Stripe.js.
type CheckoutResponse struct {
	PaymentID       int64  `json:"payment_id"`
	StripePaymentID string `json:"stripe_payment_id"`
	ClientSecret    string `json:"client_secret"`
	PublishableKey  string `json:"publishable_key"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
	PlanName        string `json:"plan_name"`
}
