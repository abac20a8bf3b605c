package stripegateway

import (
	"errors"
	"log/slog"

	internal "github.com/coloradoleasecheck/leasecheck/internal"

	stripe "github.com/stripe/stripe-go/v75"
	stripeclient "github.com/stripe/stripe-go/v75/client"
)

// Gateway is the surface the payment service needs from Stripe. Specs swap in
// a fake.
type Gateway interface {
	CreateIntent(params CreateIntentParams) (*Intent, error)
}

type CreateIntentParams struct {
	AmountCents  int64
	Currency     string
	ReceiptEmail string
	PlanID       string
	PlanName     string
}

// Intent is the subset of a Stripe PaymentIntent this service cares about.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountCents  int64
	Currency     string
}

type Client struct {
	sc     *stripeclient.API
	logger *slog.Logger
}

func NewClient(secretKey string, logger *slog.Logger) *Client {
	return &Client{
		sc:     stripeclient.New(secretKey, nil),
		logger: logger,
	}
}

func (c *Client) CreateIntent(params CreateIntentParams) (*Intent, error) {
	piParams := &stripe.PaymentIntentParams{
		Amount:       stripe.Int64(params.AmountCents),
		Currency:     stripe.String(params.Currency),
		ReceiptEmail: stripe.String(params.ReceiptEmail),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	piParams.AddMetadata("plan_id", params.PlanID)
	piParams.AddMetadata("plan_name", params.PlanName)

	pi, err := c.sc.PaymentIntents.New(piParams)
	if err != nil {
		c.logger.Error("stripe payment intent creation failed",
			"error", err,
			"plan_id", params.PlanID,
			"amount_cents", params.AmountCents)
		return nil, mapStripeError(err)
	}

	c.logger.Info("stripe payment intent created",
		"intent_id", pi.ID,
		"plan_id", params.PlanID,
		"amount_cents", params.AmountCents)

	return intentFromStripe(pi), nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
	}
}

// mapStripeError converts provider errors into AppErrors with user-safe
// messages. Raw provider text stays in the wrapped cause for logs only.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Code {
		case stripe.ErrorCodeCardDeclined:
			return internal.NewExternalError("your card was declined", internal.ErrCodePaymentDeclined, err)
		case stripe.ErrorCodeExpiredCard:
			return internal.NewExternalError("your card has expired", internal.ErrCodePaymentDeclined, err)
		case stripe.ErrorCodeIncorrectCVC, stripe.ErrorCodeIncorrectNumber:
			return internal.NewExternalError("your card details could not be verified", internal.ErrCodePaymentDeclined, err)
		}
	}
	return internal.NewExternalError("payment service is temporarily unavailable", internal.ErrCodeGatewayUnavailable, err)
}
