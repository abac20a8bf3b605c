package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/coloradoleasecheck/leasecheck/internal"
	paymentmodel "github.com/coloradoleasecheck/leasecheck/internal/core/datamodel/payment"
	"github.com/coloradoleasecheck/leasecheck/internal/core/events"
	paymentpkg "github.com/coloradoleasecheck/leasecheck/internal/payment"

	stripe "github.com/stripe/stripe-go/v75"
)

// dispatch routes a verified event to the matching payment transition. An
// event that references a payment this service never created is logged and
// acknowledged so Stripe stops retrying it.
func (h *Handler) dispatch(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case "payment_intent.succeeded":
		return h.handleIntentSucceeded(ctx, event)
	case "payment_intent.payment_failed":
		return h.handleIntentFailed(ctx, event)
	case "payment_intent.canceled":
		return h.handleIntentCanceled(event)
	case "payment_intent.requires_action":
		return h.handleIntentRequiresAction(event)
	case "charge.failed":
		return h.handleChargeFailed(event)
	case "charge.dispute.created":
		return h.handleDisputeCreated(event)
	case "charge.refunded":
		return h.handleChargeRefunded(event)
	default:
		h.Logger.Info("ignoring unhandled webhook event type", "event_type", event.Type, "event_id", event.ID)
		return nil
	}
}

func (h *Handler) handleIntentSucceeded(ctx context.Context, event *stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return fmt.Errorf("failed to parse payment intent: %w", err)
	}

	var methodJSON json.RawMessage
	if pi.PaymentMethod != nil {
		methodJSON = mustJSON(map[string]any{"payment_method_id": pi.PaymentMethod.ID})
	}

	record, err := h.applyStatus(pi.ID, paymentmodel.StatusSucceeded, &paymentpkg.StatusMetadata{
		PaymentMethod: methodJSON,
	})
	if err != nil || record == nil {
		return err
	}

	// The customer is on the payment-status page polling for this; the
	// invoice writes synchronously so it exists by the time they land on
	// the thank-you screen.
	inv, err := h.invoiceService.EnsureForPayment(record)
	if err != nil {
		return fmt.Errorf("payment updated but invoice generation failed: %w", err)
	}

	if h.eventBus != nil {
		_ = h.eventBus.Publish(ctx, events.NewPaymentSucceededEvent(
			record.ID, record.StripePaymentID, record.UserEmail, record.AmountCents, record.PlanName))
		_ = h.eventBus.Publish(ctx, events.NewInvoiceCreatedEvent(inv.ID, inv.InvoiceNumber, record.ID))
	}
	return nil
}

func (h *Handler) handleIntentFailed(ctx context.Context, event *stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return fmt.Errorf("failed to parse payment intent: %w", err)
	}

	details := map[string]any{}
	failureMessage := "payment failed"
	if pi.LastPaymentError != nil {
		details["code"] = string(pi.LastPaymentError.Code)
		details["message"] = pi.LastPaymentError.Msg
		if pi.LastPaymentError.Msg != "" {
			failureMessage = pi.LastPaymentError.Msg
		}
	}

	record, err := h.applyStatus(pi.ID, paymentmodel.StatusFailed, &paymentpkg.StatusMetadata{
		ErrorDetails: mustJSON(details),
	})
	if err != nil || record == nil {
		return err
	}

	if h.eventBus != nil {
		_ = h.eventBus.Publish(ctx, events.NewPaymentFailedEvent(
			record.ID, record.StripePaymentID, record.UserEmail, failureMessage))
	}
	return nil
}

func (h *Handler) handleIntentCanceled(event *stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return fmt.Errorf("failed to parse payment intent: %w", err)
	}

	meta := &paymentpkg.StatusMetadata{}
	if pi.CancellationReason != "" {
		meta.ErrorDetails = mustJSON(map[string]any{"cancellation_reason": string(pi.CancellationReason)})
	}
	_, err := h.applyStatus(pi.ID, paymentmodel.StatusCanceled, meta)
	return err
}

func (h *Handler) handleIntentRequiresAction(event *stripe.Event) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return fmt.Errorf("failed to parse payment intent: %w", err)
	}
	_, err := h.applyStatus(pi.ID, paymentmodel.StatusRequiresAction, nil)
	return err
}

func (h *Handler) handleChargeFailed(event *stripe.Event) error {
	var ch stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
		return fmt.Errorf("failed to parse charge: %w", err)
	}
	intentID := chargeIntentID(&ch)
	if intentID == "" {
		h.Logger.Warn("charge.failed without payment intent reference", "charge_id", ch.ID)
		return nil
	}

	_, err := h.applyStatus(intentID, paymentmodel.StatusChargeFailed, &paymentpkg.StatusMetadata{
		ErrorDetails: mustJSON(map[string]any{
			"charge_id":       ch.ID,
			"failure_code":    ch.FailureCode,
			"failure_message": ch.FailureMessage,
		}),
	})
	return err
}

func (h *Handler) handleDisputeCreated(event *stripe.Event) error {
	var dp stripe.Dispute
	if err := json.Unmarshal(event.Data.Raw, &dp); err != nil {
		return fmt.Errorf("failed to parse dispute: %w", err)
	}
	intentID := ""
	if dp.PaymentIntent != nil {
		intentID = dp.PaymentIntent.ID
	}
	if intentID == "" {
		h.Logger.Warn("dispute without payment intent reference", "dispute_id", dp.ID)
		return nil
	}

	_, err := h.applyStatus(intentID, paymentmodel.StatusDisputed, &paymentpkg.StatusMetadata{
		DisputeDetails: mustJSON(map[string]any{
			"dispute_id":   dp.ID,
			"reason":       string(dp.Reason),
			"status":       string(dp.Status),
			"amount_cents": dp.Amount,
		}),
	})
	return err
}

func (h *Handler) handleChargeRefunded(event *stripe.Event) error {
	var ch stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
		return fmt.Errorf("failed to parse charge: %w", err)
	}
	intentID := chargeIntentID(&ch)
	if intentID == "" {
		h.Logger.Warn("charge.refunded without payment intent reference", "charge_id", ch.ID)
		return nil
	}

	_, err := h.applyStatus(intentID, paymentmodel.StatusRefunded, &paymentpkg.StatusMetadata{
		RefundDetails: mustJSON(map[string]any{
			"charge_id":             ch.ID,
			"amount_refunded_cents": ch.AmountRefunded,
		}),
	})
	return err
}

// applyStatus funnels every event through the payment service's transition
// rules. A missing payment returns (nil, nil): the delivery is acknowledged
// with a warning rather than bounced back into Stripe's retry loop.
func (h *Handler) applyStatus(stripeID, status string, meta *paymentpkg.StatusMetadata) (*paymentmodel.Payment, error) {
	record, err := h.paymentService.ApplyStatus(stripeID, status, meta)
	if err != nil {
		if errors.Is(err, apperrors.ErrPaymentNotFound) {
			h.Logger.Warn("webhook references unknown payment",
				"stripe_payment_id", stripeID,
				"target_status", status)
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func chargeIntentID(ch *stripe.Charge) string {
	if ch.PaymentIntent == nil {
		return ""
	}
	return ch.PaymentIntent.ID
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
