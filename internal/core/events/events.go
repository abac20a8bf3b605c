package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentSucceeded = "payment.succeeded"
	EventTypePaymentFailed    = "payment.failed"
	EventTypeInvoiceCreated   = "invoice.created"
	EventTypeDocumentUploaded = "document.uploaded"
)

type PaymentSucceededEvent struct {
	BaseEvent
	PaymentID       int64  `json:"payment_id"`
	StripePaymentID string `json:"stripe_payment_id"`
	UserEmail       string `json:"user_email"`
	AmountCents     int64  `json:"amount_cents"`
	PlanName        string `json:"plan_name"`
}

func NewPaymentSucceededEvent(paymentID int64, stripePaymentID, userEmail string, amountCents int64, planName string) *PaymentSucceededEvent {
	return &PaymentSucceededEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentSucceeded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":        paymentID,
				"stripe_payment_id": stripePaymentID,
				"user_email":        userEmail,
				"amount_cents":      amountCents,
				"plan_name":         planName,
			},
		},
		PaymentID:       paymentID,
		StripePaymentID: stripePaymentID,
		UserEmail:       userEmail,
		AmountCents:     amountCents,
		PlanName:        planName,
	}
}

type PaymentFailedEvent struct {
	BaseEvent
	PaymentID       int64  `json:"payment_id"`
	StripePaymentID string `json:"stripe_payment_id"`
	UserEmail       string `json:"user_email"`
	FailureMessage  string `json:"failure_message"`
}

func NewPaymentFailedEvent(paymentID int64, stripePaymentID, userEmail, failureMessage string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":        paymentID,
				"stripe_payment_id": stripePaymentID,
				"user_email":        userEmail,
				"failure_message":   failureMessage,
			},
		},
		PaymentID:       paymentID,
		StripePaymentID: stripePaymentID,
		UserEmail:       userEmail,
		FailureMessage:  failureMessage,
	}
}

type InvoiceCreatedEvent struct {
	BaseEvent
	InvoiceID     int64  `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	PaymentID     int64  `json:"payment_id"`
}

func NewInvoiceCreatedEvent(invoiceID int64, invoiceNumber string, paymentID int64) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeInvoiceCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"invoice_id":     invoiceID,
				"invoice_number": invoiceNumber,
				"payment_id":     paymentID,
			},
		},
		InvoiceID:     invoiceID,
		InvoiceNumber: invoiceNumber,
		PaymentID:     paymentID,
	}
}

type DocumentUploadedEvent struct {
	BaseEvent
	DocumentID int64  `json:"document_id"`
	UserEmail  string `json:"user_email"`
	StoredPath string `json:"stored_path"`
}

func NewDocumentUploadedEvent(documentID int64, userEmail, storedPath string) *DocumentUploadedEvent {
	return &DocumentUploadedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDocumentUploaded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"document_id": documentID,
				"user_email":  userEmail,
				"stored_path": storedPath,
			},
		},
		DocumentID: documentID,
		UserEmail:  userEmail,
		StoredPath: storedPath,
	}
}
