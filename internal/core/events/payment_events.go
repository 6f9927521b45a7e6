package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypePaymentInitiated = "payment.initiated"
	EventTypePaymentFailed    = "payment.failed"
)

type PaymentInitiatedEvent struct {
	BaseEvent
	TransactionID    string          `json:"transaction_id"`
	BookingReference string          `json:"booking_reference"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	CheckoutURL      string          `json:"checkout_url"`
}

func NewPaymentInitiatedEvent(transactionID, bookingReference string, amount decimal.Decimal, currency, checkoutURL string) *PaymentInitiatedEvent {
	return &PaymentInitiatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypePaymentInitiated,
			Timestamp: time.Now().UTC(),
			Subject:   transactionID,
			Data: map[string]interface{}{
				"transaction_id":    transactionID,
				"booking_reference": bookingReference,
				"amount":            amount.String(),
				"currency":          currency,
				"checkout_url":      checkoutURL,
			},
		},
		TransactionID:    transactionID,
		BookingReference: bookingReference,
		Amount:           amount,
		Currency:         currency,
		CheckoutURL:      checkoutURL,
	}
}

type PaymentFailedEvent struct {
	BaseEvent
	TransactionID    string          `json:"transaction_id"`
	BookingReference string          `json:"booking_reference"`
	Amount           decimal.Decimal `json:"amount"`
	Reason           string          `json:"reason"`
}

func NewPaymentFailedEvent(transactionID, bookingReference string, amount decimal.Decimal, reason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypePaymentFailed,
			Timestamp: time.Now().UTC(),
			Subject:   transactionID,
			Data: map[string]interface{}{
				"transaction_id":    transactionID,
				"booking_reference": bookingReference,
				"amount":            amount.String(),
				"reason":            reason,
			},
		},
		TransactionID:    transactionID,
		BookingReference: bookingReference,
		Amount:           amount,
		Reason:           reason,
	}
}
