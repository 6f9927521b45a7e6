package payment

import (
	"encoding/json"
	"time"

	"github.com/frahmantamala/travel-booking/internal/core/datamodel/payment"
	"github.com/shopspring/decimal"
)

// Payment is the API representation of a payment attempt.
type Payment struct {
	ID               int64           `json:"id"`
	BookingReference string          `json:"booking_reference"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	TransactionID    string          `json:"transaction_id"`
	Status           string          `json:"status"`
	FailureReason    *string         `json:"failure_reason,omitempty"`
	GatewayResponse  json.RawMessage `json:"gateway_response,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func FromDataModel(p *payment.Payment) *Payment {
	return &Payment{
		ID:               p.ID,
		BookingReference: p.BookingReference,
		Amount:           p.Amount,
		Currency:         p.Currency,
		TransactionID:    p.TransactionID,
		Status:           p.Status,
		FailureReason:    p.FailureReason,
		GatewayResponse:  p.GatewayResponse,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// CanTransition reports whether a payment may move from one status to
// another. Only pending payments move, and only to a terminal status.
func CanTransition(from, to string) bool {
	if from != payment.StatusPending {
		return false
	}
	return to == payment.StatusSuccess || to == payment.StatusFailed
}

func IsValidStatus(status string) bool {
	switch status {
	case payment.StatusPending, payment.StatusSuccess, payment.StatusFailed:
		return true
	}
	return false
}
