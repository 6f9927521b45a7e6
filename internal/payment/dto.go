package payment

import (
	"strings"

	errors "github.com/frahmantamala/travel-booking/internal"
	"github.com/frahmantamala/travel-booking/internal/core/common/validation"
	"github.com/frahmantamala/travel-booking/internal/core/datamodel/payment"
	"github.com/shopspring/decimal"
)

// maxAmount is the largest value numeric(12,2) holds.
var maxAmount = decimal.RequireFromString("9999999999.99")

// InitiatePaymentRequest carries the four fields of a payment initiation.
// Amount stays a string until Validate parses it into AmountValue.
type InitiatePaymentRequest struct {
	BookingReference string `json:"booking_reference"`
	Amount           string `json:"amount"`
	Email            string `json:"email"`
	Name             string `json:"name"`

	AmountValue decimal.Decimal `json:"-"`
}

// Validate is all-or-nothing on presence: one missing field rejects the
// request with ErrMissingFields before anything else is checked.
func (r *InitiatePaymentRequest) Validate() error {
	r.BookingReference = strings.TrimSpace(r.BookingReference)
	r.Amount = strings.TrimSpace(r.Amount)
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)

	if r.BookingReference == "" || r.Amount == "" || r.Email == "" || r.Name == "" {
		return errors.ErrMissingFields
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return errors.ErrInvalidAmount.WithCause(err)
	}
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) || amount.GreaterThan(maxAmount) {
		return errors.ErrInvalidAmount
	}
	r.AmountValue = amount
	return nil
}

// InitiatePaymentResponse is returned when the gateway accepted the
// transaction and produced a checkout page.
type InitiatePaymentResponse struct {
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id"`
	CheckoutURL   string `json:"checkout_url"`
}

const InitiatedMessage = "Payment initiated successfully."

type UpdatePaymentStatusDTO struct {
	Status string `json:"status"`
}

func (d *UpdatePaymentStatusDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("status", d.Status).
		Required().
		OneOf(payment.StatusPending, payment.StatusSuccess, payment.StatusFailed)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type ListFilter struct {
	BookingReference string
	Status           string
	// TransactionID narrows the result to the one payment carrying it.
	TransactionID string
	Limit            int
	Offset           int
}

type PaymentsResponse struct {
	Payments []*Payment `json:"payments"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}
