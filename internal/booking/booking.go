package booking

import (
	"strings"
	"time"

	bookingDatamodel "github.com/frahmantamala/travel-booking/internal/core/datamodel/booking"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCanceled  = "canceled"

	ReferencePrefix = "BK-"
	DateLayout      = "2006-01-02"
)

type Booking struct {
	ID         int64           `json:"id"`
	Reference  string          `json:"reference"`
	ListingID  int64           `json:"listing_id"`
	GuestName  string          `json:"guest_name"`
	GuestEmail string          `json:"guest_email"`
	CheckIn    string          `json:"check_in"`
	CheckOut   string          `json:"check_out"`
	Nights     int             `json:"nights"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewReference returns BK- followed by 8 uppercase hex characters.
func NewReference() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return ReferencePrefix + strings.ToUpper(hex[:8])
}

// Nights counts calendar days between check-in and check-out.
func Nights(checkIn, checkOut time.Time) int {
	in := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)
	return int(out.Sub(in).Hours() / 24)
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusCanceled:
		return true
	}
	return false
}

func FromDataModel(b *bookingDatamodel.Booking) *Booking {
	return &Booking{
		ID:         b.ID,
		Reference:  b.Reference,
		ListingID:  b.ListingID,
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
		CheckIn:    b.CheckIn.Format(DateLayout),
		CheckOut:   b.CheckOut.Format(DateLayout),
		Nights:     Nights(b.CheckIn, b.CheckOut),
		TotalPrice: b.TotalPrice,
		Status:     b.Status,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}
