package booking

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/travel-booking/internal"
	"github.com/frahmantamala/travel-booking/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

const maxTextLength = 255

// BookingDTO is the body of POST and PUT. Reference and TotalPrice are
// optional: a reference is generated and the price is derived from the
// listing's nightly rate when they are left out.
type BookingDTO struct {
	Reference  string           `json:"reference"`
	ListingID  int64            `json:"listing_id"`
	GuestName  string           `json:"guest_name"`
	GuestEmail string           `json:"guest_email"`
	CheckIn    string           `json:"check_in"`
	CheckOut   string           `json:"check_out"`
	TotalPrice *decimal.Decimal `json:"total_price"`
	Status     string           `json:"status"`

	checkIn  time.Time
	checkOut time.Time
}

func (d *BookingDTO) Validate() error {
	d.Reference = strings.TrimSpace(d.Reference)
	d.GuestName = strings.TrimSpace(d.GuestName)
	d.GuestEmail = strings.TrimSpace(d.GuestEmail)
	if d.Status == "" {
		d.Status = StatusPending
	}

	validator := validation.NewValidator()

	validator.Field("listing_id", d.ListingID).Required()
	validator.Field("guest_name", d.GuestName).Required().MaxLength(maxTextLength)
	validator.Field("guest_email", d.GuestEmail).Required().MaxLength(maxTextLength).Email()
	validator.Field("reference", d.Reference).MaxLength(64)
	validator.Field("status", d.Status).OneOf(StatusPending, StatusConfirmed, StatusCanceled)

	if d.TotalPrice != nil {
		validator.Field("total_price", d.TotalPrice).Positive(errors.ErrCodeInvalidAmount)
	}

	var dateErr *errors.AppError
	d.checkIn, dateErr = parseDate("check_in", d.CheckIn)
	validator.Field("check_in", d.checkIn).Custom(passthrough(dateErr)).Required()

	var outErr *errors.AppError
	d.checkOut, outErr = parseDate("check_out", d.CheckOut)
	validator.Field("check_out", d.checkOut).Custom(passthrough(outErr)).Required().After("check_in", d.checkIn)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (d *BookingDTO) Dates() (time.Time, time.Time) {
	return d.checkIn, d.checkOut
}

// PatchBookingDTO is the body of PATCH; nil fields are left as they are.
type PatchBookingDTO struct {
	GuestName  *string          `json:"guest_name"`
	GuestEmail *string          `json:"guest_email"`
	CheckIn    *string          `json:"check_in"`
	CheckOut   *string          `json:"check_out"`
	TotalPrice *decimal.Decimal `json:"total_price"`
	Status     *string          `json:"status"`

	checkIn  time.Time
	checkOut time.Time
}

func (d *PatchBookingDTO) Validate() error {
	validator := validation.NewValidator()

	if d.GuestName != nil {
		trimmed := strings.TrimSpace(*d.GuestName)
		d.GuestName = &trimmed
		validator.Field("guest_name", trimmed).Required().MaxLength(maxTextLength)
	}
	if d.GuestEmail != nil {
		trimmed := strings.TrimSpace(*d.GuestEmail)
		d.GuestEmail = &trimmed
		validator.Field("guest_email", trimmed).Required().Email()
	}
	if d.TotalPrice != nil {
		validator.Field("total_price", d.TotalPrice).Positive(errors.ErrCodeInvalidAmount)
	}
	if d.Status != nil {
		validator.Field("status", *d.Status).Required().OneOf(StatusPending, StatusConfirmed, StatusCanceled)
	}
	if d.CheckIn != nil {
		var appErr *errors.AppError
		d.checkIn, appErr = parseDate("check_in", *d.CheckIn)
		validator.Field("check_in", d.checkIn).Custom(passthrough(appErr)).Required()
	}
	if d.CheckOut != nil {
		var appErr *errors.AppError
		d.checkOut, appErr = parseDate("check_out", *d.CheckOut)
		validator.Field("check_out", d.checkOut).Custom(passthrough(appErr)).Required()
	}

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type ListFilter struct {
	ListingID int64
	Status    string
	Limit     int
	Offset    int
}

type BookingsResponse struct {
	Bookings []*Booking `json:"bookings"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// parseDate leaves an empty value to Required.
func parseDate(field, value string) (time.Time, *errors.AppError) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, errors.NewValidationFieldError(field, field+" must be a date in YYYY-MM-DD format", errors.ErrCodeInvalidDate)
	}
	return t, nil
}

func passthrough(appErr *errors.AppError) func(interface{}) *errors.AppError {
	return func(interface{}) *errors.AppError {
		return appErr
	}
}
