package listing

import (
	"strings"

	errors "github.com/frahmantamala/travel-booking/internal"
	"github.com/frahmantamala/travel-booking/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

const maxTextLength = 255

// ListingDTO is the body of POST and PUT: every field is replaced.
type ListingDTO struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Location      string          `json:"location"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
}

func (d *ListingDTO) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	d.Location = strings.TrimSpace(d.Location)

	validator := validation.NewValidator()

	validator.Field("title", d.Title).
		Required().
		MaxLength(maxTextLength)

	validator.Field("location", d.Location).
		Required().
		MaxLength(maxTextLength)

	validator.Field("price_per_night", d.PricePerNight).
		Required().
		Positive(errors.ErrCodeInvalidAmount)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// PatchListingDTO is the body of PATCH; nil fields are left as they are.
type PatchListingDTO struct {
	Title         *string          `json:"title"`
	Description   *string          `json:"description"`
	Location      *string          `json:"location"`
	PricePerNight *decimal.Decimal `json:"price_per_night"`
}

func (d *PatchListingDTO) Validate() error {
	validator := validation.NewValidator()

	if d.Title != nil {
		trimmed := strings.TrimSpace(*d.Title)
		d.Title = &trimmed
		validator.Field("title", d.Title).Required().MaxLength(maxTextLength)
	}
	if d.Location != nil {
		trimmed := strings.TrimSpace(*d.Location)
		d.Location = &trimmed
		validator.Field("location", d.Location).Required().MaxLength(maxTextLength)
	}
	if d.PricePerNight != nil {
		validator.Field("price_per_night", d.PricePerNight).Positive(errors.ErrCodeInvalidAmount)
	}

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (d *PatchListingDTO) Apply(l *Listing) {
	if d.Title != nil {
		l.Title = *d.Title
	}
	if d.Description != nil {
		l.Description = *d.Description
	}
	if d.Location != nil {
		l.Location = *d.Location
	}
	if d.PricePerNight != nil {
		l.PricePerNight = *d.PricePerNight
	}
}

type ListingsResponse struct {
	Listings []*Listing `json:"listings"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}
