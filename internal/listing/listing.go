package listing

import (
	"time"

	listingDatamodel "github.com/frahmantamala/travel-booking/internal/core/datamodel/listing"
	"github.com/shopspring/decimal"
)

type Listing struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Location      string          `json:"location"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func ToDataModel(l *Listing) *listingDatamodel.Listing {
	return &listingDatamodel.Listing{
		ID:            l.ID,
		Title:         l.Title,
		Description:   l.Description,
		Location:      l.Location,
		PricePerNight: l.PricePerNight,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func FromDataModel(l *listingDatamodel.Listing) *Listing {
	return &Listing{
		ID:            l.ID,
		Title:         l.Title,
		Description:   l.Description,
		Location:      l.Location,
		PricePerNight: l.PricePerNight,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}
