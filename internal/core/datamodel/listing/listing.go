package listing

import (
	"time"

	"github.com/shopspring/decimal"
)

type Listing struct {
	ID            int64           `gorm:"primaryKey"`
	Title         string          `gorm:"column:title;not null"`
	Description   string          `gorm:"column:description"`
	Location      string          `gorm:"column:location;not null"`
	PricePerNight decimal.Decimal `gorm:"column:price_per_night;type:numeric(12,2);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Listing) TableName() string {
	return "listings"
}
