package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID         int64           `gorm:"primaryKey"`
	Reference  string          `gorm:"column:reference;not null;uniqueIndex"`
	ListingID  int64           `gorm:"column:listing_id;not null;index"`
	GuestName  string          `gorm:"column:guest_name;not null"`
	GuestEmail string          `gorm:"column:guest_email;not null"`
	CheckIn    time.Time       `gorm:"column:check_in;type:date;not null"`
	CheckOut   time.Time       `gorm:"column:check_out;type:date;not null"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	Status     string          `gorm:"column:status;not null;default:pending"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Booking) TableName() string {
	return "bookings"
}
