package payment

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending = "Pending"
	StatusSuccess = "Success"
	StatusFailed  = "Failed"
)

type Payment struct {
	ID               int64           `gorm:"primaryKey"`
	BookingReference string          `gorm:"column:booking_reference;not null;index"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency         string          `gorm:"column:currency;not null"`
	TransactionID    string          `gorm:"column:transaction_id;not null;uniqueIndex"`
	Status           string          `gorm:"column:status;not null;default:Pending"`
	FailureReason    *string         `gorm:"column:failure_reason"`
	GatewayResponse  json.RawMessage `gorm:"column:gateway_response;type:jsonb"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}
