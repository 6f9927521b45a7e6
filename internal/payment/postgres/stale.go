package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/travel-booking/internal/core/datamodel/payment"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// StalePayment is a pending payment whose gateway outcome was never recorded.
type StalePayment struct {
	ID               int64           `db:"id" json:"id"`
	BookingReference string          `db:"booking_reference" json:"booking_reference"`
	TransactionID    string          `db:"transaction_id" json:"transaction_id"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	Currency         string          `db:"currency" json:"currency"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

type StaleReport struct {
	db *sqlx.DB
}

func NewStaleReport(db *sqlx.DB) *StaleReport {
	return &StaleReport{db: db}
}

const staleQuery = `
SELECT id, booking_reference, transaction_id, amount, currency, created_at
FROM payments
WHERE status = ? AND created_at < ?
ORDER BY created_at ASC, id ASC`

// Pending returns payments still Pending that were created before now-olderThan.
func (s *StaleReport) Pending(ctx context.Context, olderThan time.Duration, now time.Time) ([]StalePayment, error) {
	if olderThan <= 0 {
		return nil, fmt.Errorf("older-than must be positive, got %s", olderThan)
	}

	cutoff := now.UTC().Add(-olderThan)
	var rows []StalePayment
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(staleQuery), payment.StatusPending, cutoff); err != nil {
		return nil, fmt.Errorf("query stale payments: %w", err)
	}
	return rows, nil
}
