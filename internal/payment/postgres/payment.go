package postgres

import (
	"context"
	"encoding/json"
	stderrors "errors"

	errors "github.com/frahmantamala/travel-booking/internal"
	"github.com/frahmantamala/travel-booking/internal/core/datamodel/payment"
	paymentpkg "github.com/frahmantamala/travel-booking/internal/payment"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) paymentpkg.RepositoryAPI {
	return &PaymentRepository{
		db: db,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *PaymentRepository) List(ctx context.Context, filter paymentpkg.ListFilter) ([]*payment.Payment, error) {
	query := r.db.WithContext(ctx).Model(&payment.Payment{})

	if filter.BookingReference != "" {
		query = query.Where("booking_reference = ?", filter.BookingReference)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var payments []*payment.Payment
	err := query.Order("created_at DESC").Order("id DESC").Find(&payments).Error
	return payments, err
}

// MarkFailed only touches rows that are still Pending, so a payment settled
// elsewhere is never overwritten.
func (r *PaymentRepository) MarkFailed(ctx context.Context, id int64, reason string, gatewayResponse json.RawMessage) error {
	updates := map[string]interface{}{
		"status":         payment.StatusFailed,
		"failure_reason": reason,
	}
	if len(gatewayResponse) > 0 {
		updates["gateway_response"] = gatewayResponse
	}

	result := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Where("id = ? AND status = ?", id, payment.StatusPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrInvalidTransition
	}
	return nil
}

// TransitionStatus is a compare-and-set on the status column.
func (r *PaymentRepository) TransitionStatus(ctx context.Context, id int64, from, to string) error {
	result := r.db.WithContext(ctx).
		Model(&payment.Payment{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrInvalidTransition.WithDetails(map[string]string{
			"from": from,
			"to":   to,
		})
	}
	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&payment.Payment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.ErrPaymentNotFound
	}
	return nil
}

func notFound(err error) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrPaymentNotFound
	}
	return err
}
