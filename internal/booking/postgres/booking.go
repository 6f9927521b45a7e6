package postgres

import (
	"context"
	stderrors "errors"

	errors "github.com/frahmantamala/travel-booking/internal"
	"github.com/frahmantamala/travel-booking/internal/booking"
	bookingDatamodel "github.com/frahmantamala/travel-booking/internal/core/datamodel/booking"
	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) booking.RepositoryAPI {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) List(ctx context.Context, filter booking.ListFilter) ([]*bookingDatamodel.Booking, error) {
	query := r.db.WithContext(ctx).Model(&bookingDatamodel.Booking{})

	if filter.ListingID > 0 {
		query = query.Where("listing_id = ?", filter.ListingID)
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

	var bookings []*bookingDatamodel.Booking
	err := query.Order("check_in ASC").Order("id ASC").Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*bookingDatamodel.Booking, error) {
	var b bookingDatamodel.Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *BookingRepository) GetByReference(ctx context.Context, reference string) (*bookingDatamodel.Booking, error) {
	var b bookingDatamodel.Booking
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&b).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *BookingRepository) Create(ctx context.Context, b *bookingDatamodel.Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingRepository) Update(ctx context.Context, b *bookingDatamodel.Booking) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&bookingDatamodel.Booking{}, id).Error
}

func notFound(err error) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.ErrBookingNotFound
	}
	return err
}
