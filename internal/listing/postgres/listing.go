package postgres

import (
	"context"
	stderrors "errors"

	errors "github.com/frahmantamala/travel-booking/internal"
	listingDatamodel "github.com/frahmantamala/travel-booking/internal/core/datamodel/listing"
	"github.com/frahmantamala/travel-booking/internal/listing"
	"gorm.io/gorm"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) listing.RepositoryAPI {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) List(ctx context.Context, limit, offset int) ([]*listingDatamodel.Listing, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var listings []*listingDatamodel.Listing
	err := query.Find(&listings).Error
	return listings, err
}

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*listingDatamodel.Listing, error) {
	var l listingDatamodel.Listing
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrListingNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *ListingRepository) Create(ctx context.Context, l *listingDatamodel.Listing) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *ListingRepository) Update(ctx context.Context, l *listingDatamodel.Listing) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *ListingRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&listingDatamodel.Listing{}, id).Error
}
