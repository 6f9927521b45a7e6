package listing

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/travel-booking/internal"
	listingDatamodel "github.com/frahmantamala/travel-booking/internal/core/datamodel/listing"
)

// RepositoryAPI returns errors.ErrListingNotFound when no row matches.
type RepositoryAPI interface {
	List(ctx context.Context, limit, offset int) ([]*listingDatamodel.Listing, error)
	GetByID(ctx context.Context, id int64) (*listingDatamodel.Listing, error)
	Create(ctx context.Context, listing *listingDatamodel.Listing) error
	Update(ctx context.Context, listing *listingDatamodel.Listing) error
	Delete(ctx context.Context, id int64) error
}

type ServiceAPI interface {
	ListListings(ctx context.Context, limit, offset int) ([]*Listing, error)
	GetListing(ctx context.Context, id int64) (*Listing, error)
	CreateListing(ctx context.Context, dto *ListingDTO) (*Listing, error)
	ReplaceListing(ctx context.Context, id int64, dto *ListingDTO) (*Listing, error)
	PatchListing(ctx context.Context, id int64, dto *PatchListingDTO) (*Listing, error)
	DeleteListing(ctx context.Context, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListListings(ctx context.Context, limit, offset int) ([]*Listing, error) {
	records, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list listings", "error", err)
		return nil, errors.NewInternalError("failed to list listings", err)
	}

	listings := make([]*Listing, 0, len(records))
	for _, r := range records {
		listings = append(listings, FromDataModel(r))
	}
	return listings, nil
}

func (s *Service) GetListing(ctx context.Context, id int64) (*Listing, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(record), nil
}

func (s *Service) CreateListing(ctx context.Context, dto *ListingDTO) (*Listing, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	record := &listingDatamodel.Listing{
		Title:         dto.Title,
		Description:   dto.Description,
		Location:      dto.Location,
		PricePerNight: dto.PricePerNight,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to create listing", "error", err)
		return nil, errors.NewInternalError("failed to create listing", err)
	}

	s.logger.Info("listing created", "listing_id", record.ID, "title", record.Title)
	return FromDataModel(record), nil
}

func (s *Service) ReplaceListing(ctx context.Context, id int64, dto *ListingDTO) (*Listing, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}

	current.Title = dto.Title
	current.Description = dto.Description
	current.Location = dto.Location
	current.PricePerNight = dto.PricePerNight

	return s.save(ctx, current)
}

func (s *Service) PatchListing(ctx context.Context, id int64, dto *PatchListingDTO) (*Listing, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}

	dto.Apply(current)
	return s.save(ctx, current)
}

func (s *Service) save(ctx context.Context, l *Listing) (*Listing, error) {
	record := ToDataModel(l)
	if err := s.repo.Update(ctx, record); err != nil {
		s.logger.Error("failed to update listing", "error", err, "listing_id", l.ID)
		return nil, errors.NewInternalError("failed to update listing", err)
	}

	s.logger.Info("listing updated", "listing_id", record.ID)
	return FromDataModel(record), nil
}

func (s *Service) DeleteListing(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete listing", "error", err, "listing_id", id)
		return errors.NewInternalError("failed to delete listing", err)
	}
	s.logger.Info("listing deleted", "listing_id", id)
	return nil
}
