package booking

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/travel-booking/internal"
	bookingDatamodel "github.com/frahmantamala/travel-booking/internal/core/datamodel/booking"
	listingDatamodel "github.com/frahmantamala/travel-booking/internal/core/datamodel/listing"
	"github.com/shopspring/decimal"
)

// RepositoryAPI returns errors.ErrBookingNotFound when no row matches.
type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*bookingDatamodel.Booking, error)
	GetByID(ctx context.Context, id int64) (*bookingDatamodel.Booking, error)
	GetByReference(ctx context.Context, reference string) (*bookingDatamodel.Booking, error)
	Create(ctx context.Context, booking *bookingDatamodel.Booking) error
	Update(ctx context.Context, booking *bookingDatamodel.Booking) error
	Delete(ctx context.Context, id int64) error
}

// ListingLookup resolves the listing a booking is made against.
type ListingLookup interface {
	GetByID(ctx context.Context, id int64) (*listingDatamodel.Listing, error)
}

type ServiceAPI interface {
	ListBookings(ctx context.Context, filter ListFilter) ([]*Booking, error)
	GetBooking(ctx context.Context, id int64) (*Booking, error)
	CreateBooking(ctx context.Context, dto *BookingDTO) (*Booking, error)
	ReplaceBooking(ctx context.Context, id int64, dto *BookingDTO) (*Booking, error)
	PatchBooking(ctx context.Context, id int64, dto *PatchBookingDTO) (*Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
}

type Service struct {
	repo         RepositoryAPI
	listings     ListingLookup
	logger       *slog.Logger
	newReference func() string
}

func NewService(repo RepositoryAPI, listings ListingLookup, logger *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		listings:     listings,
		logger:       logger,
		newReference: NewReference,
	}
}

func (s *Service) ListBookings(ctx context.Context, filter ListFilter) ([]*Booking, error) {
	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return nil, errors.NewValidationFieldError("status", "status must be one of pending, confirmed, canceled", errors.ErrCodeInvalidStatus)
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list bookings", "error", err)
		return nil, errors.NewInternalError("failed to list bookings", err)
	}

	bookings := make([]*Booking, 0, len(records))
	for _, r := range records {
		bookings = append(bookings, FromDataModel(r))
	}
	return bookings, nil
}

func (s *Service) GetBooking(ctx context.Context, id int64) (*Booking, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(record), nil
}

func (s *Service) CreateBooking(ctx context.Context, dto *BookingDTO) (*Booking, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	listing, err := s.lookupListing(ctx, dto.ListingID)
	if err != nil {
		return nil, err
	}

	reference := dto.Reference
	if reference == "" {
		reference = s.newReference()
	}
	if err := s.ensureReferenceFree(ctx, reference, 0); err != nil {
		return nil, err
	}

	checkIn, checkOut := dto.Dates()
	record := &bookingDatamodel.Booking{
		Reference:  reference,
		ListingID:  listing.ID,
		GuestName:  dto.GuestName,
		GuestEmail: dto.GuestEmail,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalPrice: priceFor(listing, dto.TotalPrice, checkIn, checkOut),
		Status:     dto.Status,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to create booking", "error", err, "reference", reference)
		return nil, errors.NewInternalError("failed to create booking", err)
	}

	s.logger.Info("booking created",
		"booking_id", record.ID,
		"reference", record.Reference,
		"listing_id", record.ListingID,
		"total_price", record.TotalPrice.String())

	return FromDataModel(record), nil
}

// ReplaceBooking handles a full update. An empty reference keeps the
// current one.
func (s *Service) ReplaceBooking(ctx context.Context, id int64, dto *BookingDTO) (*Booking, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	listing, err := s.lookupListing(ctx, dto.ListingID)
	if err != nil {
		return nil, err
	}

	if dto.Reference != "" && dto.Reference != current.Reference {
		if err := s.ensureReferenceFree(ctx, dto.Reference, id); err != nil {
			return nil, err
		}
		current.Reference = dto.Reference
	}

	checkIn, checkOut := dto.Dates()
	current.ListingID = listing.ID
	current.GuestName = dto.GuestName
	current.GuestEmail = dto.GuestEmail
	current.CheckIn = checkIn
	current.CheckOut = checkOut
	current.TotalPrice = priceFor(listing, dto.TotalPrice, checkIn, checkOut)
	current.Status = dto.Status

	return s.save(ctx, current)
}

func (s *Service) PatchBooking(ctx context.Context, id int64, dto *PatchBookingDTO) (*Booking, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	datesChanged := false
	if dto.GuestName != nil {
		current.GuestName = *dto.GuestName
	}
	if dto.GuestEmail != nil {
		current.GuestEmail = *dto.GuestEmail
	}
	if dto.Status != nil {
		current.Status = *dto.Status
	}
	if dto.CheckIn != nil {
		current.CheckIn = dto.checkIn
		datesChanged = true
	}
	if dto.CheckOut != nil {
		current.CheckOut = dto.checkOut
		datesChanged = true
	}

	if datesChanged && !current.CheckOut.After(current.CheckIn) {
		return nil, errors.NewValidationFieldError("check_out", "check_out must be after check_in", errors.ErrCodeInvalidDate)
	}

	switch {
	case dto.TotalPrice != nil:
		current.TotalPrice = *dto.TotalPrice
	case datesChanged:
		listing, err := s.lookupListing(ctx, current.ListingID)
		if err != nil {
			return nil, err
		}
		current.TotalPrice = priceFor(listing, nil, current.CheckIn, current.CheckOut)
	}

	return s.save(ctx, current)
}

func (s *Service) save(ctx context.Context, record *bookingDatamodel.Booking) (*Booking, error) {
	if err := s.repo.Update(ctx, record); err != nil {
		s.logger.Error("failed to update booking", "error", err, "booking_id", record.ID)
		return nil, errors.NewInternalError("failed to update booking", err)
	}

	s.logger.Info("booking updated", "booking_id", record.ID, "status", record.Status)
	return FromDataModel(record), nil
}

func (s *Service) DeleteBooking(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete booking", "error", err, "booking_id", id)
		return errors.NewInternalError("failed to delete booking", err)
	}
	s.logger.Info("booking deleted", "booking_id", id)
	return nil
}

// lookupListing reports an unknown listing as a validation failure on
// listing_id rather than a missing resource.
func (s *Service) lookupListing(ctx context.Context, id int64) (*listingDatamodel.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, errors.ErrListingNotFound) {
			return nil, errors.NewValidationFieldError("listing_id", "listing does not exist", errors.ErrCodeListingNotFound)
		}
		return nil, errors.NewInternalError("failed to load listing", err)
	}
	return listing, nil
}

func (s *Service) ensureReferenceFree(ctx context.Context, reference string, ownerID int64) error {
	existing, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		if stderrors.Is(err, errors.ErrBookingNotFound) {
			return nil
		}
		return errors.NewInternalError("failed to check booking reference", err)
	}
	if existing.ID == ownerID {
		return nil
	}
	return errors.NewConflictError("booking reference already exists", errors.ErrCodeDuplicateReference).
		WithDetails(map[string]string{"reference": reference})
}

// priceFor uses an explicit total when given, otherwise nightly rate times
// nights.
func priceFor(listing *listingDatamodel.Listing, explicit *decimal.Decimal, checkIn, checkOut time.Time) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	nights := Nights(checkIn, checkOut)
	return listing.PricePerNight.Mul(decimal.NewFromInt(int64(nights)))
}
