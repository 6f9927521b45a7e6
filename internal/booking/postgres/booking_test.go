package postgres_test

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/frahmantamala/travel-booking/internal"
	"github.com/frahmantamala/travel-booking/internal/booking"
	"github.com/frahmantamala/travel-booking/internal/booking/postgres"
	bookingDatamodel "github.com/frahmantamala/travel-booking/internal/core/datamodel/booking"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestBookingPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Booking Postgres Suite")
}

var _ = Describe("BookingRepository", func() {
	var (
		ctx  context.Context
		repo booking.RepositoryAPI
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&bookingDatamodel.Booking{})).To(Succeed())

		repo = postgres.NewBookingRepository(db)
	})

	newBooking := func(ref string, listingID int64, day int) *bookingDatamodel.Booking {
		return &bookingDatamodel.Booking{
			Reference:  ref,
			ListingID:  listingID,
			GuestName:  "Ada",
			GuestEmail: "a@b.com",
			CheckIn:    time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2025, 6, day+2, 0, 0, 0, 0, time.UTC),
			TotalPrice: decimal.NewFromInt(200),
			Status:     booking.StatusPending,
		}
	}

	It("should find a booking by reference", func() {
		Expect(repo.Create(ctx, newBooking("BK-AAAA0001", 1, 1))).To(Succeed())

		found, err := repo.GetByReference(ctx, "BK-AAAA0001")

		Expect(err).NotTo(HaveOccurred())
		Expect(found.ListingID).To(Equal(int64(1)))
		Expect(found.CheckIn.Format(booking.DateLayout)).To(Equal("2025-06-01"))
	})

	It("should map missing rows to ErrBookingNotFound", func() {
		_, err := repo.GetByID(ctx, 1)
		Expect(err).To(MatchError(apperrors.ErrBookingNotFound))

		_, err = repo.GetByReference(ctx, "BK-NONE")
		Expect(err).To(MatchError(apperrors.ErrBookingNotFound))
	})

	It("should enforce unique references", func() {
		Expect(repo.Create(ctx, newBooking("BK-SAME", 1, 1))).To(Succeed())

		Expect(repo.Create(ctx, newBooking("BK-SAME", 2, 5))).NotTo(Succeed())
	})

	It("should list by listing ordered by check-in", func() {
		Expect(repo.Create(ctx, newBooking("BK-3", 1, 10))).To(Succeed())
		Expect(repo.Create(ctx, newBooking("BK-1", 1, 2))).To(Succeed())
		Expect(repo.Create(ctx, newBooking("BK-2", 2, 4))).To(Succeed())

		bookings, err := repo.List(ctx, booking.ListFilter{ListingID: 1, Limit: 10})

		Expect(err).NotTo(HaveOccurred())
		Expect(bookings).To(HaveLen(2))
		Expect(bookings[0].Reference).To(Equal("BK-1"))
		Expect(bookings[1].Reference).To(Equal("BK-3"))
	})
})
