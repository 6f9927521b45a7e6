package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/travel-booking/internal/booking"
	bookingDatamodel "github.com/frahmantamala/travel-booking/internal/core/datamodel/booking"
	listingDatamodel "github.com/frahmantamala/travel-booking/internal/core/datamodel/listing"
	"github.com/frahmantamala/travel-booking/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample listings and bookings for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer db.Close()

		gormDB, err := initGorm(db)
		if err != nil {
			return fmt.Errorf("failed to init gorm: %w", err)
		}

		return seed(cmd.Context(), gormDB, clearData)
	},
}

var sampleListings = []listingDatamodel.Listing{
	{Title: "Lakeside Cabin", Description: "Two-bedroom cabin on Lake Tana.", Location: "Bahir Dar", PricePerNight: decimal.RequireFromString("85.00")},
	{Title: "City Loft", Description: "Top-floor loft near Meskel Square.", Location: "Addis Ababa", PricePerNight: decimal.RequireFromString("120.00")},
	{Title: "Castle View Guesthouse", Description: "Quiet rooms a short walk from Fasil Ghebbi.", Location: "Gondar", PricePerNight: decimal.RequireFromString("60.50")},
}

func seed(ctx context.Context, db *gorm.DB, clear bool) error {
	log := logger.LoggerWrapper()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clear {
			for _, table := range []string{"payments", "bookings", "listings"} {
				if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
					return fmt.Errorf("clear %s: %w", table, err)
				}
			}
			log.Info("cleared existing data")
		}

		checkIn := time.Now().UTC().AddDate(0, 0, 14).Truncate(24 * time.Hour)

		for i := range sampleListings {
			l := sampleListings[i]

			var existing listingDatamodel.Listing
			err := tx.Where("title = ? AND location = ?", l.Title, l.Location).First(&existing).Error
			if err == nil {
				log.Info("listing already exists", "title", l.Title)
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("lookup listing %q: %w", l.Title, err)
			}

			if err := tx.Create(&l).Error; err != nil {
				return fmt.Errorf("insert listing %q: %w", l.Title, err)
			}

			nights := 3
			b := bookingDatamodel.Booking{
				Reference:  booking.NewReference(),
				ListingID:  l.ID,
				GuestName:  "Sample Guest",
				GuestEmail: fmt.Sprintf("guest%d@example.com", i+1),
				CheckIn:    checkIn,
				CheckOut:   checkIn.AddDate(0, 0, nights),
				TotalPrice: l.PricePerNight.Mul(decimal.NewFromInt(int64(nights))),
				Status:     booking.StatusPending,
			}
			if err := tx.Create(&b).Error; err != nil {
				return fmt.Errorf("insert booking for %q: %w", l.Title, err)
			}

			log.Info("seeded listing", "title", l.Title, "listing_id", l.ID, "booking_reference", b.Reference)
		}
		return nil
	})
}
