package booking_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/travel-booking/internal/booking"
	bookingPostgres "github.com/frahmantamala/travel-booking/internal/booking/postgres"
	bookingDatamodel "github.com/frahmantamala/travel-booking/internal/core/datamodel/booking"
	listingDatamodel "github.com/frahmantamala/travel-booking/internal/core/datamodel/listing"
	listingPostgres "github.com/frahmantamala/travel-booking/internal/listing/postgres"
	"github.com/frahmantamala/travel-booking/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Booking Handler Integration", func() {
	var router chi.Router

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&listingDatamodel.Listing{}, &bookingDatamodel.Booking{})).To(Succeed())

		Expect(db.Create(&listingDatamodel.Listing{
			Title:         "Cabin",
			Location:      "Bishoftu",
			PricePerNight: decimal.RequireFromString("100"),
		}).Error).NotTo(HaveOccurred())

		service := booking.NewService(
			bookingPostgres.NewBookingRepository(db),
			listingPostgres.NewListingRepository(db),
			slogger,
		)
		handler := booking.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/bookings", handler.ListBookings)
		router.Post("/bookings", handler.CreateBooking)
		router.Get("/bookings/{id}", handler.GetBooking)
		router.Put("/bookings/{id}", handler.ReplaceBooking)
		router.Patch("/bookings/{id}", handler.PatchBooking)
		router.Delete("/bookings/{id}", handler.DeleteBooking)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	createBody := `{"listing_id":1,"guest_name":"Ada","guest_email":"a@b.com","check_in":"2025-05-01","check_out":"2025-05-03"}`

	It("should create a booking against an existing listing", func() {
		w := do(http.MethodPost, "/bookings", createBody)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created booking.Booking
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.Reference).To(HavePrefix("BK-"))
		Expect(created.TotalPrice.String()).To(Equal("200"))
		Expect(created.CheckIn).To(Equal("2025-05-01"))
		Expect(created.CheckOut).To(Equal("2025-05-03"))

		w = do(http.MethodGet, "/bookings/1", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var fetched booking.Booking
		Expect(json.NewDecoder(w.Body).Decode(&fetched)).To(Succeed())
		Expect(fetched.Reference).To(Equal(created.Reference))
		Expect(fetched.CheckOut).To(Equal("2025-05-03"))
	})

	It("should reject a booking for an unknown listing", func() {
		w := do(http.MethodPost, "/bookings", strings.Replace(createBody, `"listing_id":1`, `"listing_id":7`, 1))

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should reject a duplicate reference with 409", func() {
		body := strings.Replace(createBody, `{`, `{"reference":"BK-FIXED",`, 1)
		Expect(do(http.MethodPost, "/bookings", body).Code).To(Equal(http.StatusCreated))

		Expect(do(http.MethodPost, "/bookings", body).Code).To(Equal(http.StatusConflict))
	})

	It("should filter by listing and status", func() {
		Expect(do(http.MethodPost, "/bookings", createBody).Code).To(Equal(http.StatusCreated))
		Expect(do(http.MethodPatch, "/bookings/1", `{"status":"confirmed"}`).Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodPost, "/bookings", createBody).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodGet, "/bookings?listing_id=1&status=confirmed", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp booking.BookingsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Bookings).To(HaveLen(1))
		Expect(resp.Bookings[0].Status).To(Equal("confirmed"))
	})

	It("should reject a non-numeric listing filter", func() {
		Expect(do(http.MethodGet, "/bookings?listing_id=x", "").Code).To(Equal(http.StatusBadRequest))
	})

	It("should replace and delete a booking", func() {
		Expect(do(http.MethodPost, "/bookings", createBody).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodPut, "/bookings/1",
			`{"listing_id":1,"guest_name":"Grace","guest_email":"g@b.com","check_in":"2025-05-01","check_out":"2025-05-05","status":"confirmed"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		var replaced booking.Booking
		Expect(json.NewDecoder(w.Body).Decode(&replaced)).To(Succeed())
		Expect(replaced.GuestName).To(Equal("Grace"))
		Expect(replaced.TotalPrice.String()).To(Equal("400"))

		Expect(do(http.MethodDelete, "/bookings/1", "").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/bookings/1", "").Code).To(Equal(http.StatusNotFound))
	})
})
