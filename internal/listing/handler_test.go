package listing_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	listingDatamodel "github.com/frahmantamala/travel-booking/internal/core/datamodel/listing"
	"github.com/frahmantamala/travel-booking/internal/listing"
	listingPostgres "github.com/frahmantamala/travel-booking/internal/listing/postgres"
	"github.com/frahmantamala/travel-booking/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Listing Handler Integration", func() {
	var (
		router chi.Router
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&listingDatamodel.Listing{})).To(Succeed())

		service := listing.NewService(listingPostgres.NewListingRepository(db), slogger)
		handler := listing.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Get("/listings", handler.ListListings)
		router.Post("/listings", handler.CreateListing)
		router.Get("/listings/{id}", handler.GetListing)
		router.Put("/listings/{id}", handler.ReplaceListing)
		router.Patch("/listings/{id}", handler.PatchListing)
		router.Delete("/listings/{id}", handler.DeleteListing)
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

	createBody := `{"title":"Lakeside cabin","description":"Quiet","location":"Bishoftu","price_per_night":"120.50"}`

	It("should create and fetch a listing", func() {
		w := do(http.MethodPost, "/listings", createBody)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created listing.Listing
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.ID).To(BeNumerically(">", 0))

		w = do(http.MethodGet, "/listings/1", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var fetched listing.Listing
		Expect(json.NewDecoder(w.Body).Decode(&fetched)).To(Succeed())
		Expect(fetched.Title).To(Equal("Lakeside cabin"))
		Expect(fetched.PricePerNight.String()).To(Equal("120.5"))
	})

	It("should accept a numeric price", func() {
		w := do(http.MethodPost, "/listings", `{"title":"Loft","location":"Addis Ababa","price_per_night":80}`)

		Expect(w.Code).To(Equal(http.StatusCreated))
	})

	It("should reject an invalid listing with the error envelope", func() {
		w := do(http.MethodPost, "/listings", `{"title":"","location":"Addis Ababa","price_per_night":"80"}`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		var body map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body["error"]).To(HaveKeyWithValue("type", "VALIDATION_ERROR"))
	})

	It("should reject a malformed body", func() {
		w := do(http.MethodPost, "/listings", `{"title":`)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should patch and replace a listing", func() {
		Expect(do(http.MethodPost, "/listings", createBody).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodPatch, "/listings/1", `{"location":"Hawassa"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		var patched listing.Listing
		Expect(json.NewDecoder(w.Body).Decode(&patched)).To(Succeed())
		Expect(patched.Location).To(Equal("Hawassa"))
		Expect(patched.Title).To(Equal("Lakeside cabin"))

		w = do(http.MethodPut, "/listings/1", `{"title":"Hill house","location":"Gondar","price_per_night":"60"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		var replaced listing.Listing
		Expect(json.NewDecoder(w.Body).Decode(&replaced)).To(Succeed())
		Expect(replaced.Title).To(Equal("Hill house"))
		Expect(replaced.Description).To(BeEmpty())
	})

	It("should list with pagination metadata", func() {
		Expect(do(http.MethodPost, "/listings", createBody).Code).To(Equal(http.StatusCreated))
		Expect(do(http.MethodPost, "/listings", createBody).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodGet, "/listings?limit=1&offset=1", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp listing.ListingsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Listings).To(HaveLen(1))
		Expect(resp.Listings[0].ID).To(Equal(int64(2)))
		Expect(resp.Limit).To(Equal(1))
		Expect(resp.Offset).To(Equal(1))
	})

	It("should delete a listing and then report it missing", func() {
		Expect(do(http.MethodPost, "/listings", createBody).Code).To(Equal(http.StatusCreated))

		Expect(do(http.MethodDelete, "/listings/1", "").Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodGet, "/listings/1", "").Code).To(Equal(http.StatusNotFound))
	})

	It("should reject a non-numeric id", func() {
		Expect(do(http.MethodGet, "/listings/abc", "").Code).To(Equal(http.StatusBadRequest))
	})
})
