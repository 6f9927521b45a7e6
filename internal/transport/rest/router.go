package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/travel-booking/internal/booking"
	"github.com/frahmantamala/travel-booking/internal/listing"
	"github.com/frahmantamala/travel-booking/internal/payment"
	"github.com/frahmantamala/travel-booking/internal/transport/middleware"
	"github.com/frahmantamala/travel-booking/internal/transport/swagger"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Handlers groups the resource handlers mounted under the API prefixes.
type Handlers struct {
	Health  *HealthHandler
	Listing *listing.Handler
	Booking *booking.Handler
	Payment *payment.Handler
}

type Options struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	MetricsEnabled bool
	MetricsPath    string
	OpenAPIFile    string

	// IdempotencyStore enables Idempotency-Key replay on payment initiation
	// when set.
	IdempotencyStore middleware.IdempotencyStore
	IdempotencyTTL   time.Duration
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	router.Use(middleware.ContextLogger(opts.Logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(opts.Logger))
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	router.Use(middleware.Metrics)
	router.Use(newCORS(opts.AllowedOrigins).Handler)

	if opts.MetricsEnabled {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, promhttp.Handler())
	}

	openAPIFile := opts.OpenAPIFile
	if openAPIFile == "" {
		openAPIFile = "./api/openapi.yml"
	}
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, openAPIFile)
	})
	router.Handle("/swagger/*", swagger.Handler("/openapi.yml"))

	// /api keeps the original unversioned paths working next to /api/v1.
	router.Route("/api/v1", apiRoutes(h, opts))
	router.Route("/api", apiRoutes(h, opts))
}

func apiRoutes(h Handlers, opts Options) func(r chi.Router) {
	return func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		if h.Listing != nil {
			r.Route("/listings", func(lr chi.Router) {
				lr.Get("/", h.Listing.ListListings)
				lr.Post("/", h.Listing.CreateListing)
				lr.Get("/{id}", h.Listing.GetListing)
				lr.Put("/{id}", h.Listing.ReplaceListing)
				lr.Patch("/{id}", h.Listing.PatchListing)
				lr.Delete("/{id}", h.Listing.DeleteListing)
			})
		}

		if h.Booking != nil {
			r.Route("/bookings", func(br chi.Router) {
				br.Get("/", h.Booking.ListBookings)
				br.Post("/", h.Booking.CreateBooking)
				br.Get("/{id}", h.Booking.GetBooking)
				br.Put("/{id}", h.Booking.ReplaceBooking)
				br.Patch("/{id}", h.Booking.PatchBooking)
				br.Delete("/{id}", h.Booking.DeleteBooking)
			})
		}

		if h.Payment != nil {
			r.Route("/payments", func(pr chi.Router) {
				pr.Group(func(ir chi.Router) {
					if opts.IdempotencyStore != nil {
						ir.Use(middleware.Idempotency(opts.IdempotencyStore, opts.IdempotencyTTL, opts.Logger))
					}
					ir.Post("/initiate", h.Payment.InitiatePayment)
				})
				pr.Get("/", h.Payment.ListPayments)
				pr.Get("/{id}", h.Payment.GetPayment)
				pr.Patch("/{id}", h.Payment.UpdatePayment)
				pr.Delete("/{id}", h.Payment.DeletePayment)
			})
		}
	}
}

func newCORS(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "Authorization", middleware.RequestIDHeader, middleware.IdempotencyKeyHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, middleware.IdempotentReplayHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
