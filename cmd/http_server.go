package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/travel-booking/internal"
	"github.com/frahmantamala/travel-booking/internal/booking"
	bookingPostgres "github.com/frahmantamala/travel-booking/internal/booking/postgres"
	"github.com/frahmantamala/travel-booking/internal/core/events"
	"github.com/frahmantamala/travel-booking/internal/idempotency"
	"github.com/frahmantamala/travel-booking/internal/listing"
	listingPostgres "github.com/frahmantamala/travel-booking/internal/listing/postgres"
	"github.com/frahmantamala/travel-booking/internal/payment"
	paymentPostgres "github.com/frahmantamala/travel-booking/internal/payment/postgres"
	"github.com/frahmantamala/travel-booking/internal/paymentgateway"
	"github.com/frahmantamala/travel-booking/internal/queue"
	"github.com/frahmantamala/travel-booking/internal/transport"
	"github.com/frahmantamala/travel-booking/internal/transport/rest"
	"github.com/frahmantamala/travel-booking/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Redis    *redis.Client
	EventBus *events.EventBus
	Kafka    *queue.Bridge
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.close(ctx)
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

// close releases resources in reverse order of creation. Queued events are
// flushed before the Kafka writer goes away.
func (d *Dependencies) close(ctx context.Context) {
	if err := d.EventBus.Drain(ctx); err != nil {
		d.Logger.Error("Event bus drain error", "error", err)
	}
	if d.Kafka != nil {
		if err := d.Kafka.Close(); err != nil {
			d.Logger.Error("Kafka writer close error", "error", err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	base := transport.NewBaseHandler(deps.Logger)

	listingRepo := listingPostgres.NewListingRepository(deps.Gorm)
	bookingRepo := bookingPostgres.NewBookingRepository(deps.Gorm)
	paymentRepo := paymentPostgres.NewPaymentRepository(deps.Gorm)

	gateway := paymentgateway.NewClient(paymentgateway.Config{
		BaseURL:     cfg.Payment.GatewayBaseURL,
		SecretKey:   cfg.Payment.SecretKey,
		CallbackURL: cfg.Payment.CallbackURL,
		ReturnURL:   cfg.Payment.ReturnURL,
		Currency:    cfg.Payment.Currency,
		Timeout:     cfg.Payment.Timeout,
	}, deps.Logger)

	listingService := listing.NewService(listingRepo, deps.Logger)
	bookingService := booking.NewService(bookingRepo, listingRepo, deps.Logger)
	paymentService := payment.NewService(paymentRepo, gateway, deps.Logger,
		payment.WithEventPublisher(deps.EventBus),
		payment.WithGatewayTimeout(cfg.Payment.Timeout),
	)

	health := rest.NewHealthHandler(deps.DB.DB)
	opts := rest.Options{
		Logger:         deps.Logger,
		AllowedOrigins: cfg.Server.Origins(),
		MetricsEnabled: cfg.Observability.Metrics.Enabled,
		MetricsPath:    cfg.Observability.Metrics.Path,
	}
	if deps.Redis != nil {
		health.WithCheck("redis", func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		})
		opts.IdempotencyStore = idempotency.NewRedisStore(deps.Redis)
		opts.IdempotencyTTL = cfg.Redis.IdempotencyTTL
	}

	rest.RegisterAllRoutes(deps.Router, rest.Handlers{
		Health:  health,
		Listing: listing.NewHandler(base, listingService),
		Booking: booking.NewHandler(base, bookingService),
		Payment: payment.NewHandler(base, paymentService),
	}, opts)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	deps := &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		Gorm:     gormDB,
		EventBus: events.NewEventBus(lg),
		Router:   chi.NewRouter(),
	}

	if config.Redis.Enabled {
		client, err := idempotency.Connect(context.Background(), config.Redis.Addr, config.Redis.Password, config.Redis.DB)
		if err != nil {
			// Idempotency is optional; serve without it rather than refuse to start.
			lg.Warn("redis unavailable, idempotency keys disabled", "error", err)
		} else {
			deps.Redis = client
		}
	}

	if config.Kafka.Enabled {
		bridge := queue.NewBridge(queue.NewWriter(config.Kafka.BrokerList(), config.Kafka.Topic), lg)
		bridge.Register(deps.EventBus)
		deps.Kafka = bridge
	}

	return deps, nil
}

// initDB opens the pgx-backed pool that both sqlx and gorm share.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
}
