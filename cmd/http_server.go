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

	"github.com/coloradoleasecheck/leasecheck/internal"
	adminpkg "github.com/coloradoleasecheck/leasecheck/internal/admin"
	adminpostgres "github.com/coloradoleasecheck/leasecheck/internal/admin/postgres"
	"github.com/coloradoleasecheck/leasecheck/internal/auth"
	authpostgres "github.com/coloradoleasecheck/leasecheck/internal/auth/postgres"
	"github.com/coloradoleasecheck/leasecheck/internal/core/events"
	documentpkg "github.com/coloradoleasecheck/leasecheck/internal/document"
	documentpostgres "github.com/coloradoleasecheck/leasecheck/internal/document/postgres"
	invoicepkg "github.com/coloradoleasecheck/leasecheck/internal/invoice"
	invoicepostgres "github.com/coloradoleasecheck/leasecheck/internal/invoice/postgres"
	"github.com/coloradoleasecheck/leasecheck/internal/onboarding"
	paymentpkg "github.com/coloradoleasecheck/leasecheck/internal/payment"
	paymentpostgres "github.com/coloradoleasecheck/leasecheck/internal/payment/postgres"
	"github.com/coloradoleasecheck/leasecheck/internal/plans"
	"github.com/coloradoleasecheck/leasecheck/internal/stripegateway"
	"github.com/coloradoleasecheck/leasecheck/internal/stripewebhook"
	webhookpostgres "github.com/coloradoleasecheck/leasecheck/internal/stripewebhook/postgres"
	termspkg "github.com/coloradoleasecheck/leasecheck/internal/terms"
	termspostgres "github.com/coloradoleasecheck/leasecheck/internal/terms/postgres"
	ticketpkg "github.com/coloradoleasecheck/leasecheck/internal/ticket"
	ticketpostgres "github.com/coloradoleasecheck/leasecheck/internal/ticket/postgres"
	"github.com/coloradoleasecheck/leasecheck/internal/transport/rest"
	"github.com/coloradoleasecheck/leasecheck/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
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
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	log := deps.Logger

	catalog := plans.NewCatalog()
	eventBus := events.NewEventBus(log)

	// Payments
	gateway := stripegateway.NewClient(cfg.Stripe.SecretKey, log)
	paymentRepo := paymentpostgres.NewPaymentRepository(deps.Gorm)
	paymentService := paymentpkg.NewPaymentService(gateway, catalog, cfg.Stripe.PublishableKey, log, paymentRepo)
	paymentHandler := paymentpkg.NewHandler(paymentService)

	// Invoices
	invoiceRepo := invoicepostgres.NewInvoiceRepository(deps.Gorm)
	renderer := invoicepkg.NewPDFRenderer(cfg.Storage.InvoiceDir)
	invoiceService := invoicepkg.NewInvoiceService(invoiceRepo, renderer, log)
	invoiceHandler := invoicepkg.NewHandler(invoiceService, cfg.Storage.InvoiceDir)

	// Webhook
	webhookRepo := webhookpostgres.NewRepository(deps.Gorm)
	webhookHandler := stripewebhook.NewHandler(paymentService, invoiceService, webhookRepo, eventBus, cfg.Stripe.WebhookSecret)

	// Documents
	documentRepo := documentpostgres.NewRepository(deps.Gorm)
	documentStorage := documentpkg.NewStorage(cfg.Storage.UploadDir)
	documentService := documentpkg.NewService(documentRepo, documentStorage, eventBus, cfg.Storage.MaxUploadBytes, log)
	documentHandler := documentpkg.NewHandler(documentService, cfg.Storage.MaxUploadBytes)
	documentProcessor := documentpkg.NewProcessor(documentRepo, documentStorage, log)
	documentProcessor.Register(eventBus)

	// Tickets
	ticketRepo := ticketpostgres.NewRepository(deps.Gorm)
	ticketService := ticketpkg.NewService(ticketRepo, documentService, log)
	ticketHandler := ticketpkg.NewHandler(ticketService)

	// Terms
	termsRepo := termspostgres.NewRepository(deps.Gorm)
	termsService := termspkg.NewService(termsRepo, log)
	termsHandler := termspkg.NewHandler(termsService)

	// Admin + auth
	adminRepo := authpostgres.NewRepository(deps.Gorm)
	tokenGen := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.JWTSecret)
	authService := auth.NewService(adminRepo, tokenGen)
	authHandler := auth.NewHandler(authService)

	statsRepo := adminpostgres.NewStatsRepository(deps.Gorm)
	adminService := adminpkg.NewService(statsRepo, paymentService, invoiceService, log)
	adminHandler := adminpkg.NewHandler(adminService, ticketService)

	onboardingHandler := onboarding.NewHandler(catalog, cfg.Stripe.PublishableKey, cfg.Storage.MaxUploadBytes)
	plansHandler := plans.NewHandler(catalog)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, rest.Handlers{
		Onboarding: onboardingHandler,
		Plans:      plansHandler,
		Payment:    paymentHandler,
		Webhook:    webhookHandler,
		Invoice:    invoiceHandler,
		Document:   documentHandler,
		Ticket:     ticketHandler,
		Terms:      termsHandler,
		Auth:       authHandler,
		Admin:      adminHandler,
	}, authService, log)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		Gorm:   gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
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

// initGorm wraps the existing connection. TranslateError is required so
// unique-constraint violations surface as gorm.ErrDuplicatedKey.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
}
