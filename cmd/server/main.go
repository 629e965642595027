package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"

	grpcapi "bikerental-backend/internal/api/grpc"
	httpapi "bikerental-backend/internal/api/http"
	"bikerental-backend/internal/config"
	"bikerental-backend/internal/logger"
	"bikerental-backend/internal/metrics"
	"bikerental-backend/internal/payment"
	"bikerental-backend/internal/repository/postgres"
	"bikerental-backend/internal/security"
	"bikerental-backend/internal/service"
	"bikerental-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Bike Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http", cfg.GetServerAddress(), "grpc", cfg.GetGRPCAddress(), "base_url", cfg.Server.BaseURL)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	policy, err := cfg.PricingPolicy()
	if err != nil {
		log.Fatalf("Invalid pricing policy: %v", err)
	}
	logger.Info("Pricing policy", "deposit", policy.Deposit.DepositAmount.String(), "platform_fee", policy.Deposit.PlatformFee.String(),
		"grace", policy.GracePeriod, "manual_review_after", policy.ManualReviewAfter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.PingContext(ctx); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		logger.Info("Database schema applied")
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	authenticator, err := newAuthenticator(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize authenticator: %v", err)
	}

	gateway, err := newGateway(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize payment gateway: %v", err)
	}

	reportStore, err := storage.NewLocalStorage(cfg.Report.OutputDir)
	if err != nil {
		log.Fatalf("Failed to initialize report storage: %v", err)
	}

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName, cfg.SendGrid.AdminEmail)
	bookingSvc := service.NewBookingService(
		store.BikeRepository,
		store.BookingRepository,
		store.LedgerRepository,
		store.NotificationRepository,
		gateway,
		emailSvc,
		policy,
	)
	bikeSvc := service.NewBikeService(store.BikeRepository)
	noteSvc := service.NewNotificationService(store.NotificationRepository)
	reportSvc := service.NewReportService(store.BookingRepository, reportStore)

	metrics.Register()

	// HTTP API
	handler := httpapi.NewHandler(bookingSvc, bikeSvc, noteSvc, reportSvc, store)
	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.NewRouter(handler, authenticator, metrics.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// gRPC health and reflection
	grpcServer, healthServer := grpcapi.NewServer(authenticator)
	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	go grpcapi.WatchHealth(ctx, healthServer, store, 15*time.Second)
	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Server stopped. Goodbye!")
}

func newAuthenticator(ctx context.Context, cfg *config.Config) (security.Authenticator, error) {
	switch cfg.Auth.Provider {
	case "firebase":
		logger.Info("Using Firebase authentication", "project", cfg.Auth.Firebase.ProjectID)
		return security.NewFirebaseAuthenticator(ctx, cfg.Auth.Firebase.ProjectID, cfg.Auth.Firebase.CredentialsFile)
	default:
		logger.Info("Using JWT authentication")
		ttl := time.Duration(cfg.Auth.JWT.AccessTokenExpiry) * time.Minute
		return security.NewJWTAuthenticator(security.NewTokenManager(cfg.Auth.JWT.Secret, ttl)), nil
	}
}

func newGateway(cfg *config.Config) (payment.Gateway, error) {
	switch cfg.Payment.Provider {
	case "mercadopago":
		logger.Info("Using MercadoPago payments")
		return payment.NewMercadoPagoGateway(cfg.Payment.MercadoPagoAccessToken)
	default:
		logger.Info("Using simulated payments", "base_url", cfg.Server.BaseURL)
		return payment.NewSimulatedGateway(cfg.Server.BaseURL), nil
	}
}
