package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"travel/internal/app"
	"travel/internal/config"
	"travel/internal/gateway"
	"travel/internal/handler"
	internalRedis "travel/internal/redis"
	"travel/internal/repository/postgres"
	"travel/internal/service"
	"travel/internal/worker"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	if cfg.Chapa.SecretKey == "" {
		log.Fatal("CHAPA_SECRET_KEY is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, notificationWorker := wireServer(db, redisClient, nrApp, cfg)

	// Start the notification worker.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go notificationWorker.Run(workerCtx)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	workerCancel()
	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the
// notification worker.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *worker.NotificationWorker) {
	// Initialize repositories.
	listingRepo := postgres.NewListingRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	// Initialize the gateway client and notification queue.
	chapaClient := gateway.NewChapaClient(cfg.Chapa)
	notificationQueue := internalRedis.NewNotificationQueue(redisClient, cfg.Notification.QueueKey)

	// Initialize services.
	paymentService := service.NewPaymentService(paymentRepo, chapaClient, notificationQueue, cfg.Chapa.Currency, cfg.Chapa.CallbackURL)
	notificationService := service.NewNotificationService(service.NewLogMailer(), cfg.Notification.FromAddress)

	// Initialize the notification worker.
	notificationWorker := worker.NewNotificationWorker(notificationQueue, paymentRepo, notificationService, cfg.Notification.MaxAttempts)

	// Initialize handlers.
	listingHandler := handler.NewListingHandler(listingRepo)
	bookingHandler := handler.NewBookingHandler(bookingRepo, listingRepo)
	reviewHandler := handler.NewReviewHandler(reviewRepo, listingRepo)
	paymentHandler := handler.NewPaymentHandler(paymentService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		ListingHandler: listingHandler,
		BookingHandler: bookingHandler,
		ReviewHandler:  reviewHandler,
		PaymentHandler: paymentHandler,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, notificationWorker
}
