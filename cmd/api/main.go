// Entry point for REST API
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance.service/internal/api"
	"attendance.service/internal/auth"
	"attendance.service/internal/config"
	"attendance.service/internal/core"
	"attendance.service/internal/ports/messaging"
	"attendance.service/internal/ports/repository"
	"attendance.service/pkg/aws"
	"attendance.service/pkg/database"
	"attendance.service/pkg/logger"
	"attendance.service/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gorilla/handlers"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	// Configure structured logging
	logger.Setup(cfg.IsLocalDev)

	// Configure OpenTelemetry Tracing
	shutdownTracer, err := telemetry.InitTracer("attendance-api", cfg.OTLPEndpoint, cfg.IsLocalDev)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	policy, err := core.NewPolicy(cfg.Timezone, cfg.LateThreshold)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid attendance policy")
	}

	if cfg.AutoMigrate {
		if err := migrateUp(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	// DB connection
	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer pool.Close()
	log.Info().Msg("Successfully connected to the database.")

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	// Initialize dependencies
	users := repository.NewUserRepository(pool)
	records := repository.NewAttendanceRepository(pool)
	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	ledger := core.NewLedger(records, users, publisher, policy, nil)
	accounts := core.NewAccountService(users, tokens, nil)

	// Setup router and server
	router := api.NewRouter(api.Dependencies{
		Ledger:   ledger,
		Accounts: accounts,
		Tokens:   tokens,
		Users:    users,
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins()),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "X-Request-Id"}),
		handlers.ExposedHeaders([]string{"Content-Disposition"}),
	)

	var handler http.Handler = http.TimeoutHandler(router, cfg.RequestTimeout, `{"message":"request timed out"}`)
	handler = logger.Middleware(handler)
	handler = cors(handler)
	// Wrap the router with OpenTelemetry middleware to create spans for each request
	handler = otelhttp.NewHandler(handler, "api")

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.ServerPort).Str("timezone", cfg.Timezone).Msg("API Service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

// newPublisher publishes checkout events to SQS when a queue is configured.
func newPublisher(ctx context.Context, cfg config.Config) (messaging.EventPublisher, error) {
	if !cfg.MessagingEnabled() {
		log.Warn().Msg("No SQS queue configured; checkout events are not published")
		return messaging.NopPublisher{}, nil
	}

	awsCfg, err := aws.NewAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return messaging.NewSQSProducer(sqs.NewFromConfig(awsCfg), cfg.SyncSQSQueueURL, cfg.EmailSQSQueueURL), nil
}

func migrateUp(cfg config.Config) error {
	db, err := database.NewInstrumentedConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return database.Migrate(db, "up")
}
