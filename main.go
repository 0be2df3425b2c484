// main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/inngest/inngestgo"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/typesense/typesense-go/v2/typesense"

	"github.com/AI-Template-SDK/trakkr/internal/api"
	"github.com/AI-Template-SDK/trakkr/internal/config"
	"github.com/AI-Template-SDK/trakkr/internal/logging"
	"github.com/AI-Template-SDK/trakkr/internal/providers"
	"github.com/AI-Template-SDK/trakkr/services"
	"github.com/AI-Template-SDK/trakkr/workflows"
)

// createDatabaseClient connects with DATABASE_URL when set, otherwise the DB_* settings
func createDatabaseClient(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	connStr := cfg.DatabaseURL
	if connStr == "" {
		connStr = cfg.Database.DSN()
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func main() {
	envFile := ".env"
	if err := godotenv.Load(); err != nil {
		envFile = "dev.env"
		if err := godotenv.Load("dev.env"); err != nil {
			envFile = ""
		}
	}

	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logging.Component("main")

	if envFile != "" {
		log.Info().Str("file", envFile).Msg("loaded environment file")
	} else {
		log.Info().Msg("no .env or dev.env file loaded")
	}
	log.Info().Str("environment", cfg.Environment).Str("port", cfg.Port).
		Strs("tracking_models", cfg.TrackingModels).Msg("configuration loaded")

	ctx := context.Background()
	db, err := createDatabaseClient(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := services.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare database schema")
	}
	log.Info().Msg("database ready")

	brandRepo := services.NewBrandRepository(db)
	reportRepo := services.NewReportRepository(db)

	if cfg.Environment == "development" || cfg.Environment == "" {
		os.Unsetenv("INNGEST_SIGNING_KEY")
		cfg.InngestSigningKey = ""
		log.Info().Msg("running in development mode, signing key verification disabled")
	}

	typesenseClient := typesense.NewClient(
		typesense.WithServer(cfg.Typesense.ServerURL()),
		typesense.WithAPIKey(cfg.Typesense.APIKey),
	)
	indexService := services.NewReportIndexService(typesenseClient)
	if err := indexService.EnsureCollection(ctx); err != nil {
		// Search is optional; reports still save without it
		log.Warn().Err(err).Str("host", cfg.Typesense.Host).Msg("typesense collection unavailable")
	} else {
		log.Info().Str("collection", services.PromptCollection).Msg("typesense collection ready")
	}

	costService := services.NewCostService()
	trackers, err := providers.NewTrackers(cfg, costService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure trackers")
	}

	var firecrawlService services.FirecrawlService
	if cfg.Firecrawl.APIKey != "" {
		firecrawlService = services.NewFirecrawlService(cfg)
	} else {
		log.Warn().Msg("FIRECRAWL_API_KEY not set, brand analysis will rely on provided text")
	}

	analysisService := services.NewBrandAnalysisService(cfg, firecrawlService, costService)
	brandService := services.NewBrandService(cfg, brandRepo)
	userService := services.NewUserService()
	analyticsService := services.NewAnalyticsService()
	trackingService := services.NewTrackingService(cfg, trackers, brandRepo, reportRepo, analyticsService, indexService)

	client, err := inngestgo.NewClient(
		inngestgo.ClientOpts{
			AppID:    "trakkr",
			EventKey: inngestgo.StrPtr(cfg.InngestEventKey),
			Env:      inngestgo.StrPtr(cfg.Environment),
		},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Inngest client")
	}

	alerts := workflows.NewSlackNotifier(cfg.SlackWebhookURL)

	trackingProcessor := workflows.NewTrackingProcessor(trackingService, alerts)
	trackingProcessor.SetClient(client)
	trackingProcessor.GenerateReport()

	scheduledProcessor := workflows.NewScheduledProcessor(brandRepo)
	scheduledProcessor.SetClient(client)
	scheduledProcessor.WeeklyTracking()

	log.Info().Msg("workflows registered")

	handler := &api.Handler{
		Analysis: analysisService,
		Brands:   brandService,
		Tracking: trackingService,
		Users:    userService,
		Queue:    trackingProcessor,
	}
	router := api.NewRouter(handler, api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.CORSOrigins,
		RateLimitRequests:  cfg.RateLimitPerMin,
		RateLimitWindow:    time.Minute,
	}, client.Serve())

	log.Info().Str("port", cfg.Port).Msg("starting trakkr service")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
