// Command recompute_report rebuilds a saved report's metrics from its stored
// raw responses, without calling any model.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/AI-Template-SDK/trakkr/internal/config"
	"github.com/AI-Template-SDK/trakkr/internal/metrics"
	"github.com/AI-Template-SDK/trakkr/internal/models"
	"github.com/AI-Template-SDK/trakkr/services"
)

// Standalone tool: duplicates DB bootstrapping from main.go
func createDatabaseClient(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	connStr := cfg.DatabaseURL
	if connStr == "" {
		connStr = cfg.Database.DSN()
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func main() {
	var (
		reportID = flag.String("report-id", "", "id of the report to recompute (required)")
		dryRun   = flag.Bool("dry-run", true, "if true, print the recomputed metrics without saving a new report")
		timeout  = flag.Duration("timeout", 2*time.Minute, "overall timeout for the script")
	)
	flag.Parse()

	if *reportID == "" {
		log.Fatalf("--report-id is required")
	}

	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load("dev.env")
	}
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := createDatabaseClient(ctx, cfg)
	if err != nil {
		log.Fatalf("DB connect failed: %v", err)
	}
	defer db.Close()

	reports := services.NewReportRepository(db)
	old, err := reports.GetReport(ctx, *reportID)
	if err != nil {
		log.Fatalf("Failed to load report %s: %v", *reportID, err)
	}

	if *dryRun {
		identity := models.BrandIdentity{
			Name:        old.BrandInfo.BrandName,
			Variants:    old.BrandInfo.NameVariants,
			Description: old.BrandInfo.Description,
		}
		rebuilt, err := metrics.BuildReport(old.BrandID, identity, services.GroupByModel(old.RawResponses), time.Now())
		if err != nil {
			log.Fatalf("Failed to rebuild report: %v", err)
		}
		log.Printf("[recompute_report] DRY RUN MODE: nothing will be saved")
		printComparison(old, rebuilt)
		return
	}

	tracking := services.NewTrackingService(cfg, nil, services.NewBrandRepository(db), reports, services.NewAnalyticsService(), nil)
	saved, err := tracking.RecomputeReport(ctx, *reportID)
	if err != nil {
		log.Fatalf("Failed to recompute report: %v", err)
	}
	printComparison(old, saved)
	log.Printf("[recompute_report] saved new report %s", saved.ID)
}

func printComparison(old, rebuilt *models.TrackingReport) {
	fmt.Printf("Brand:       %s (%s)\n", old.BrandInfo.BrandName, old.BrandID)
	fmt.Printf("Responses:   %d\n", len(old.RawResponses))
	fmt.Printf("Visibility:  %d -> %d\n", old.GeneralizedMetrics.VisibilityScore, rebuilt.GeneralizedMetrics.VisibilityScore)
	fmt.Printf("Presence:    %d -> %d\n", old.GeneralizedMetrics.PresenceScore, rebuilt.GeneralizedMetrics.PresenceScore)
	fmt.Printf("Mentions:    %d -> %d\n", old.GeneralizedMetrics.TotalMentions, rebuilt.GeneralizedMetrics.TotalMentions)
	fmt.Printf("Competitors: %d -> %d\n", len(old.CompetitorAnalysis), len(rebuilt.CompetitorAnalysis))
	for _, mp := range rebuilt.AIModelPerformance {
		fmt.Printf("  %-16s visibility=%d presence=%d\n", mp.Model, mp.VisibilityScore, mp.PresenceScore)
	}
}
