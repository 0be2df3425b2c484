// Command test_trackers sends one prompt through every configured tracker and
// prints what each model returned.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/AI-Template-SDK/trakkr/internal/config"
	"github.com/AI-Template-SDK/trakkr/internal/metrics"
	"github.com/AI-Template-SDK/trakkr/internal/models"
	"github.com/AI-Template-SDK/trakkr/internal/providers"
	"github.com/AI-Template-SDK/trakkr/services"
)

func main() {
	var (
		prompt   = flag.String("prompt", "What are the best project management tools for small teams?", "prompt to send to every tracker")
		brand    = flag.String("brand", "Asana", "target brand name")
		variants = flag.String("variants", "", "comma-separated name variants")
		only     = flag.String("models", "", "comma-separated tracker names, overrides TRACKING_MODELS")
		raw      = flag.Bool("raw", false, "print the raw model output")
	)
	flag.Parse()

	fmt.Println("🧪 Tracker Test Script")
	fmt.Println(strings.Repeat("=", 50))

	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️  No .env file found, using environment variables")
	} else {
		fmt.Println("✅ Loaded .env file")
	}

	cfg := config.Load()
	if *only != "" {
		cfg.TrackingModels = strings.Split(*only, ",")
	}

	trackers, err := providers.NewTrackers(cfg, services.NewCostService())
	if err != nil {
		fmt.Printf("❌ Failed to create trackers: %v\n", err)
		os.Exit(1)
	}

	identity := models.BrandIdentity{Name: *brand}
	for _, v := range strings.Split(*variants, ",") {
		if v = strings.TrimSpace(v); v != "" {
			identity.Variants = append(identity.Variants, v)
		}
	}
	if len(identity.Variants) == 0 {
		identity.Variants = []string{*brand}
	}

	fmt.Printf("\n📋 Prompt: %s\n", *prompt)
	fmt.Printf("   Brand: %s %v\n", identity.Name, identity.Variants)

	ctx := context.Background()
	for _, t := range trackers {
		testTracker(ctx, t, *prompt, identity, *raw)
	}
}

func testTracker(ctx context.Context, t providers.Tracker, prompt string, identity models.BrandIdentity, showRaw bool) {
	fmt.Printf("\n🎯 %s (%s)\n", t.Name(), t.Model())
	fmt.Println(strings.Repeat("-", 60))

	start := time.Now()
	resp, err := t.TrackPrompt(ctx, prompt, identity)
	if err != nil {
		fmt.Printf("❌ Failed after %v: %v\n", time.Since(start), err)
		return
	}
	fmt.Printf("✅ Answered in %v (tokens in=%d out=%d, cost=$%.6f)\n",
		time.Since(start), resp.InputTokens, resp.OutputTokens, resp.Cost)

	if showRaw {
		fmt.Println(resp.Response)
	}

	result, err := metrics.Normalize(resp.Raw)
	if err != nil {
		fmt.Printf("⚠️  Answer could not be normalized: %v\n", err)
		return
	}

	gm, err := metrics.Aggregate([]models.PromptResult{result}, identity)
	if err != nil {
		fmt.Printf("⚠️  Could not score answer: %v\n", err)
		return
	}
	fmt.Printf("   Brands ranked: %d, target found: %t, visibility: %d\n",
		len(result.RankedBrands), gm.ResponsesFoundIn > 0, gm.VisibilityScore)

	out, _ := json.MarshalIndent(result.RankedBrands, "   ", "  ")
	fmt.Printf("   %s\n", out)
}
