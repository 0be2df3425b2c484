// workflows/scheduled_processor.go
package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/AI-Template-SDK/trakkr/internal/logging"
	"github.com/AI-Template-SDK/trakkr/services"
)

// WeeklyTrackingCron runs every Monday at 3 AM UTC
const WeeklyTrackingCron = "0 3 * * 1"

type ScheduledProcessor struct {
	brands services.BrandRepository
	client inngestgo.Client
	now    func() time.Time
}

func NewScheduledProcessor(brands services.BrandRepository) *ScheduledProcessor {
	return &ScheduledProcessor{
		brands: brands,
		now:    time.Now,
	}
}

func (p *ScheduledProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

func (p *ScheduledProcessor) WeeklyTracking() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "weekly-brand-tracking",
			Name: "Weekly Brand Tracking - Refresh Every Brand",
		},
		inngestgo.CronTrigger(WeeklyTrackingCron),
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {
			log := logging.Component("workflows")
			now := p.now()

			// Step 1: Collect every saved brand
			brandIDs, err := step.Run(ctx, "list-brands", func(ctx context.Context) ([]string, error) {
				return p.brandIDs(ctx)
			})
			if err != nil {
				return nil, fmt.Errorf("failed to list brands: %w", err)
			}

			if len(brandIDs) == 0 {
				return map[string]interface{}{
					"execution_date":     now.Format("2006-01-02"),
					"total_brands_found": 0,
					"message":            "No brands to track",
				}, nil
			}

			// Step 2: One step per brand so a retry only resends what failed
			triggered := 0
			for _, brandID := range brandIDs {
				stepName := fmt.Sprintf("trigger-tracking-%s", brandID)
				_, err := step.Run(ctx, stepName, func(ctx context.Context) (string, error) {
					return sendTrackingEvent(ctx, p.client, brandID, "automatic_scheduler")
				})
				if err != nil {
					log.Warn().Err(err).Str("brand_id", brandID).Msg("failed to send tracking event")
					continue
				}
				triggered++
			}

			return map[string]interface{}{
				"execution_date":     now.Format("2006-01-02"),
				"total_brands_found": len(brandIDs),
				"brands_triggered":   triggered,
				"message":            fmt.Sprintf("Triggered %d of %d tracking pipelines", triggered, len(brandIDs)),
			}, nil
		},
	)

	if err != nil {
		log := logging.Component("workflows")
		log.Error().Err(err).Msg("failed to create weekly-brand-tracking function")
	}

	return fn
}

func (p *ScheduledProcessor) brandIDs(ctx context.Context) ([]string, error) {
	brands, err := p.brands.ListAllBrands(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(brands))
	for _, b := range brands {
		if b == nil || b.ID == "" {
			continue
		}
		ids = append(ids, b.ID)
	}
	return ids, nil
}
