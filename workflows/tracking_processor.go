package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/AI-Template-SDK/trakkr/internal/logging"
	"github.com/AI-Template-SDK/trakkr/internal/models"
	"github.com/AI-Template-SDK/trakkr/services"
)

// TrackingGenerateEvent triggers a full tracking run for one brand
const TrackingGenerateEvent = "tracking.generate"

type TrackingGenerateEventData struct {
	BrandID     string `json:"brand_id"`
	TriggeredBy string `json:"triggered_by"`
}

// ReportSummary is what the generate step records in Inngest; the full
// report lives in the database.
type ReportSummary struct {
	ReportID        string `json:"report_id"`
	BrandID         string `json:"brand_id"`
	BrandName       string `json:"brand_name"`
	VisibilityScore int    `json:"visibility_score"`
	PresenceScore   int    `json:"presence_score"`
	TotalPrompts    int    `json:"total_prompts"`
	Competitors     int    `json:"competitors"`
	UsedMockData    bool   `json:"used_mock_data"`
}

func summarize(report *models.TrackingReport) ReportSummary {
	return ReportSummary{
		ReportID:        report.ID,
		BrandID:         report.BrandID,
		BrandName:       report.BrandInfo.BrandName,
		VisibilityScore: report.GeneralizedMetrics.VisibilityScore,
		PresenceScore:   report.GeneralizedMetrics.PresenceScore,
		TotalPrompts:    report.GeneralizedMetrics.TotalPrompts,
		Competitors:     len(report.CompetitorAnalysis),
		UsedMockData:    report.UsedMockData,
	}
}

type TrackingProcessor struct {
	trackingService services.TrackingService
	alerts          *SlackNotifier
	client          inngestgo.Client
}

func NewTrackingProcessor(trackingService services.TrackingService, alerts *SlackNotifier) *TrackingProcessor {
	return &TrackingProcessor{
		trackingService: trackingService,
		alerts:          alerts,
	}
}

func (p *TrackingProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// EnqueueReport sends a tracking.generate event and returns its id
func (p *TrackingProcessor) EnqueueReport(ctx context.Context, brandID string) (string, error) {
	return sendTrackingEvent(ctx, p.client, brandID, "api")
}

func sendTrackingEvent(ctx context.Context, client inngestgo.Client, brandID, triggeredBy string) (string, error) {
	if client == nil {
		return "", errors.New("inngest client is not set")
	}
	return client.Send(ctx, inngestgo.Event{
		Name: TrackingGenerateEvent,
		Data: map[string]interface{}{
			"brand_id":     brandID,
			"triggered_by": triggeredBy,
		},
	})
}

func (p *TrackingProcessor) GenerateReport() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "generate-tracking-report",
			Name:    "Generate Tracking Report - Brand Visibility Pipeline",
			Retries: inngestgo.IntPtr(2),
		},
		inngestgo.EventTrigger(TrackingGenerateEvent, nil),
		func(ctx context.Context, input inngestgo.Input[TrackingGenerateEventData]) (any, error) {
			brandID := input.Event.Data.BrandID
			log := logging.Component("workflows").With().Str("brand_id", brandID).
				Str("triggered_by", input.Event.Data.TriggeredBy).Logger()
			log.Info().Msg("starting tracking pipeline")

			if brandID == "" {
				return nil, errors.New("event is missing brand_id")
			}

			summary, err := step.Run(ctx, "generate-report", func(ctx context.Context) (ReportSummary, error) {
				report, err := p.trackingService.GenerateReport(ctx, brandID)
				if err != nil {
					return ReportSummary{}, err
				}
				return summarize(report), nil
			})
			if err != nil {
				if alertErr := p.alerts.ReportPipelineFailure(ctx, "generate-tracking-report", brandID, "", "generate-report", err); alertErr != nil && !errors.Is(alertErr, ErrSlackNotConfigured) {
					log.Warn().Err(alertErr).Msg("failed to send slack alert")
				}
				return nil, fmt.Errorf("step 'generate-report' failed: %w", err)
			}

			log.Info().Str("report_id", summary.ReportID).Int("visibility", summary.VisibilityScore).
				Bool("used_mock_data", summary.UsedMockData).Msg("tracking pipeline completed")
			return summary, nil
		},
	)

	if err != nil {
		log := logging.Component("workflows")
		log.Error().Err(err).Msg("failed to create generate-tracking-report function")
	}

	return fn
}
