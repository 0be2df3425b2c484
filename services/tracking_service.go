// services/tracking_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AI-Template-SDK/trakkr/internal/config"
	"github.com/AI-Template-SDK/trakkr/internal/logging"
	"github.com/AI-Template-SDK/trakkr/internal/metrics"
	"github.com/AI-Template-SDK/trakkr/internal/models"
	"github.com/AI-Template-SDK/trakkr/internal/providers"
)

// ReportHistoryLimit is how many reports GetBrandReports returns
const ReportHistoryLimit = 10

type trackingService struct {
	trackers  []providers.Tracker
	brands    BrandRepository
	reports   ReportRepository
	analytics AnalyticsService
	index     ReportIndexService
	delay     time.Duration
	now       func() time.Time
}

// NewTrackingService wires the collector. index may be nil when search is not configured.
func NewTrackingService(cfg *config.Config, trackers []providers.Tracker, brands BrandRepository, reports ReportRepository, analytics AnalyticsService, index ReportIndexService) TrackingService {
	return &trackingService{
		trackers:  trackers,
		brands:    brands,
		reports:   reports,
		analytics: analytics,
		index:     index,
		delay:     cfg.CallDelay,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CollectResponses runs every prompt through every tracker, one call at a time.
//
// A failed call is replaced by that tracker's fallback answer; an answer that is
// valid JSON but not an object is skipped. After each successful call the
// collector waits for the configured delay. Cancelling ctx stops the run.
func (s *trackingService) CollectResponses(ctx context.Context, brand *models.Brand) (*CollectionResult, error) {
	log := logging.Component("tracking").With().Str("brand_id", brand.ID).Logger()
	identity := brand.Identity()

	result := &CollectionResult{PerModel: make([]models.ModelResponses, len(s.trackers))}
	for i, t := range s.trackers {
		result.PerModel[i] = models.ModelResponses{Model: t.Name(), Responses: []models.PromptResult{}}
	}

	log.Info().Int("prompts", len(brand.Prompts)).Int("trackers", len(s.trackers)).Msg("collecting responses")

	for pi, prompt := range brand.Prompts {
		for ti, t := range s.trackers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			log.Debug().Int("prompt_index", pi).Str("backend", t.Name()).Msg("calling tracker")

			resp, err := t.TrackPrompt(ctx, prompt, identity)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				log.Warn().Err(err).Str("backend", t.Name()).Str("kind", metrics.KindOf(err).String()).
					Str("prompt", prompt).Msg("tracker failed, using fallback")
				result.PerModel[ti].Responses = append(result.PerModel[ti].Responses, t.Fallback(prompt, identity))
				result.Fallbacks++
				continue
			}
			result.TotalCost += resp.Cost

			normalized, err := metrics.Normalize(resp.Raw)
			if err != nil {
				log.Warn().Err(err).Str("backend", t.Name()).Str("prompt", prompt).Msg("skipping malformed answer")
			} else {
				if normalized.Prompt == "" {
					normalized.Prompt = prompt
				}
				normalized.Model = t.Name()
				result.PerModel[ti].Responses = append(result.PerModel[ti].Responses, normalized)
			}

			if err := sleepCtx(ctx, s.delay); err != nil {
				return nil, err
			}
		}
	}

	log.Info().Int("fallbacks", result.Fallbacks).Float64("total_cost", result.TotalCost).Msg("collection finished")
	return result, nil
}

// GenerateReport runs a full tracking pass for a saved brand and stores the report
func (s *trackingService) GenerateReport(ctx context.Context, brandID string) (*models.TrackingReport, error) {
	if brandID == "" {
		return nil, fmt.Errorf("%w: brand id is required", ErrInvalidInput)
	}

	brand, err := s.brands.GetBrand(ctx, brandID)
	if err != nil {
		return nil, err
	}

	collected, err := s.CollectResponses(ctx, brand)
	if err != nil {
		return nil, fmt.Errorf("failed to collect responses: %w", err)
	}

	report, err := metrics.BuildReport(brand.ID, brand.Identity(), collected.PerModel, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	return s.persist(ctx, report)
}

// SaveReport stores a client-supplied report as a new, manually saved copy
func (s *trackingService) SaveReport(ctx context.Context, report *models.TrackingReport) (*models.TrackingReport, error) {
	if report == nil || report.BrandID == "" {
		return nil, fmt.Errorf("%w: invalid report data", ErrInvalidInput)
	}

	saved := *report
	saved.ID = ""
	savedAt := s.now()
	saved.SavedAt = &savedAt

	if _, err := s.reports.SaveReport(ctx, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *trackingService) GetBrandReports(ctx context.Context, brandID string) ([]*models.TrackingReport, error) {
	if brandID == "" {
		return nil, fmt.Errorf("%w: brand id is required", ErrInvalidInput)
	}
	return s.reports.ListReportsByBrand(ctx, brandID, ReportHistoryLimit)
}

// RecomputeReport rebuilds a stored report from its raw responses with the
// current metric code, saving the result as a new report.
func (s *trackingService) RecomputeReport(ctx context.Context, reportID string) (*models.TrackingReport, error) {
	old, err := s.reports.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	identity := models.BrandIdentity{
		Name:        old.BrandInfo.BrandName,
		Variants:    old.BrandInfo.NameVariants,
		Description: old.BrandInfo.Description,
	}

	report, err := metrics.BuildReport(old.BrandID, identity, GroupByModel(old.RawResponses), s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild report %s: %w", reportID, err)
	}
	return s.persist(ctx, report)
}

func (s *trackingService) persist(ctx context.Context, report *models.TrackingReport) (*models.TrackingReport, error) {
	log := logging.Component("tracking").With().Str("brand_id", report.BrandID).Logger()

	if s.analytics != nil {
		report.Insights = s.analytics.GenerateInsights(report)
	}

	id, err := s.reports.SaveReport(ctx, report)
	if err != nil {
		if errors.Is(err, ErrDuplicateReport) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	report.ID = id

	if s.index != nil {
		if err := s.index.IndexReport(ctx, report); err != nil {
			log.Warn().Err(err).Str("report_id", id).Msg("failed to index report")
		}
	}

	log.Info().Str("report_id", id).Int("visibility", report.GeneralizedMetrics.VisibilityScore).
		Bool("used_mock_data", report.UsedMockData).Msg("report saved")
	return report, nil
}

// GroupByModel splits a flat response list back into per-model lists,
// ordered by each model's first appearance.
func GroupByModel(responses []models.PromptResult) []models.ModelResponses {
	var out []models.ModelResponses
	index := make(map[string]int)
	for _, r := range responses {
		i, ok := index[r.Model]
		if !ok {
			i = len(out)
			index[r.Model] = i
			out = append(out, models.ModelResponses{Model: r.Model})
		}
		out[i].Responses = append(out[i].Responses, r)
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
