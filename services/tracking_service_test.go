package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI-Template-SDK/trakkr/internal/models"
	"github.com/AI-Template-SDK/trakkr/internal/providers"
	"github.com/AI-Template-SDK/trakkr/internal/providers/common"
	"github.com/AI-Template-SDK/trakkr/internal/providers/testutil"
)

var trackingStart = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleBrand() *models.Brand {
	identity := testutil.SampleIdentity()
	return &models.Brand{
		ID:           "brand-1",
		UserEmail:    "owner@acme.com",
		BrandURL:     "https://acme.com",
		BrandName:    identity.Name,
		NameVariants: identity.Variants,
		Description:  identity.Description,
		Prompts:      testutil.SamplePrompts(),
	}
}

func failingTracker(name string) *testutil.MockTracker {
	return &testutil.MockTracker{
		NameValue: name,
		TrackFunc: func(ctx context.Context, prompt string, identity models.BrandIdentity) (*common.AIResponse, error) {
			return nil, errors.New("rate limited")
		},
		Template: common.FallbackTemplate{
			{Brand: "Mock Brand A", Rank: 1, Mentions: 8, Sentiment: models.SentimentPositive},
			{Brand: common.TargetBrand, Rank: 4, Mentions: 3, Sentiment: models.SentimentNeutral},
		},
	}
}

func newTestTrackingService(trackers []providers.Tracker, brands *fakeBrandRepo, reports *fakeReportRepo, index ReportIndexService) *trackingService {
	svc := NewTrackingService(testutil.SampleConfig(), trackers, brands, reports, NewAnalyticsService(), index).(*trackingService)
	svc.now = steppingClock(trackingStart)
	return svc
}

func TestCollectResponsesSubstitutesFallback(t *testing.T) {
	ok := &testutil.MockTracker{NameValue: "Mistral"}
	bad := failingTracker("OpenAI")
	svc := newTestTrackingService([]providers.Tracker{ok, bad}, newFakeBrandRepo(), &fakeReportRepo{}, nil)

	brand := sampleBrand()
	result, err := svc.CollectResponses(context.Background(), brand)
	require.NoError(t, err)

	require.Len(t, result.PerModel, 2)
	assert.Equal(t, "Mistral", result.PerModel[0].Model)
	assert.Equal(t, "OpenAI", result.PerModel[1].Model)
	assert.Equal(t, len(brand.Prompts), result.Fallbacks)
	assert.InDelta(t, 0.0015*float64(len(brand.Prompts)), result.TotalCost, 1e-9)

	for i, r := range result.PerModel[0].Responses {
		assert.Equal(t, brand.Prompts[i], r.Prompt)
		assert.Equal(t, "Mistral", r.Model)
		assert.False(t, r.Fallback)
	}
	for i, r := range result.PerModel[1].Responses {
		assert.Equal(t, brand.Prompts[i], r.Prompt)
		assert.Equal(t, "OpenAI", r.Model)
		assert.True(t, r.Fallback)
		require.NotNil(t, r.TargetBrandRank)
		assert.Equal(t, 4, *r.TargetBrandRank)
	}
	assert.Equal(t, len(brand.Prompts), bad.CallCount())
}

func TestCollectResponsesCallOrder(t *testing.T) {
	var order []string
	record := func(name string) *testutil.MockTracker {
		return &testutil.MockTracker{
			NameValue: name,
			TrackFunc: func(ctx context.Context, prompt string, identity models.BrandIdentity) (*common.AIResponse, error) {
				order = append(order, name+":"+prompt)
				return testutil.RawResponse(map[string]any{"prompt": prompt, "ranked_brands": []any{}}), nil
			},
		}
	}
	svc := newTestTrackingService([]providers.Tracker{record("a"), record("b")}, newFakeBrandRepo(), &fakeReportRepo{}, nil)

	brand := sampleBrand()
	brand.Prompts = []string{"p1", "p2"}
	_, err := svc.CollectResponses(context.Background(), brand)
	require.NoError(t, err)

	assert.Equal(t, []string{"a:p1", "b:p1", "a:p2", "b:p2"}, order)
}

func TestCollectResponsesSkipsNonObjectAnswers(t *testing.T) {
	weird := &testutil.MockTracker{
		NameValue: "Mistral",
		TrackFunc: func(ctx context.Context, prompt string, identity models.BrandIdentity) (*common.AIResponse, error) {
			return testutil.RawResponse([]any{"Acme", "Globex"}), nil
		},
	}
	svc := newTestTrackingService([]providers.Tracker{weird}, newFakeBrandRepo(), &fakeReportRepo{}, nil)

	result, err := svc.CollectResponses(context.Background(), sampleBrand())
	require.NoError(t, err)
	assert.Empty(t, result.PerModel[0].Responses)
	assert.Zero(t, result.Fallbacks)
}

func TestCollectResponsesFillsMissingPrompt(t *testing.T) {
	tracker := &testutil.MockTracker{
		NameValue: "Mistral",
		TrackFunc: func(ctx context.Context, prompt string, identity models.BrandIdentity) (*common.AIResponse, error) {
			return testutil.RawResponse(map[string]any{
				"ranked_brands": []any{map[string]any{"brand": "Acme", "rank": 1, "mentions": 2}},
			}), nil
		},
	}
	svc := newTestTrackingService([]providers.Tracker{tracker}, newFakeBrandRepo(), &fakeReportRepo{}, nil)

	brand := sampleBrand()
	result, err := svc.CollectResponses(context.Background(), brand)
	require.NoError(t, err)
	require.Len(t, result.PerModel[0].Responses, len(brand.Prompts))
	assert.Equal(t, brand.Prompts[0], result.PerModel[0].Responses[0].Prompt)
}

func TestCollectResponsesStopsOnCancel(t *testing.T) {
	tracker := &testutil.MockTracker{NameValue: "Mistral"}
	svc := newTestTrackingService([]providers.Tracker{tracker}, newFakeBrandRepo(), &fakeReportRepo{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CollectResponses(ctx, sampleBrand())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, tracker.CallCount())
}

func TestCollectResponsesDelayHonoursDeadline(t *testing.T) {
	tracker := &testutil.MockTracker{NameValue: "Mistral"}
	svc := newTestTrackingService([]providers.Tracker{tracker}, newFakeBrandRepo(), &fakeReportRepo{}, nil)
	svc.delay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.CollectResponses(ctx, sampleBrand())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, tracker.CallCount())
}

func TestGenerateReport(t *testing.T) {
	brands := newFakeBrandRepo(sampleBrand())
	reports := &fakeReportRepo{}
	index := &fakeIndex{}
	trackers := []providers.Tracker{
		&testutil.MockTracker{NameValue: "Mistral"},
		failingTracker("OpenAI"),
	}
	svc := newTestTrackingService(trackers, brands, reports, index)

	report, err := svc.GenerateReport(context.Background(), "brand-1")
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "brand-1", report.BrandID)
	assert.True(t, report.UsedMockData)
	assert.Len(t, report.RawResponses, 2*len(testutil.SamplePrompts()))
	require.Len(t, report.AIModelPerformance, 2)
	assert.Equal(t, "Mistral", report.AIModelPerformance[0].Model)
	assert.Equal(t, 100, report.AIModelPerformance[0].VisibilityScore)
	assert.NotEmpty(t, report.Insights)
	assert.Nil(t, report.SavedAt)

	assert.Len(t, reports.reports, 1)
	assert.Equal(t, []string{report.ID}, index.indexed)
}

func TestGenerateReportIndexFailureIsNotFatal(t *testing.T) {
	brands := newFakeBrandRepo(sampleBrand())
	index := &fakeIndex{err: errors.New("typesense down")}
	svc := newTestTrackingService([]providers.Tracker{&testutil.MockTracker{NameValue: "Mistral"}}, brands, &fakeReportRepo{}, index)

	_, err := svc.GenerateReport(context.Background(), "brand-1")
	assert.NoError(t, err)
}

func TestGenerateReportErrors(t *testing.T) {
	svc := newTestTrackingService(nil, newFakeBrandRepo(), &fakeReportRepo{}, nil)

	_, err := svc.GenerateReport(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.GenerateReport(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveReport(t *testing.T) {
	reports := &fakeReportRepo{}
	svc := newTestTrackingService(nil, newFakeBrandRepo(), reports, nil)

	report := &models.TrackingReport{ID: "client-id", BrandID: "brand-1", GeneratedAt: trackingStart}
	saved, err := svc.SaveReport(context.Background(), report)
	require.NoError(t, err)
	require.NotNil(t, saved.SavedAt)
	assert.NotEqual(t, "client-id", saved.ID)
	assert.Nil(t, report.SavedAt)

	_, err = svc.SaveReport(context.Background(), report)
	assert.ErrorIs(t, err, ErrDuplicateReport)

	_, err = svc.SaveReport(context.Background(), &models.TrackingReport{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.SaveReport(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetBrandReportsNewestFirst(t *testing.T) {
	reports := &fakeReportRepo{}
	svc := newTestTrackingService(nil, newFakeBrandRepo(), reports, nil)

	for i := 0; i < 12; i++ {
		_, err := reports.SaveReport(context.Background(), &models.TrackingReport{
			BrandID:     "brand-1",
			GeneratedAt: trackingStart.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	got, err := svc.GetBrandReports(context.Background(), "brand-1")
	require.NoError(t, err)
	assert.Equal(t, ReportHistoryLimit, reports.lastLimit)
	require.Len(t, got, ReportHistoryLimit)
	assert.True(t, got[0].GeneratedAt.After(got[1].GeneratedAt))
}

func TestRecomputeReport(t *testing.T) {
	brands := newFakeBrandRepo(sampleBrand())
	reports := &fakeReportRepo{}
	trackers := []providers.Tracker{
		&testutil.MockTracker{NameValue: "Mistral"},
		failingTracker("OpenAI"),
	}
	svc := newTestTrackingService(trackers, brands, reports, nil)

	original, err := svc.GenerateReport(context.Background(), "brand-1")
	require.NoError(t, err)

	again, err := svc.RecomputeReport(context.Background(), original.ID)
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, again.ID)
	assert.Equal(t, original.GeneralizedMetrics, again.GeneralizedMetrics)
	assert.Equal(t, original.AIModelPerformance, again.AIModelPerformance)
	assert.Equal(t, original.CompetitorAnalysis, again.CompetitorAnalysis)

	_, err = svc.RecomputeReport(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGroupByModelKeepsFirstAppearanceOrder(t *testing.T) {
	groups := GroupByModel([]models.PromptResult{
		{Prompt: "p1", Model: "Groq"},
		{Prompt: "p1", Model: "OpenAI"},
		{Prompt: "p2", Model: "Groq"},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "Groq", groups[0].Model)
	assert.Len(t, groups[0].Responses, 2)
	assert.Equal(t, "OpenAI", groups[1].Model)
}
