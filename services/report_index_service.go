// services/report_index_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"

	"github.com/AI-Template-SDK/trakkr/internal/logging"
	"github.com/AI-Template-SDK/trakkr/internal/models"
)

// PromptCollection holds one document per prompt row of every report
const PromptCollection = "prompt_performance"

type reportIndexService struct {
	client *typesense.Client
}

func NewReportIndexService(client *typesense.Client) ReportIndexService {
	return &reportIndexService{client: client}
}

// EnsureCollection creates the prompt collection, tolerating one that already exists
func (s *reportIndexService) EnsureCollection(ctx context.Context) error {
	facet := true
	sort := true
	optional := true
	defaultSortField := "generated_at"

	schema := &api.CollectionSchema{
		Name: PromptCollection,
		Fields: []api.Field{
			{Name: "report_id", Type: "string", Facet: &facet},
			{Name: "brand_id", Type: "string", Facet: &facet},
			{Name: "brand_name", Type: "string", Facet: &facet},
			{Name: "prompt", Type: "string"},
			{Name: "visibility_score", Type: "int32", Sort: &sort},
			{Name: "target_brand_found", Type: "bool", Facet: &facet},
			{Name: "target_brand_rank", Type: "int32", Optional: &optional},
			{Name: "total_mentions", Type: "int32"},
			{Name: "used_mock_data", Type: "bool", Facet: &facet},
			{Name: "generated_at", Type: "int64", Sort: &sort},
		},
		DefaultSortingField: &defaultSortField,
	}

	_, err := s.client.Collections().Create(ctx, schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create typesense collection %s: %w", PromptCollection, err)
	}
	log := logging.Component("index")
	log.Info().Str("collection", PromptCollection).Msg("typesense collection ready")
	return nil
}

// IndexReport upserts the report's prompt rows
func (s *reportIndexService) IndexReport(ctx context.Context, report *models.TrackingReport) error {
	docs := promptDocuments(report)
	if len(docs) == 0 {
		return nil
	}

	action := "upsert"
	results, err := s.client.Collection(PromptCollection).Documents().Import(ctx, docs, &api.ImportDocumentsParams{Action: &action})
	if err != nil {
		return fmt.Errorf("failed to import prompt rows: %w", err)
	}

	failed := 0
	var firstErr string
	for _, r := range results {
		if r != nil && !r.Success {
			if failed == 0 {
				firstErr = r.Error
			}
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d prompt rows failed to index: %s", failed, len(docs), firstErr)
	}

	log := logging.Component("index")
	log.Debug().Str("report_id", report.ID).Int("rows", len(docs)).Msg("report indexed")
	return nil
}

// promptDocuments ids each row by report and position so re-indexing a report overwrites it
func promptDocuments(report *models.TrackingReport) []interface{} {
	docs := make([]interface{}, 0, len(report.PromptPerformance))
	for i, row := range report.PromptPerformance {
		doc := map[string]interface{}{
			"id":                 fmt.Sprintf("%s-%d", report.ID, i),
			"report_id":          report.ID,
			"brand_id":           report.BrandID,
			"brand_name":         report.BrandInfo.BrandName,
			"prompt":             row.Prompt,
			"visibility_score":   row.VisibilityScore,
			"target_brand_found": row.TargetBrandFound,
			"total_mentions":     row.TotalMentions,
			"used_mock_data":     report.UsedMockData,
			"generated_at":       report.GeneratedAt.Unix(),
		}
		if row.TargetBrandRank != nil {
			doc["target_brand_rank"] = *row.TargetBrandRank
		}
		docs = append(docs, doc)
	}
	return docs
}
