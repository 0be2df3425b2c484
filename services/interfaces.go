// services/interfaces.go
package services

import (
	"context"
	"errors"

	"github.com/invopop/jsonschema"

	"github.com/AI-Template-SDK/trakkr/internal/models"
)

var (
	// ErrNotFound is returned when a brand or report does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicateReport is returned when a report violates a unique key
	ErrDuplicateReport = errors.New("report already exists")
	// ErrBrandLimit is returned when a user already owns the maximum number of brands
	ErrBrandLimit = errors.New("brand limit reached")
	// ErrUserExists is returned by signup for a known email
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidInput wraps request validation failures
	ErrInvalidInput = errors.New("invalid input")
)

type CostService interface {
	CalculateCost(provider, model string, inputTokens, outputTokens int) float64
	GetCostByModel(model string) (float64, float64, error)
}

// BrandRepository persists brands and their prompts
type BrandRepository interface {
	CreateBrand(ctx context.Context, brand *models.Brand) error
	GetBrand(ctx context.Context, id string) (*models.Brand, error)
	ListBrandsByUser(ctx context.Context, email string) ([]*models.Brand, error)
	CountBrandsByUser(ctx context.Context, email string) (int, error)
	ListAllBrands(ctx context.Context) ([]*models.Brand, error)
}

// ReportRepository persists tracking reports
type ReportRepository interface {
	SaveReport(ctx context.Context, report *models.TrackingReport) (string, error)
	GetReport(ctx context.Context, id string) (*models.TrackingReport, error)
	ListReportsByBrand(ctx context.Context, brandID string, limit int) ([]*models.TrackingReport, error)
}

// BrandAnalysisResult is an analysis plus whether the canned example had to be used
type BrandAnalysisResult struct {
	Analysis     *models.BrandAnalysis `json:"data"`
	Fallback     bool                  `json:"fallback"`
	InputTokens  int                   `json:"-"`
	OutputTokens int                   `json:"-"`
	Cost         float64               `json:"-"`
}

type BrandAnalysisService interface {
	AnalyzeBrand(ctx context.Context, brandURL, scrapedText string) (*BrandAnalysisResult, error)
}

type BrandService interface {
	SaveBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error)
	GetBrand(ctx context.Context, id string) (*models.Brand, error)
	GetUserBrands(ctx context.Context, email string) ([]*models.Brand, error)
}

// CollectionResult is everything the trackers returned for one brand
type CollectionResult struct {
	PerModel  []models.ModelResponses
	Fallbacks int
	TotalCost float64
}

type TrackingService interface {
	CollectResponses(ctx context.Context, brand *models.Brand) (*CollectionResult, error)
	GenerateReport(ctx context.Context, brandID string) (*models.TrackingReport, error)
	SaveReport(ctx context.Context, report *models.TrackingReport) (*models.TrackingReport, error)
	GetBrandReports(ctx context.Context, brandID string) ([]*models.TrackingReport, error)
	RecomputeReport(ctx context.Context, reportID string) (*models.TrackingReport, error)
}

type AnalyticsService interface {
	GenerateInsights(report *models.TrackingReport) []string
}

// ReportIndexService makes prompt performance rows searchable
type ReportIndexService interface {
	EnsureCollection(ctx context.Context) error
	IndexReport(ctx context.Context, report *models.TrackingReport) error
}

type UserService interface {
	Signup(ctx context.Context, email string) (*models.User, error)
	Login(ctx context.Context, email string) (*models.User, error)
}

// GenerateSchema generates a JSON schema for structured outputs
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var zero T
	schema := reflector.Reflect(zero)

	// Convert to the format expected by OpenAI
	result := map[string]interface{}{
		"type":       "object",
		"properties": schema.Properties,
		"required":   schema.Required,
	}

	if schema.AdditionalProperties != nil {
		result["additionalProperties"] = false
	}

	return result
}
