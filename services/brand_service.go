// services/brand_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/AI-Template-SDK/trakkr/internal/config"
	"github.com/AI-Template-SDK/trakkr/internal/logging"
	"github.com/AI-Template-SDK/trakkr/internal/models"
)

type brandService struct {
	cfg    *config.Config
	brands BrandRepository
}

func NewBrandService(cfg *config.Config, brands BrandRepository) BrandService {
	return &brandService{cfg: cfg, brands: brands}
}

// SaveBrand stores a new brand for a user. Users are limited to
// cfg.MaxBrandsPerUser brands; brand_count records the brand's position.
func (s *brandService) SaveBrand(ctx context.Context, brand *models.Brand) (*models.Brand, error) {
	if brand == nil {
		return nil, fmt.Errorf("%w: missing brand", ErrInvalidInput)
	}

	brand.UserEmail = strings.TrimSpace(brand.UserEmail)
	brand.BrandURL = strings.TrimSpace(brand.BrandURL)
	brand.BrandName = strings.TrimSpace(brand.BrandName)

	var missing []string
	if brand.UserEmail == "" {
		missing = append(missing, "user_email")
	}
	if brand.BrandURL == "" {
		missing = append(missing, "brand_url")
	}
	if brand.BrandName == "" {
		missing = append(missing, "brand_name")
	}
	if strings.TrimSpace(brand.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required fields: %s", ErrInvalidInput, strings.Join(missing, ", "))
	}

	count, err := s.brands.CountBrandsByUser(ctx, brand.UserEmail)
	if err != nil {
		return nil, err
	}
	if s.cfg.MaxBrandsPerUser > 0 && count >= s.cfg.MaxBrandsPerUser {
		return nil, fmt.Errorf("%w: maximum %d brands allowed per user", ErrBrandLimit, s.cfg.MaxBrandsPerUser)
	}

	if brand.NameVariants == nil {
		brand.NameVariants = []string{}
	}
	if brand.Prompts == nil {
		brand.Prompts = []string{}
	}
	brand.ID = ""
	brand.BrandCount = count + 1

	if err := s.brands.CreateBrand(ctx, brand); err != nil {
		return nil, err
	}

	log := logging.Component("brands")
	log.Info().Str("brand_id", brand.ID).Str("brand", brand.BrandName).
		Int("brand_count", brand.BrandCount).Msg("brand saved")
	return brand, nil
}

func (s *brandService) GetBrand(ctx context.Context, id string) (*models.Brand, error) {
	return s.brands.GetBrand(ctx, id)
}

func (s *brandService) GetUserBrands(ctx context.Context, email string) ([]*models.Brand, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	return s.brands.ListBrandsByUser(ctx, email)
}
