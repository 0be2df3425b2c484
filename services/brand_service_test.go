package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI-Template-SDK/trakkr/internal/models"
	"github.com/AI-Template-SDK/trakkr/internal/providers/testutil"
)

func newBrand(email, name string) *models.Brand {
	return &models.Brand{
		UserEmail:   email,
		BrandURL:    "https://" + name + ".com",
		BrandName:   name,
		Description: name + " sells things.",
	}
}

func TestSaveBrandCountsAndLimits(t *testing.T) {
	repo := newFakeBrandRepo()
	svc := NewBrandService(testutil.SampleConfig(), repo)
	ctx := context.Background()

	for i, name := range []string{"acme", "globex", "initech"} {
		saved, err := svc.SaveBrand(ctx, newBrand("owner@example.com", name))
		require.NoError(t, err)
		assert.Equal(t, i+1, saved.BrandCount)
		assert.NotEmpty(t, saved.ID)
		assert.NotNil(t, saved.Prompts)
	}

	_, err := svc.SaveBrand(ctx, newBrand("owner@example.com", "umbrella"))
	assert.ErrorIs(t, err, ErrBrandLimit)

	other, err := svc.SaveBrand(ctx, newBrand("someone@example.com", "umbrella"))
	require.NoError(t, err)
	assert.Equal(t, 1, other.BrandCount)

	brands, err := svc.GetUserBrands(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Len(t, brands, 3)
}

func TestSaveBrandRequiredFields(t *testing.T) {
	svc := NewBrandService(testutil.SampleConfig(), newFakeBrandRepo())

	cases := map[string]func(*models.Brand){
		"email":       func(b *models.Brand) { b.UserEmail = "" },
		"url":         func(b *models.Brand) { b.BrandURL = " " },
		"name":        func(b *models.Brand) { b.BrandName = "" },
		"description": func(b *models.Brand) { b.Description = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			brand := newBrand("owner@example.com", "acme")
			mutate(brand)
			_, err := svc.SaveBrand(context.Background(), brand)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err := svc.SaveBrand(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSaveBrandUnlimited(t *testing.T) {
	cfg := testutil.SampleConfig()
	cfg.MaxBrandsPerUser = 0
	svc := NewBrandService(cfg, newFakeBrandRepo())

	for i := 0; i < 5; i++ {
		_, err := svc.SaveBrand(context.Background(), newBrand("owner@example.com", "acme"))
		require.NoError(t, err)
	}
}

func TestGetBrandNotFoundFromService(t *testing.T) {
	svc := NewBrandService(testutil.SampleConfig(), newFakeBrandRepo())
	_, err := svc.GetBrand(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetUserBrands(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
