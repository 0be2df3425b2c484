// services/repository.go
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AI-Template-SDK/trakkr/internal/models"
)

// uniqueViolation is the postgres SQLSTATE for unique_violation
const uniqueViolation = "23505"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS brands (
	id            UUID PRIMARY KEY,
	user_email    TEXT NOT NULL,
	brand_url     TEXT NOT NULL,
	brand_name    TEXT NOT NULL,
	name_variants TEXT[] NOT NULL DEFAULT '{}',
	description   TEXT NOT NULL,
	prompts       TEXT[] NOT NULL DEFAULT '{}',
	brand_count   INTEGER NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS brands_user_email_idx ON brands (user_email);

CREATE TABLE IF NOT EXISTS tracking_reports (
	id             UUID PRIMARY KEY,
	brand_id       UUID NOT NULL,
	report         JSONB NOT NULL,
	used_mock_data BOOLEAN NOT NULL DEFAULT FALSE,
	generated_at   TIMESTAMPTZ NOT NULL,
	saved_at       TIMESTAMPTZ,
	UNIQUE (brand_id, generated_at)
);
CREATE INDEX IF NOT EXISTS tracking_reports_brand_idx ON tracking_reports (brand_id, generated_at DESC);
`

// EnsureSchema creates the tables if they do not exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

type brandRow struct {
	ID           string         `db:"id"`
	UserEmail    string         `db:"user_email"`
	BrandURL     string         `db:"brand_url"`
	BrandName    string         `db:"brand_name"`
	NameVariants pq.StringArray `db:"name_variants"`
	Description  string         `db:"description"`
	Prompts      pq.StringArray `db:"prompts"`
	BrandCount   int            `db:"brand_count"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r *brandRow) toModel() *models.Brand {
	return &models.Brand{
		ID:           r.ID,
		UserEmail:    r.UserEmail,
		BrandURL:     r.BrandURL,
		BrandName:    r.BrandName,
		NameVariants: []string(r.NameVariants),
		Description:  r.Description,
		Prompts:      []string(r.Prompts),
		BrandCount:   r.BrandCount,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

const brandColumns = `id, user_email, brand_url, brand_name, name_variants, description, prompts, brand_count, created_at, updated_at`

type brandRepository struct {
	db *sqlx.DB
}

func NewBrandRepository(db *sqlx.DB) BrandRepository {
	return &brandRepository{db: db}
}

func (r *brandRepository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	if brand.ID == "" {
		brand.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if brand.CreatedAt.IsZero() {
		brand.CreatedAt = now
	}
	brand.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `INSERT INTO brands (`+brandColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		brand.ID, brand.UserEmail, brand.BrandURL, brand.BrandName,
		pq.StringArray(brand.NameVariants), brand.Description, pq.StringArray(brand.Prompts),
		brand.BrandCount, brand.CreatedAt, brand.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert brand: %w", err)
	}
	return nil
}

func (r *brandRepository) GetBrand(ctx context.Context, id string) (*models.Brand, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var row brandRow
	err := r.db.GetContext(ctx, &row, `SELECT `+brandColumns+` FROM brands WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brand %s: %w", id, err)
	}
	return row.toModel(), nil
}

func (r *brandRepository) ListBrandsByUser(ctx context.Context, email string) ([]*models.Brand, error) {
	var rows []brandRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+brandColumns+` FROM brands WHERE user_email = $1 ORDER BY created_at`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands for %s: %w", email, err)
	}
	return brandsFromRows(rows), nil
}

func (r *brandRepository) CountBrandsByUser(ctx context.Context, email string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM brands WHERE user_email = $1`, email); err != nil {
		return 0, fmt.Errorf("failed to count brands for %s: %w", email, err)
	}
	return count, nil
}

func (r *brandRepository) ListAllBrands(ctx context.Context) ([]*models.Brand, error) {
	var rows []brandRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+brandColumns+` FROM brands ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return brandsFromRows(rows), nil
}

func brandsFromRows(rows []brandRow) []*models.Brand {
	out := make([]*models.Brand, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out
}

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) ReportRepository {
	return &reportRepository{db: db}
}

// SaveReport inserts the report as JSONB and returns its id.
// A (brand_id, generated_at) collision is reported as ErrDuplicateReport.
func (r *reportRepository) SaveReport(ctx context.Context, report *models.TrackingReport) (string, error) {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}

	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO tracking_reports (id, brand_id, report, used_mock_data, generated_at, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		report.ID, report.BrandID, body, report.UsedMockData, report.GeneratedAt, report.SavedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return "", ErrDuplicateReport
		}
		return "", fmt.Errorf("failed to insert report: %w", err)
	}
	return report.ID, nil
}

func (r *reportRepository) GetReport(ctx context.Context, id string) (*models.TrackingReport, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var body []byte
	err := r.db.GetContext(ctx, &body, `SELECT report FROM tracking_reports WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}
	return decodeReport(body)
}

func (r *reportRepository) ListReportsByBrand(ctx context.Context, brandID string, limit int) ([]*models.TrackingReport, error) {
	if _, err := uuid.Parse(brandID); err != nil {
		return []*models.TrackingReport{}, nil
	}

	var bodies [][]byte
	err := r.db.SelectContext(ctx, &bodies, `SELECT report FROM tracking_reports
		WHERE brand_id = $1 ORDER BY generated_at DESC LIMIT $2`, brandID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for %s: %w", brandID, err)
	}

	out := make([]*models.TrackingReport, 0, len(bodies))
	for _, body := range bodies {
		report, err := decodeReport(body)
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, nil
}

func decodeReport(body []byte) (*models.TrackingReport, error) {
	var report models.TrackingReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}
