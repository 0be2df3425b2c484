package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI-Template-SDK/trakkr/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var brandColumnNames = []string{
	"id", "user_email", "brand_url", "brand_name", "name_variants",
	"description", "prompts", "brand_count", "created_at", "updated_at",
}

func TestEnsureSchema(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS brands").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBrandAssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO brands").WillReturnResult(sqlmock.NewResult(0, 1))

	brand := &models.Brand{UserEmail: "a@acme.com", BrandURL: "acme.com", BrandName: "Acme", Description: "CRM", BrandCount: 1}
	require.NoError(t, NewBrandRepository(db).CreateBrand(context.Background(), brand))

	_, err := uuid.Parse(brand.ID)
	assert.NoError(t, err)
	assert.False(t, brand.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBrand(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New().String()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT (.+) FROM brands WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(brandColumnNames).AddRow(
			id, "a@acme.com", "https://acme.com", "Acme", `{Acme,"Acme Inc"}`,
			"CRM for small teams", `{"Best CRM tools","Top sales software"}`, 2, now, now,
		))

	brand, err := NewBrandRepository(db).GetBrand(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Acme", brand.BrandName)
	assert.Equal(t, []string{"Acme", "Acme Inc"}, brand.NameVariants)
	assert.Equal(t, []string{"Best CRM tools", "Top sales software"}, brand.Prompts)
	assert.Equal(t, 2, brand.BrandCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBrandNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBrandRepository(db)

	_, err := repo.GetBrand(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	id := uuid.New().String()
	mock.ExpectQuery("SELECT (.+) FROM brands WHERE id").WithArgs(id).
		WillReturnRows(sqlmock.NewRows(brandColumnNames))
	_, err = repo.GetBrand(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountBrandsByUser(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT COUNT").WithArgs("a@acme.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := NewBrandRepository(db).CountBrandsByUser(context.Background(), "a@acme.com")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSaveReportDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO tracking_reports").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	report := &models.TrackingReport{BrandID: uuid.New().String(), GeneratedAt: time.Now().UTC()}
	_, err := NewReportRepository(db).SaveReport(context.Background(), report)
	assert.ErrorIs(t, err, ErrDuplicateReport)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReportOtherError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO tracking_reports").WillReturnError(errors.New("connection reset"))

	_, err := NewReportRepository(db).SaveReport(context.Background(), &models.TrackingReport{BrandID: uuid.New().String()})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateReport)
}

func TestSaveAndListReports(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReportRepository(db)
	brandID := uuid.New().String()

	mock.ExpectExec("INSERT INTO tracking_reports").WillReturnResult(sqlmock.NewResult(0, 1))
	report := &models.TrackingReport{
		BrandID:            brandID,
		GeneralizedMetrics: models.GeneralizedMetrics{VisibilityScore: 85, TotalPrompts: 1},
		GeneratedAt:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	id, err := repo.SaveReport(context.Background(), report)
	require.NoError(t, err)
	assert.Equal(t, report.ID, id)

	body, err := json.Marshal(report)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT report FROM tracking_reports").
		WithArgs(brandID, ReportHistoryLimit).
		WillReturnRows(sqlmock.NewRows([]string{"report"}).AddRow(body))

	reports, err := repo.ListReportsByBrand(context.Background(), brandID, ReportHistoryLimit)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, id, reports[0].ID)
	assert.Equal(t, 85, reports[0].GeneralizedMetrics.VisibilityScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReportNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New().String()
	mock.ExpectQuery("SELECT report FROM tracking_reports").WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"report"}))

	_, err := NewReportRepository(db).GetReport(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}
