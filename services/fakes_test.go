package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/AI-Template-SDK/trakkr/internal/models"
)

type fakeBrandRepo struct {
	mu     sync.Mutex
	brands map[string]*models.Brand
	order  []string
}

func newFakeBrandRepo(brands ...*models.Brand) *fakeBrandRepo {
	r := &fakeBrandRepo{brands: make(map[string]*models.Brand)}
	for _, b := range brands {
		_ = r.CreateBrand(context.Background(), b)
	}
	return r
}

func (r *fakeBrandRepo) CreateBrand(ctx context.Context, brand *models.Brand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if brand.ID == "" {
		brand.ID = fmt.Sprintf("brand-%d", len(r.order)+1)
	}
	cp := *brand
	r.brands[brand.ID] = &cp
	r.order = append(r.order, brand.ID)
	return nil
}

func (r *fakeBrandRepo) GetBrand(ctx context.Context, id string) (*models.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.brands[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBrandRepo) ListBrandsByUser(ctx context.Context, email string) ([]*models.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Brand{}
	for _, id := range r.order {
		if b := r.brands[id]; b.UserEmail == email {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeBrandRepo) CountBrandsByUser(ctx context.Context, email string) (int, error) {
	brands, _ := r.ListBrandsByUser(ctx, email)
	return len(brands), nil
}

func (r *fakeBrandRepo) ListAllBrands(ctx context.Context) ([]*models.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Brand, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.brands[id]
		out = append(out, &cp)
	}
	return out, nil
}

type fakeReportRepo struct {
	mu        sync.Mutex
	reports   []*models.TrackingReport
	lastLimit int
}

func (r *fakeReportRepo) SaveReport(ctx context.Context, report *models.TrackingReport) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reports {
		if existing.BrandID == report.BrandID && existing.GeneratedAt.Equal(report.GeneratedAt) {
			return "", ErrDuplicateReport
		}
	}
	if report.ID == "" {
		report.ID = fmt.Sprintf("report-%d", len(r.reports)+1)
	}
	cp := *report
	r.reports = append(r.reports, &cp)
	return report.ID, nil
}

func (r *fakeReportRepo) GetReport(ctx context.Context, id string) (*models.TrackingReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rep := range r.reports {
		if rep.ID == id {
			cp := *rep
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeReportRepo) ListReportsByBrand(ctx context.Context, brandID string, limit int) ([]*models.TrackingReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	out := []*models.TrackingReport{}
	for _, rep := range r.reports {
		if rep.BrandID == brandID {
			cp := *rep
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeIndex struct {
	indexed []string
	err     error
}

func (f *fakeIndex) EnsureCollection(ctx context.Context) error { return nil }

func (f *fakeIndex) IndexReport(ctx context.Context, report *models.TrackingReport) error {
	f.indexed = append(f.indexed, report.ID)
	return f.err
}

func steppingClock(t time.Time) func() time.Time {
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}
