package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/AI-Template-SDK/trakkr/internal/models"
	"github.com/AI-Template-SDK/trakkr/services"
)

// ReportQueue hands report generation to a background worker
type ReportQueue interface {
	EnqueueReport(ctx context.Context, brandID string) (string, error)
}

// Handler serves the REST API on top of the services
type Handler struct {
	Analysis services.BrandAnalysisService
	Brands   services.BrandService
	Tracking services.TrackingService
	Users    services.UserService
	// Queue may be nil, in which case async generation is unavailable
	Queue ReportQueue
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeMessage(w, http.StatusBadRequest, "Email required.")
		return
	}

	user, err := h.Users.Signup(r.Context(), req.Email)
	if err != nil {
		if statusFor(err) == http.StatusConflict {
			writeMessage(w, http.StatusConflict, "Email already exists.")
			return
		}
		writeError(w, r, err)
		return
	}
	writeData(w, user, "Signup successful.")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeMessage(w, http.StatusBadRequest, "Email required.")
		return
	}

	user, err := h.Users.Login(r.Context(), req.Email)
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			writeMessage(w, http.StatusNotFound, "Email not found.")
			return
		}
		writeError(w, r, err)
		return
	}
	writeData(w, user, "Login successful.")
}

type analyzeRequest struct {
	URL         string `json:"url"`
	ScrapedText string `json:"scraped_text"`
}

type analysisSources struct {
	Success bool `json:"mistral_success"`
	Used    bool `json:"mistral_used"`
}

type analyzeResponse struct {
	Success  bool                  `json:"success"`
	Data     *models.BrandAnalysis `json:"data"`
	Fallback bool                  `json:"fallback,omitempty"`
	Sources  analysisSources       `json:"sources"`
}

func (h *Handler) AnalyzeBrand(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeMessage(w, http.StatusBadRequest, "URL is required")
		return
	}

	result, err := h.Analysis.AnalyzeBrand(r.Context(), req.URL, req.ScrapedText)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		Success:  true,
		Data:     result.Analysis,
		Fallback: result.Fallback,
		Sources:  analysisSources{Success: !result.Fallback, Used: !result.Fallback},
	})
}

func (h *Handler) SaveBrand(w http.ResponseWriter, r *http.Request) {
	var brand models.Brand
	if err := decodeBody(w, r, &brand); err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := h.Brands.SaveBrand(r.Context(), &brand)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, saved, "Brand saved successfully")
}

func (h *Handler) GetBrand(w http.ResponseWriter, r *http.Request) {
	brand, err := h.Brands.GetBrand(r.Context(), chi.URLParam(r, "brandId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, brand, "")
}

func (h *Handler) GetUserBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.Brands.GetUserBrands(r.Context(), chi.URLParam(r, "userEmail"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, brands, "")
}

type brandIDRequest struct {
	BrandID string `json:"brandId"`
}

// brandIDFrom reads brandId from the URL or, failing that, the JSON body
func brandIDFrom(w http.ResponseWriter, r *http.Request) (string, error) {
	if id := chi.URLParam(r, "brandId"); id != "" {
		return id, nil
	}
	if r.Method == http.MethodGet {
		return "", nil
	}
	var req brandIDRequest
	if err := decodeBody(w, r, &req); err != nil {
		return "", err
	}
	return strings.TrimSpace(req.BrandID), nil
}

func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	brandID, err := brandIDFrom(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if brandID == "" {
		writeMessage(w, http.StatusBadRequest, "Brand ID is required")
		return
	}

	report, err := h.Tracking.GenerateReport(r.Context(), brandID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, report, "")
}

func (h *Handler) GenerateReportAsync(w http.ResponseWriter, r *http.Request) {
	if h.Queue == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Background report generation is not configured")
		return
	}
	brandID, err := brandIDFrom(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if brandID == "" {
		writeMessage(w, http.StatusBadRequest, "Brand ID is required")
		return
	}
	if _, err := h.Brands.GetBrand(r.Context(), brandID); err != nil {
		writeError(w, r, err)
		return
	}

	eventID, err := h.Queue.EnqueueReport(r.Context(), brandID)
	if err != nil {
		writeError(w, r, fmt.Errorf("failed to enqueue report: %w", err))
		return
	}
	writeJSON(w, http.StatusAccepted, Envelope{
		Success: true,
		Data:    map[string]string{"brand_id": brandID, "event_id": eventID},
		Message: "Report generation started",
	})
}

type saveReportRequest struct {
	Report *models.TrackingReport `json:"report"`
}

func (h *Handler) SaveReport(w http.ResponseWriter, r *http.Request) {
	var req saveReportRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Report == nil || req.Report.BrandID == "" {
		writeMessage(w, http.StatusBadRequest, "Invalid report data")
		return
	}

	saved, err := h.Tracking.SaveReport(r.Context(), req.Report)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, saved, "Report saved successfully")
}

func (h *Handler) GetBrandReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.Tracking.GetBrandReports(r.Context(), chi.URLParam(r, "brandId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, reports, "")
}

func (h *Handler) RecomputeReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Tracking.RecomputeReport(r.Context(), chi.URLParam(r, "reportId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, report, "Report recomputed")
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]string{"status": "ok"}, "")
}
