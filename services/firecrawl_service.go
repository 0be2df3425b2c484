package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AI-Template-SDK/trakkr/internal/config"
)

// FirecrawlScrapeResult defines the structure of a successful scrape response
type FirecrawlScrapeResult struct {
	Success bool `json:"success"`
	Data    struct {
		Content  string `json:"content"`  // older field for markdown
		Markdown string `json:"markdown"` // newer field for markdown
		Metadata struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			SourceURL   string `json:"sourceURL"`
		} `json:"metadata"`
	} `json:"data"`
}

// ErrFirecrawlNotConfigured is returned when FIRECRAWL_API_KEY is empty
var ErrFirecrawlNotConfigured = errors.New("firecrawl API key is not configured")

// ScrapeStatusError is a non-2xx answer from Firecrawl. Body holds the start
// of the response so quota and blocked-site messages reach the logs.
type ScrapeStatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *ScrapeStatusError) Error() string {
	msg := fmt.Sprintf("firecrawl scrape of %s returned status %d", e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Retryable reports whether the same request may succeed later
func (e *ScrapeStatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

const maxErrorBody = 512

// FirecrawlService defines the interface for interacting with the Firecrawl API.
type FirecrawlService interface {
	ScrapeURL(ctx context.Context, urlToScrape string) (*FirecrawlScrapeResult, error)
}

type firecrawlService struct {
	client *http.Client
	cfg    *config.Config
}

// NewFirecrawlService creates a new FirecrawlService instance.
func NewFirecrawlService(cfg *config.Config) FirecrawlService {
	return &firecrawlService{
		client: &http.Client{Timeout: 60 * time.Second},
		cfg:    cfg,
	}
}

// ScrapeURL calls the Firecrawl /scrape endpoint for a single URL.
func (s *firecrawlService) ScrapeURL(ctx context.Context, urlToScrape string) (*FirecrawlScrapeResult, error) {
	if s.cfg.Firecrawl.APIKey == "" {
		return nil, ErrFirecrawlNotConfigured
	}

	requestBody, err := json.Marshal(map[string]any{
		"url":             urlToScrape,
		"formats":         []string{"markdown"},
		"onlyMainContent": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal firecrawl request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Firecrawl.BaseURL+"/scrape", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create firecrawl request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.Firecrawl.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firecrawl request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ScrapeStatusError{
			URL:        urlToScrape,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var result FirecrawlScrapeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode firecrawl response: %w", err)
	}

	if !result.Success {
		return nil, fmt.Errorf("firecrawl scrape of %s reported failure", urlToScrape)
	}

	// Older API versions put the markdown in 'content'
	if result.Data.Markdown == "" {
		result.Data.Markdown = result.Data.Content
	}

	return &result, nil
}
