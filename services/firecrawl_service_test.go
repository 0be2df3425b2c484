package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI-Template-SDK/trakkr/internal/config"
)

func firecrawlConfig(baseURL string) *config.Config {
	return &config.Config{Firecrawl: config.FirecrawlConfig{APIKey: "fc-key", BaseURL: baseURL}}
}

func TestFirecrawlScrapeURL(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scrape", r.URL.Path)
		assert.Equal(t, "Bearer fc-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"success": true, "data": {"content": "# Acme", "metadata": {"title": "Acme"}}}`))
	}))
	defer server.Close()

	result, err := NewFirecrawlService(firecrawlConfig(server.URL)).ScrapeURL(context.Background(), "https://acme.com")
	require.NoError(t, err)

	assert.Equal(t, "https://acme.com", body["url"])
	assert.Equal(t, "# Acme", result.Data.Markdown)
	assert.Equal(t, "Acme", result.Data.Metadata.Title)
}

func TestFirecrawlScrapeURLStatusError(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{http.StatusPaymentRequired, false},
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error": "nope"}` + "\n"))
			}))
			defer server.Close()

			_, err := NewFirecrawlService(firecrawlConfig(server.URL)).ScrapeURL(context.Background(), "https://acme.com")

			var statusErr *ScrapeStatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, `{"error": "nope"}`, statusErr.Body)
			assert.Equal(t, tt.retryable, statusErr.Retryable())
			assert.Contains(t, err.Error(), "https://acme.com")
		})
	}
}

func TestFirecrawlScrapeURLReportedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false}`))
	}))
	defer server.Close()

	_, err := NewFirecrawlService(firecrawlConfig(server.URL)).ScrapeURL(context.Background(), "https://acme.com")
	assert.Error(t, err)
}

func TestFirecrawlScrapeURLNotConfigured(t *testing.T) {
	_, err := NewFirecrawlService(&config.Config{}).ScrapeURL(context.Background(), "https://acme.com")
	assert.ErrorIs(t, err, ErrFirecrawlNotConfigured)
}
