package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI-Template-SDK/trakkr/internal/config"
	"github.com/AI-Template-SDK/trakkr/internal/providers/testutil"
)

type fakeFirecrawl struct {
	markdown string
	err      error
	calls    int
}

func (f *fakeFirecrawl) ScrapeURL(ctx context.Context, urlToScrape string) (*FirecrawlScrapeResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	result := &FirecrawlScrapeResult{Success: true}
	result.Data.Markdown = f.markdown
	return result, nil
}

func analysisConfig(server *testutil.MockChatServer) *config.Config {
	cfg := testutil.SampleConfig()
	cfg.AnalysisModel = "mistral-large-latest"
	cfg.AnalysisBaseURL = server.URL()
	cfg.AnalysisAPIKey = "test-key"
	return cfg
}

func TestAnalyzeBrand(t *testing.T) {
	server := testutil.NewMockChatServer(testutil.SampleBrandAnalysisJSON())
	defer server.Close()

	svc := NewBrandAnalysisService(analysisConfig(server), nil, NewCostService(), option.WithMaxRetries(0))
	result, err := svc.AnalyzeBrand(context.Background(), "https://www.acme.com/about", "")
	require.NoError(t, err)

	assert.False(t, result.Fallback)
	assert.Equal(t, "Acme", result.Analysis.BrandName)
	assert.Equal(t, []string{"Acme", "Acme Inc", "AcmeCRM"}, result.Analysis.NameVariants)
	assert.Len(t, result.Analysis.Prompts, 5)
	assert.Equal(t, 120, result.InputTokens)
	assert.Greater(t, result.Cost, 0.0)

	req := server.LastRequest()
	require.NotNil(t, req)
	format, ok := req["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])
}

func TestAnalyzeBrandUsesScrape(t *testing.T) {
	server := testutil.NewMockChatServer(testutil.SampleBrandAnalysisJSON())
	defer server.Close()

	cfg := analysisConfig(server)
	cfg.Firecrawl.APIKey = "fc-key"
	scraper := &fakeFirecrawl{markdown: "# Acme\nCRM for small teams"}

	svc := NewBrandAnalysisService(cfg, scraper, nil, option.WithMaxRetries(0))
	_, err := svc.AnalyzeBrand(context.Background(), "https://acme.com", "")
	require.NoError(t, err)
	assert.Equal(t, 1, scraper.calls)

	messages, _ := server.LastRequest()["messages"].([]any)
	require.Len(t, messages, 1)
	content, _ := messages[0].(map[string]any)["content"].(string)
	assert.Contains(t, content, "CRM for small teams")

	_, err = svc.AnalyzeBrand(context.Background(), "https://acme.com", "already scraped")
	require.NoError(t, err)
	assert.Equal(t, 1, scraper.calls)
}

func TestAnalyzeBrandScrapeFailureStillAnalyzes(t *testing.T) {
	server := testutil.NewMockChatServer(testutil.SampleBrandAnalysisJSON())
	defer server.Close()

	cfg := analysisConfig(server)
	cfg.Firecrawl.APIKey = "fc-key"

	for _, scrapeErr := range []error{
		errors.New("blocked"),
		&ScrapeStatusError{URL: "https://acme.com", StatusCode: http.StatusTooManyRequests},
	} {
		svc := NewBrandAnalysisService(cfg, &fakeFirecrawl{err: scrapeErr}, nil, option.WithMaxRetries(0))

		result, err := svc.AnalyzeBrand(context.Background(), "https://acme.com", "")
		require.NoError(t, err)
		assert.False(t, result.Fallback)
	}
}

func TestAnalyzeBrandFallsBack(t *testing.T) {
	cases := map[string]func(*testutil.MockChatServer){
		"upstream error": func(s *testutil.MockChatServer) { s.Status = http.StatusInternalServerError },
		"unparseable":    func(s *testutil.MockChatServer) { s.Content = "I cannot help with that." },
		"missing fields": func(s *testutil.MockChatServer) { s.Content = `{"brand_name": "Acme"}` },
	}

	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			server := testutil.NewMockChatServer("")
			defer server.Close()
			setup(server)

			svc := NewBrandAnalysisService(analysisConfig(server), nil, nil, option.WithMaxRetries(0))
			result, err := svc.AnalyzeBrand(context.Background(), "https://acme.com", "")
			require.NoError(t, err)
			assert.True(t, result.Fallback)
			assert.Equal(t, ExampleBrandAnalysis(), result.Analysis)
		})
	}
}

func TestAnalyzeBrandRequiresURL(t *testing.T) {
	svc := NewBrandAnalysisService(testutil.SampleConfig(), nil, nil)
	_, err := svc.AnalyzeBrand(context.Background(), "  ", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseBrandAnalysisRegexFallback(t *testing.T) {
	content := `Here you go: {"brand_name": "Globex", "name_variants": ["Globex", "Globex Corp"],
		"description": "**Globex** makes   widgets.", "prompts": ["Best widget makers"] and more text`

	analysis, err := ParseBrandAnalysis(content)
	require.NoError(t, err)
	assert.Equal(t, "Globex", analysis.BrandName)
	assert.Equal(t, []string{"Globex", "Globex Corp"}, analysis.NameVariants)
	assert.Equal(t, "Globex makes widgets.", analysis.Description)
	assert.Equal(t, []string{"Best widget makers"}, analysis.Prompts)

	_, err = ParseBrandAnalysis("no json here")
	assert.Error(t, err)
}

func TestEnsureVariants(t *testing.T) {
	got := ensureVariants("Acme", "https://shop.acme.co.uk/path", []string{"acme", "Acme Inc", " ", "ACME INC"})
	assert.Equal(t, []string{"Acme", "Acme Inc"}, got)

	got = ensureVariants("Initech", "initech-software.com", nil)
	assert.Equal(t, []string{"Initech", "initech-software"}, got)
}

func TestDomainLabel(t *testing.T) {
	cases := map[string]string{
		"https://www.acme.com":         "acme",
		"acme.io/pricing":              "acme",
		"https://shop.acme.co.uk/path": "acme",
		"http://localhost:8080":        "",
		"":                             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, domainLabel(in), in)
	}
}

func TestBuildBrandAnalysisPromptTruncates(t *testing.T) {
	prompt := buildBrandAnalysisPrompt("https://acme.com", strings.Repeat("x", maxScrapedChars+500))
	assert.Contains(t, prompt, "https://acme.com")
	assert.NotContains(t, prompt, strings.Repeat("x", maxScrapedChars+1))
}
