package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/AI-Template-SDK/trakkr/internal/models"
	"github.com/AI-Template-SDK/trakkr/internal/providers/common"
)

// MockCostService is a mock implementation of CostService for testing
type MockCostService struct {
	CalculateCostFunc func(provider, model string, inputTokens, outputTokens int) float64
}

func (m *MockCostService) CalculateCost(provider, model string, inputTokens, outputTokens int) float64 {
	if m.CalculateCostFunc != nil {
		return m.CalculateCostFunc(provider, model, inputTokens, outputTokens)
	}
	return 0.0015 // Default mock cost
}

func (m *MockCostService) GetCostByModel(model string) (float64, float64, error) {
	return 0.0, 0.0, nil
}

// NewMockCostService creates a new mock cost service
func NewMockCostService() *MockCostService {
	return &MockCostService{}
}

// MockTracker is a scripted providers.Tracker
type MockTracker struct {
	NameValue  string
	ModelValue string
	// TrackFunc answers a prompt; nil returns a canned one-brand answer
	TrackFunc func(ctx context.Context, prompt string, identity models.BrandIdentity) (*common.AIResponse, error)
	Template   common.FallbackTemplate

	mu    sync.Mutex
	Calls []string
}

func (m *MockTracker) Name() string  { return m.NameValue }
func (m *MockTracker) Model() string { return m.ModelValue }

func (m *MockTracker) TrackPrompt(ctx context.Context, prompt string, identity models.BrandIdentity) (*common.AIResponse, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, prompt)
	m.mu.Unlock()

	if m.TrackFunc != nil {
		return m.TrackFunc(ctx, prompt, identity)
	}
	return RawResponse(map[string]any{
		"prompt": prompt,
		"ranked_brands": []any{
			map[string]any{"brand": identity.Name, "rank": 1, "mentions": 3, "sentiment": "positive"},
		},
	}), nil
}

func (m *MockTracker) Fallback(prompt string, identity models.BrandIdentity) models.PromptResult {
	res := m.Template.Render(prompt, identity, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	res.Model = m.NameValue
	return res
}

// CallCount returns how many prompts were tracked
func (m *MockTracker) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// RawResponse wraps an already-decoded answer the way a real tracker returns it.
// The value is round-tripped through JSON so numbers become float64.
func RawResponse(v any) *common.AIResponse {
	data, _ := json.Marshal(v)
	var raw any
	_ = json.Unmarshal(data, &raw)
	return &common.AIResponse{Response: string(data), Raw: raw, InputTokens: 100, OutputTokens: 50, Cost: 0.0015}
}

// MockChatServer fakes an OpenAI-compatible /chat/completions endpoint
type MockChatServer struct {
	Server *httptest.Server
	// Content is returned as the assistant message
	Content string
	// Status overrides the HTTP status when non-zero
	Status int

	mu       sync.Mutex
	Requests []map[string]any
}

// NewMockChatServer creates a new mock chat completions server
func NewMockChatServer(content string) *MockChatServer {
	mock := &MockChatServer{Content: content}

	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mock.mu.Lock()
		mock.Requests = append(mock.Requests, body)
		status, content := mock.Status, mock.Content
		mock.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if status != 0 && status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error": {"message": "mock failure", "type": "server_error"}}`))
			return
		}

		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1714550400,
			"model":   body["model"],
			"choices": []any{
				map[string]any{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": content},
				},
			},
			"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 80, "total_tokens": 200},
		})
	})

	mock.Server = httptest.NewServer(mux)
	return mock
}

// URL is the base URL to hand to the client
func (m *MockChatServer) URL() string {
	return m.Server.URL
}

// LastRequest returns the most recent decoded request body
func (m *MockChatServer) LastRequest() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return nil
	}
	return m.Requests[len(m.Requests)-1]
}

// Close closes the mock server
func (m *MockChatServer) Close() {
	m.Server.Close()
}
