// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type TypesenseConfig struct {
	Host   string
	Port   int
	APIKey string
}

// ServerURL is the base URL the typesense client connects to
func (t TypesenseConfig) ServerURL() string {
	return fmt.Sprintf("http://%s:%d", t.Host, t.Port)
}

type FirecrawlConfig struct {
	APIKey  string
	BaseURL string
}

// TrackerConfig configures one tracking backend
type TrackerConfig struct {
	Name    string // display name used in reports
	Model   string
	APIKey  string
	BaseURL string // empty for the default OpenAI endpoint
}

type Config struct {
	Port              string
	Environment       string
	InngestEventKey   string
	InngestSigningKey string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	GroqAPIKey        string
	MistralAPIKey     string
	DatabaseURL       string
	Database          DatabaseConfig
	Typesense         TypesenseConfig
	Firecrawl         FirecrawlConfig

	// Tracking
	OpenAIModel    string
	GroqModel      string
	MistralModel   string
	AnthropicModel string
	TrackingModels []string
	CallDelay      time.Duration

	// Brand analysis
	AnalysisModel   string
	AnalysisBaseURL string
	AnalysisAPIKey  string

	CORSOrigins      []string
	RateLimitPerMin  int // 0 disables rate limiting
	LogLevel         string
	LogFormat        string
	MaxBrandsPerUser int
	SlackWebhookURL  string
}

// DatabaseConfig holds the postgres connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// DSN renders the config as a lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func Load() *Config {
	config := &Config{
		Port:              getEnv("PORT", "5000"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		InngestEventKey:   os.Getenv("INNGEST_EVENT_KEY"),
		InngestSigningKey: os.Getenv("INNGEST_SIGNING_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		GroqAPIKey:        os.Getenv("GROQ_API_KEY"),
		MistralAPIKey:     os.Getenv("MISTRAL_API_KEY"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),

		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GroqModel:      getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
		MistralModel:   getEnv("MISTRAL_MODEL", "mistral-large-latest"),
		AnthropicModel: getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		TrackingModels: getEnvList("TRACKING_MODELS", []string{"mistral", "groq", "openai"}),
		CallDelay:      time.Duration(getEnvInt("TRACKING_CALL_DELAY_MS", 1000)) * time.Millisecond,

		AnalysisModel:   getEnv("ANALYSIS_MODEL", "mistral-large-latest"),
		AnalysisBaseURL: getEnv("ANALYSIS_BASE_URL", MistralBaseURL),

		CORSOrigins:      getEnvList("CORS_ORIGINS", []string{"*"}),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		MaxBrandsPerUser: getEnvInt("MAX_BRANDS_PER_USER", 3),
		SlackWebhookURL:  os.Getenv("SLACK_WEBHOOK_URL"),
	}
	config.AnalysisAPIKey = config.apiKeyForBaseURL(config.AnalysisBaseURL)

	// Parse database configuration
	dbConfig, err := parseDatabaseConfig()
	if err != nil {
		// If DATABASE_URL parsing fails, try individual env vars as fallback
		dbConfig = DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "trakkr"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
		}
	}
	config.Database = dbConfig

	config.Typesense = TypesenseConfig{
		Host:   getEnv("TYPESENSE_HOST", "typesense"),
		Port:   getEnvInt("TYPESENSE_PORT", 8108),
		APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
	}
	config.Firecrawl = FirecrawlConfig{
		APIKey:  os.Getenv("FIRECRAWL_API_KEY"),
		BaseURL: getEnv("FIRECRAWL_BASE_URL", "https://api.firecrawl.dev/v1"),
	}

	return config
}

const (
	GroqBaseURL    = "https://api.groq.com/openai/v1"
	MistralBaseURL = "https://api.mistral.ai/v1"
)

// Trackers resolves TRACKING_MODELS into backend configs, in order.
// Unknown names are returned as an error so a typo does not silently drop a backend.
func (c *Config) Trackers() ([]TrackerConfig, error) {
	var out []TrackerConfig
	for _, name := range c.TrackingModels {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "mistral":
			out = append(out, TrackerConfig{Name: "Mistral", Model: c.MistralModel, APIKey: c.MistralAPIKey, BaseURL: MistralBaseURL})
		case "groq", "llama":
			out = append(out, TrackerConfig{Name: "Llama (Groq)", Model: c.GroqModel, APIKey: c.GroqAPIKey, BaseURL: GroqBaseURL})
		case "openai", "gpt":
			out = append(out, TrackerConfig{Name: "OpenAI", Model: c.OpenAIModel, APIKey: c.OpenAIAPIKey})
		case "anthropic", "claude":
			out = append(out, TrackerConfig{Name: "Claude", Model: c.AnthropicModel, APIKey: c.AnthropicAPIKey})
		default:
			return nil, fmt.Errorf("unknown tracking model %q", name)
		}
	}
	return out, nil
}

func (c *Config) apiKeyForBaseURL(baseURL string) string {
	switch baseURL {
	case MistralBaseURL:
		return c.MistralAPIKey
	case GroqBaseURL:
		return c.GroqAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

func parseDatabaseConfig() (DatabaseConfig, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return DatabaseConfig{}, fmt.Errorf("DATABASE_URL not set")
	}

	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	config := DatabaseConfig{
		Host:            parsedURL.Hostname(),
		Port:            5432, // default
		User:            parsedURL.User.Username(),
		Name:            strings.TrimPrefix(parsedURL.Path, "/"),
		SSLMode:         getEnv("DB_SSLMODE", "require"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
	}

	if password, ok := parsedURL.User.Password(); ok {
		config.Password = password
	}

	if parsedURL.Port() != "" {
		if port, err := strconv.Atoi(parsedURL.Port()); err == nil {
			config.Port = port
		}
	}

	if mode := parsedURL.Query().Get("sslmode"); mode != "" {
		config.SSLMode = mode
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
