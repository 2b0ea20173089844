// Package config loads settings from the environment (and .env) plus an
// optional YAML file holding feed sources and keyword tables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/teledigest/internal/mailer"
	"github.com/deusflow/teledigest/internal/news"
	"github.com/deusflow/teledigest/internal/rss"
)

const DefaultConfigPath = "configs/digest.yaml"

type Config struct {
	// Gemini settings
	GeminiAPIKey     string
	GeminiModel      string
	GeminiMaxRetries int
	GeminiRetryDelay time.Duration
	RankTimeout      time.Duration

	// Mail settings
	GmailUser        string
	GmailAppPassword string
	Recipients       []string
	SMTPHost         string
	SMTPPort         int

	// Pipeline settings
	MaxNewsDaily       int
	Lookback           time.Duration
	RankFallbackCount  int
	FetchConcurrency   int
	RequestTimeout     time.Duration
	HostInterval       time.Duration
	RequireRelevance   bool
	EnrichDescriptions bool
	EnrichMaxArticles  int

	// App settings
	OutputDir        string
	Debug            bool
	TestMode         bool
	EnableMonitoring bool
	MonitoringPort   string

	// CI run link for failure notices
	GitHubServerURL  string
	GitHubRepository string
	GitHubRunID      string

	// From the YAML file, or built-in defaults
	ConfigPath string
	Sources    []rss.Source
	Keywords   news.KeywordTables
}

// FileConfig is the layout of the YAML file.
type FileConfig struct {
	Sources  []rss.Source  `yaml:"sources"`
	Keywords *FileKeywords `yaml:"keywords"`
}

// FileKeywords is the keywords section. Omitted parts keep the built-in
// tables; FloorPriority is a pointer so an explicit 0 is kept.
type FileKeywords struct {
	Tiers         []news.KeywordTier       `yaml:"tiers"`
	Mapping       map[string]news.Category `yaml:"mapping"`
	Required      []string                 `yaml:"required"`
	FloorPriority *int                     `yaml:"floor_priority"`
}

// Load reads .env (if present), the environment and the YAML file at path.
// An empty path means DIGEST_CONFIG or DefaultConfigPath; a missing file at
// the default location is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Default values
		GeminiModel:       "gemini-2.0-flash",
		GeminiMaxRetries:  1,
		GeminiRetryDelay:  5 * time.Second,
		RankTimeout:       60 * time.Second,
		SMTPHost:          "smtp.gmail.com",
		SMTPPort:          587,
		MaxNewsDaily:      20,
		Lookback:          24 * time.Hour,
		RankFallbackCount: 15,
		FetchConcurrency:  4,
		RequestTimeout:    30 * time.Second,
		HostInterval:      time.Second,
		EnrichMaxArticles: 5,
		OutputDir:         "output",
		MonitoringPort:    "8080",
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.GeminiMaxRetries = getEnvIntOrDefault("GEMINI_MAX_RETRIES", cfg.GeminiMaxRetries)
	cfg.GeminiRetryDelay = getEnvDurationOrDefault("GEMINI_RETRY_DELAY", cfg.GeminiRetryDelay)
	cfg.RankTimeout = getEnvDurationOrDefault("RANK_TIMEOUT", cfg.RankTimeout)

	cfg.GmailUser = os.Getenv("GMAIL_USER")
	cfg.GmailAppPassword = os.Getenv("GMAIL_APP_PASSWORD")
	cfg.Recipients = mailer.ParseRecipients(os.Getenv("RECIPIENT_EMAIL"))
	cfg.SMTPHost = getEnvOrDefault("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = getEnvIntOrDefault("SMTP_PORT", cfg.SMTPPort)

	cfg.MaxNewsDaily = getEnvIntOrDefault("MAX_NEWS_DAILY", cfg.MaxNewsDaily)
	if hours := getEnvIntOrDefault("NEWS_LOOKBACK_HOURS", 0); hours > 0 {
		cfg.Lookback = time.Duration(hours) * time.Hour
	}
	cfg.RankFallbackCount = getEnvIntOrDefault("RANK_FALLBACK_COUNT", cfg.RankFallbackCount)
	cfg.FetchConcurrency = getEnvIntOrDefault("FETCH_CONCURRENCY", cfg.FetchConcurrency)
	cfg.RequestTimeout = getEnvDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.HostInterval = getEnvDurationOrDefault("FETCH_HOST_INTERVAL", cfg.HostInterval)
	cfg.RequireRelevance = getEnvBool("REQUIRE_TELECOM_RELEVANCE")
	cfg.EnrichDescriptions = getEnvBool("ENRICH_DESCRIPTIONS")
	cfg.EnrichMaxArticles = getEnvIntOrDefault("ENRICH_MAX_ARTICLES", cfg.EnrichMaxArticles)

	cfg.OutputDir = getEnvOrDefault("OUTPUT_DIR", cfg.OutputDir)
	cfg.Debug = getEnvBool("DEBUG") || getEnvBool("DEBUG_MODE")
	cfg.TestMode = getEnvBool("TEST_MODE")
	cfg.EnableMonitoring = getEnvBool("ENABLE_HTTP_MONITORING")
	cfg.MonitoringPort = getEnvOrDefault("MONITORING_PORT", cfg.MonitoringPort)

	cfg.GitHubServerURL = os.Getenv("GITHUB_SERVER_URL")
	cfg.GitHubRepository = os.Getenv("GITHUB_REPOSITORY")
	cfg.GitHubRunID = os.Getenv("GITHUB_RUN_ID")

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = os.Getenv("DIGEST_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultConfigPath
	}
	c.ConfigPath = path
	c.Sources = rss.DefaultSources()
	c.Keywords = news.DefaultKeywordTables()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			c.ConfigPath = ""
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if len(fc.Sources) > 0 {
		c.Sources = fc.Sources
	}
	if fc.Keywords != nil {
		c.Keywords = mergeKeywords(*fc.Keywords, c.Keywords)
	}
	return nil
}

// mergeKeywords fills sections missing from the file with the defaults.
func mergeKeywords(file FileKeywords, defaults news.KeywordTables) news.KeywordTables {
	out := defaults
	if len(file.Tiers) > 0 {
		out.Tiers = file.Tiers
	}
	if len(file.Mapping) > 0 {
		out.Mapping = file.Mapping
	}
	if len(file.Required) > 0 {
		out.Required = file.Required
	}
	if file.FloorPriority != nil {
		out.FloorPriority = *file.FloorPriority
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("90s") or whole seconds ("5").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), "true")
}

// Validate checks settings every command depends on.
func (c *Config) Validate() error {
	if c.MaxNewsDaily <= 0 {
		return fmt.Errorf("MAX_NEWS_DAILY must be positive")
	}
	if c.Lookback <= 0 {
		return fmt.Errorf("NEWS_LOOKBACK_HOURS must be positive")
	}
	if c.RankFallbackCount <= 0 {
		return fmt.Errorf("RANK_FALLBACK_COUNT must be positive")
	}
	if c.GeminiMaxRetries < 1 {
		return fmt.Errorf("GEMINI_MAX_RETRIES must be at least 1")
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1")
	}

	sources, err := rss.NormalizeSources(c.Sources)
	if err != nil {
		return fmt.Errorf("invalid sources: %w", err)
	}
	c.Sources = sources

	if _, err := news.NewScorer(c.Keywords); err != nil {
		return fmt.Errorf("invalid keywords: %w", err)
	}
	return nil
}

// ValidateDelivery checks the settings needed to send mail.
func (c *Config) ValidateDelivery() error {
	if c.GmailUser == "" {
		return fmt.Errorf("GMAIL_USER is required")
	}
	if c.GmailAppPassword == "" {
		return fmt.Errorf("GMAIL_APP_PASSWORD is required")
	}
	if len(c.Recipients) == 0 {
		return fmt.Errorf("RECIPIENT_EMAIL is required")
	}
	return nil
}
