package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/teledigest/internal/news"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_MAX_RETRIES", "GEMINI_RETRY_DELAY", "RANK_TIMEOUT",
		"GMAIL_USER", "GMAIL_APP_PASSWORD", "RECIPIENT_EMAIL", "SMTP_HOST", "SMTP_PORT",
		"MAX_NEWS_DAILY", "NEWS_LOOKBACK_HOURS", "RANK_FALLBACK_COUNT", "FETCH_CONCURRENCY",
		"REQUEST_TIMEOUT", "FETCH_HOST_INTERVAL", "REQUIRE_TELECOM_RELEVANCE", "ENRICH_DESCRIPTIONS",
		"ENRICH_MAX_ARTICLES", "OUTPUT_DIR", "DEBUG", "DEBUG_MODE", "TEST_MODE",
		"ENABLE_HTTP_MONITORING", "MONITORING_PORT", "DIGEST_CONFIG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 1, cfg.GeminiMaxRetries)
	assert.Equal(t, 5*time.Second, cfg.GeminiRetryDelay)
	assert.Equal(t, 20, cfg.MaxNewsDaily)
	assert.Equal(t, 24*time.Hour, cfg.Lookback)
	assert.Equal(t, 15, cfg.RankFallbackCount)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTPHost)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.False(t, cfg.RequireRelevance)
	assert.Len(t, cfg.Sources, 4)
	assert.Equal(t, "", cfg.ConfigPath)
	assert.Equal(t, news.DefaultKeywordTables(), cfg.Keywords)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_RETRY_DELAY", "2")
	t.Setenv("RANK_TIMEOUT", "90s")
	t.Setenv("RECIPIENT_EMAIL", "a@x.com, b@x.com")
	t.Setenv("MAX_NEWS_DAILY", "10")
	t.Setenv("NEWS_LOOKBACK_HOURS", "48")
	t.Setenv("REQUIRE_TELECOM_RELEVANCE", "TRUE")
	t.Setenv("DEBUG_MODE", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.GeminiRetryDelay)
	assert.Equal(t, 90*time.Second, cfg.RankTimeout)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, cfg.Recipients)
	assert.Equal(t, 10, cfg.MaxNewsDaily)
	assert.Equal(t, 48*time.Hour, cfg.Lookback)
	assert.True(t, cfg.RequireRelevance)
	assert.True(t, cfg.Debug)
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "digest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  - name: Light Reading
    url: https://www.lightreading.com/rss.xml
  - name: TechNews
    url: https://technews.tw/feed/
    language: zh
keywords:
  tiers:
    - name: highest
      priority: 95
      categories:
        - name: ericsson
          keywords: [ericsson]
  required: [telecom]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigPath)
	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "en", cfg.Sources[0].Language)
	assert.Equal(t, "zh", cfg.Sources[1].Language)

	require.Len(t, cfg.Keywords.Tiers, 1)
	assert.Equal(t, 95, cfg.Keywords.Tiers[0].Priority)
	assert.Equal(t, []string{"telecom"}, cfg.Keywords.Required)
	assert.Equal(t, news.PriorityFloor, cfg.Keywords.FloorPriority)
	assert.Equal(t, news.CategoryEricsson, cfg.Keywords.Mapping["ericsson"])
}

func TestLoadYAMLFloorPriorityZero(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "digest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keywords:\n  floor_priority: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Keywords.FloorPriority)
	assert.Equal(t, news.DefaultKeywordTables().Tiers, cfg.Keywords.Tiers)

	scorer, err := news.NewScorer(cfg.Keywords)
	require.NoError(t, err)
	p, c := scorer.Score("Weather is nice", "")
	assert.Equal(t, 0, p)
	assert.Equal(t, news.CategoryOther, c)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	dup := filepath.Join(t.TempDir(), "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte("sources:\n  - {name: A, url: u1}\n  - {name: A, url: u2}\n"), 0o644))
	_, err = Load(dup)
	assert.Error(t, err)

	t.Setenv("MAX_NEWS_DAILY", "0")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidateDelivery(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.ValidateDelivery())

	cfg.GmailUser = "u@x.com"
	cfg.GmailAppPassword = "p"
	assert.Error(t, cfg.ValidateDelivery())

	cfg.Recipients = []string{"r@x.com"}
	assert.NoError(t, cfg.ValidateDelivery())
}
