package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadForTest(t *testing.T) *Config {
	t.Helper()
	Reset()
	t.Cleanup(Reset)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("SERPAPI_API_KEY", "serp-key")
	cfg, err := Load("")
	require.NoError(t, err)
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := loadForTest(t)

	assert.Equal(t, "test-key", cfg.AI.Gemini.APIKey)
	assert.Equal(t, "gemini-flash-lite-latest", cfg.AI.Gemini.Model)
	assert.Equal(t, 5, cfg.Pipeline.Concurrency)
	assert.Equal(t, 8, cfg.Pipeline.MinInternalLinks)
	assert.Equal(t, 5, cfg.References.MinRelevance)
	assert.Equal(t, "draft", cfg.WordPress.DefaultStatus)
	assert.Contains(t, cfg.References.SpamDomains, "pinterest.com")
}

func TestMissingGeminiKeyFails(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_AI_API_KEY", "")
	t.Setenv("SERPAPI_API_KEY", "serp-key")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Gemini API key")
}

func TestPartialWordPressConfigFails(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("SERPAPI_API_KEY", "serp-key")
	t.Setenv("WORDPRESS_BASE_URL", "https://example.com")
	t.Setenv("WORDPRESS_USERNAME", "")
	t.Setenv("WORDPRESS_APP_PASSWORD", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WordPress username")
}

func TestTrailingSlashTrimmed(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("SERPAPI_API_KEY", "serp-key")
	t.Setenv("SITE_URL", "https://example.com/")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", cfg.Site.URL)
}

func TestDurationHelpers(t *testing.T) {
	loadForTest(t)

	assert.Equal(t, time.Hour, CacheTTL())
	assert.Equal(t, 168*time.Hour, PageTTL())
	assert.Equal(t, 5*time.Second, RetryBaseDelay())
}
