package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	AI         AI         `mapstructure:"ai"`
	Search     Search     `mapstructure:"search"`
	WordPress  WordPress  `mapstructure:"wordpress"`
	Site       Site       `mapstructure:"site"`
	Pipeline   Pipeline   `mapstructure:"pipeline"`
	References References `mapstructure:"references"`
	Cache      Cache      `mapstructure:"cache"`
	Logging    Logging    `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	LogLevel   string `mapstructure:"log_level"`
	DataDir    string `mapstructure:"data_dir"`
	ConfigFile string `mapstructure:"config_file"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	ImageModel string `mapstructure:"image_model"`
	Timeout    string `mapstructure:"timeout"`
}

// Search holds search provider configuration
type Search struct {
	DefaultProvider string          `mapstructure:"default_provider"`
	MaxResults      int             `mapstructure:"max_results"`
	Locale          string          `mapstructure:"locale"`
	Providers       SearchProviders `mapstructure:"providers"`
}

// SearchProviders holds configuration for all search providers
type SearchProviders struct {
	SerpAPI SerpAPIConfig `mapstructure:"serpapi"`
}

// SerpAPIConfig holds SerpAPI configuration
type SerpAPIConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// WordPress holds CMS publishing configuration
type WordPress struct {
	BaseURL             string `mapstructure:"base_url"`
	Username            string `mapstructure:"username"`
	ApplicationPassword string `mapstructure:"application_password"`
	DefaultStatus       string `mapstructure:"default_status"`
}

// Site describes the site articles are generated for. These values feed
// structured data and internal link resolution.
type Site struct {
	URL        string `mapstructure:"url"`
	Name       string `mapstructure:"name"`
	AuthorName string `mapstructure:"author_name"`
	SitemapURL string `mapstructure:"sitemap_url"`
}

// Pipeline holds generation pipeline tuning
type Pipeline struct {
	Concurrency      int    `mapstructure:"concurrency"`
	MinInternalLinks int    `mapstructure:"min_internal_links"`
	MaxRetries       int    `mapstructure:"max_retries"`
	RetryBaseDelay   string `mapstructure:"retry_base_delay"`
	MaxVideos        int    `mapstructure:"max_videos"`
	ImageCount       int    `mapstructure:"image_count"`
}

// References holds reference-discovery policy
type References struct {
	MinRelevance int      `mapstructure:"min_relevance"`
	MaxLinks     int      `mapstructure:"max_links"`
	SpamDomains  []string `mapstructure:"spam_domains"`
}

// Cache holds cache configuration
type Cache struct {
	Directory string `mapstructure:"directory"`
	TTL       string `mapstructure:"ttl"`
	PageTTL   string `mapstructure:"page_ttl"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".seoforge")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".seoforge-cache")

	// AI defaults
	viper.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.image_model", "imagen-3.0-generate-002")
	viper.SetDefault("ai.gemini.timeout", "120s")

	// Search defaults
	viper.SetDefault("search.default_provider", "serpapi")
	viper.SetDefault("search.max_results", 10)
	viper.SetDefault("search.locale", "en")

	// WordPress defaults
	viper.SetDefault("wordpress.default_status", "draft")

	// Pipeline defaults
	viper.SetDefault("pipeline.concurrency", 5)
	viper.SetDefault("pipeline.min_internal_links", 8)
	viper.SetDefault("pipeline.max_retries", 5)
	viper.SetDefault("pipeline.retry_base_delay", "5s")
	viper.SetDefault("pipeline.max_videos", 2)
	viper.SetDefault("pipeline.image_count", 3)

	// Reference defaults
	viper.SetDefault("references.min_relevance", 5)
	viper.SetDefault("references.max_links", 5)
	viper.SetDefault("references.spam_domains", []string{
		"pinterest.com", "quora.com", "reddit.com", "facebook.com",
	})

	// Cache defaults
	viper.SetDefault("cache.directory", ".seoforge-cache")
	viper.SetDefault("cache.ttl", "1h")
	viper.SetDefault("cache.page_ttl", "168h")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("search.providers.serpapi.api_key", []string{
		"SERPAPI_API_KEY",
		"SERPAPI_KEY",
	})

	bindEnvKeys("wordpress.base_url", []string{
		"WORDPRESS_BASE_URL",
		"WP_BASE_URL",
	})

	bindEnvKeys("wordpress.username", []string{
		"WORDPRESS_USERNAME",
		"WP_USERNAME",
	})

	bindEnvKeys("wordpress.application_password", []string{
		"WORDPRESS_APP_PASSWORD",
		"WP_APP_PASSWORD",
	})

	bindEnvKeys("site.url", []string{
		"SITE_URL",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"SEOFORGE_DEBUG",
	})

	bindEnvKeys("search.default_provider", []string{
		"SEARCH_PROVIDER",
		"DEFAULT_SEARCH_PROVIDER",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	if config.Cache.Directory != "" {
		config.Cache.Directory = expandPath(config.Cache.Directory)
	}
	config.WordPress.BaseURL = strings.TrimRight(config.WordPress.BaseURL, "/")
	config.Site.URL = strings.TrimRight(config.Site.URL, "/")

	durations := map[string]string{
		"ai.gemini.timeout":         config.AI.Gemini.Timeout,
		"pipeline.retry_base_delay": config.Pipeline.RetryBaseDelay,
		"cache.ttl":                 config.Cache.TTL,
		"cache.page_ttl":            config.Cache.PageTTL,
	}
	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	if config.AI.Gemini.APIKey == "" {
		errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
	}

	if config.Search.DefaultProvider != "" {
		switch config.Search.DefaultProvider {
		case "serpapi":
			if config.Search.Providers.SerpAPI.APIKey == "" {
				errors = append(errors, "SerpAPI requires API key. Set SERPAPI_API_KEY environment variable")
			}
		case "mock":
			// No validation needed
		default:
			errors = append(errors, fmt.Sprintf("Unknown search provider: %s. Supported: serpapi, mock", config.Search.DefaultProvider))
		}
	}

	// WordPress is optional, but once any credential is set all three are required
	wp := config.WordPress
	if wp.BaseURL != "" || wp.Username != "" || wp.ApplicationPassword != "" {
		if wp.BaseURL == "" {
			errors = append(errors, "WordPress base URL is required when publishing is configured")
		}
		if wp.Username == "" {
			errors = append(errors, "WordPress username is required when publishing is configured")
		}
		if wp.ApplicationPassword == "" {
			errors = append(errors, "WordPress application password is required when publishing is configured")
		}
	}

	if config.Pipeline.Concurrency < 1 {
		errors = append(errors, "pipeline.concurrency must be at least 1")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Convenience getters for commonly used configuration values
func GetApp() App               { return Get().App }
func GetAI() AI                 { return Get().AI }
func GetSearch() Search         { return Get().Search }
func GetWordPress() WordPress   { return Get().WordPress }
func GetSite() Site             { return Get().Site }
func GetPipeline() Pipeline     { return Get().Pipeline }
func GetReferences() References { return Get().References }
func GetCacheConfig() Cache     { return Get().Cache }
func GetLogging() Logging       { return Get().Logging }

// Specific convenience getters for frequently accessed values
func GetGeminiAPIKey() string   { return Get().AI.Gemini.APIKey }
func GetGeminiModel() string    { return Get().AI.Gemini.Model }
func GetSerpAPIKey() string     { return Get().Search.Providers.SerpAPI.APIKey }
func GetSearchProvider() string { return Get().Search.DefaultProvider }
func GetDataDir() string        { return Get().App.DataDir }
func IsDebugMode() bool         { return Get().App.Debug }

// CacheTTL returns the parsed response cache TTL.
func CacheTTL() time.Duration {
	d, err := time.ParseDuration(Get().Cache.TTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// PageTTL returns the parsed crawled-page freshness window.
func PageTTL() time.Duration {
	d, err := time.ParseDuration(Get().Cache.PageTTL)
	if err != nil {
		return 168 * time.Hour
	}
	return d
}

// RetryBaseDelay returns the parsed retry base delay.
func RetryBaseDelay() time.Duration {
	d, err := time.ParseDuration(Get().Pipeline.RetryBaseDelay)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
