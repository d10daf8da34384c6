package handlers

import (
	"context"
	"fmt"

	"seoforge/internal/cache"
	"seoforge/internal/config"
	"seoforge/internal/core"
	"seoforge/internal/llm"
	"seoforge/internal/pipeline"
	"seoforge/internal/retry"
	"seoforge/internal/search"
	"seoforge/internal/store"
	"seoforge/internal/wordpress"
)

func openStore() (*store.Store, error) {
	return store.NewStore(config.GetDataDir())
}

// buildPipeline assembles a pipeline from configuration. The crawled
// page inventory comes from the persistent store; a stale or empty
// inventory degrades internal linking rather than failing.
func buildPipeline(ctx context.Context, s *store.Store, onStatus pipeline.StatusFunc) (*pipeline.Pipeline, []core.SitemapPage, error) {
	cfg := config.Get()

	client, err := llm.NewClient(ctx, cfg.AI.Gemini.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	provider, err := search.NewProvider(
		search.ProviderType(cfg.Search.DefaultProvider),
		map[string]string{"api_key": cfg.Search.Providers.SerpAPI.APIKey},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create search provider: %w", err)
	}

	var publisher pipeline.Publisher
	if cfg.WordPress.BaseURL != "" {
		publisher = wordpress.NewClient(cfg.WordPress.BaseURL, cfg.WordPress.Username, cfg.WordPress.ApplicationPassword)
	}

	pages, err := s.GetPages(config.PageTTL())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load crawled pages: %w", err)
	}

	opts := pipeline.Options{
		SiteURL:          cfg.Site.URL,
		SiteName:         cfg.Site.Name,
		AuthorName:       cfg.Site.AuthorName,
		MinInternalLinks: cfg.Pipeline.MinInternalLinks,
		MaxVideos:        cfg.Pipeline.MaxVideos,
		ImageCount:       cfg.Pipeline.ImageCount,
		MinRelevance:     cfg.References.MinRelevance,
		MaxReferences:    cfg.References.MaxLinks,
		SpamDomains:      cfg.References.SpamDomains,
		Retry: retry.Config{
			MaxAttempts: cfg.Pipeline.MaxRetries,
			BaseDelay:   config.RetryBaseDelay(),
		},
		PostStatus: cfg.WordPress.DefaultStatus,
	}

	p := pipeline.New(client, client, provider, publisher, cache.New(config.CacheTTL()), pages, opts, onStatus)
	return p, pages, nil
}
