// Package search provides the search-engine-results capability used by
// the keyword-research and reference-discovery stages.
package search

import (
	"context"

	"seoforge/internal/core"
)

// Provider is the unified interface for SERP providers.
type Provider interface {
	// Search returns organic results plus the "people also ask" and
	// related-search suggestions for a query.
	Search(ctx context.Context, query string, config Config) (*core.SearchResults, error)

	// GetName returns the provider name for logging.
	GetName() string
}

// Config holds per-request search configuration.
type Config struct {
	MaxResults int    // Maximum organic results to return
	Locale     string // Locale code (e.g. "en", "de")
}

// ProviderType identifies a provider implementation.
type ProviderType string

const (
	ProviderTypeSerpAPI ProviderType = "serpapi"
	ProviderTypeMock    ProviderType = "mock"
)

// NewProvider creates a search provider of the given type.
func NewProvider(providerType ProviderType, settings map[string]string) (Provider, error) {
	switch providerType {
	case ProviderTypeSerpAPI:
		apiKey, ok := settings["api_key"]
		if !ok || apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewSerpAPIProvider(apiKey), nil
	case ProviderTypeMock:
		return NewMockProvider(), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
