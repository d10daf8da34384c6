package search

import (
	"context"
	"fmt"

	"seoforge/internal/core"
)

// MockProvider implements Provider for testing purposes.
type MockProvider struct {
	name string
}

// NewMockProvider creates a new mock search provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{name: "Mock"}
}

// GetName returns the name of this provider.
func (m *MockProvider) GetName() string {
	return m.name
}

// Search returns deterministic results derived from the query.
func (m *MockProvider) Search(_ context.Context, query string, config Config) (*core.SearchResults, error) {
	max := config.MaxResults
	if max <= 0 {
		max = 3
	}

	results := &core.SearchResults{
		PeopleAlsoAsk: []string{
			fmt.Sprintf("What is %s?", query),
			fmt.Sprintf("How much does %s cost?", query),
			fmt.Sprintf("Is %s worth it?", query),
		},
		RelatedSearches: []string{
			query + " guide",
			query + " calculator",
		},
	}
	for i := 0; i < max; i++ {
		results.Organic = append(results.Organic, core.OrganicResult{
			URL:     fmt.Sprintf("https://example.com/%s-%d", slugify(query), i+1),
			Title:   fmt.Sprintf("%s result %d", query, i+1),
			Snippet: fmt.Sprintf("Mock snippet %d about %s.", i+1, query),
			Domain:  "example.com",
			Rank:    i + 1,
		})
	}
	return results, nil
}

func slugify(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ' || r == '-' || r == '_':
			out = append(out, '-')
		}
	}
	return string(out)
}
