package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"seoforge/internal/core"
	"seoforge/internal/fetch"
)

// SerpAPIProvider implements Provider using SerpAPI's Google engine.
type SerpAPIProvider struct {
	apiKey    string
	fetcher   *fetch.Fetcher
	endpoint  string
	rateLimit time.Duration

	mu       sync.Mutex // guards lastCall; one provider is shared across workers
	lastCall time.Time
}

// NewSerpAPIProvider creates a new SerpAPI search provider.
func NewSerpAPIProvider(apiKey string) *SerpAPIProvider {
	return &SerpAPIProvider{
		apiKey:    apiKey,
		fetcher:   fetch.New(),
		endpoint:  "https://serpapi.com/search",
		rateLimit: time.Second,
	}
}

// GetName returns the name of this provider.
func (s *SerpAPIProvider) GetName() string {
	return "SerpAPI"
}

// serpAPIResponse mirrors the subset of the SerpAPI payload we consume.
type serpAPIResponse struct {
	OrganicResults []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
	} `json:"organic_results"`
	RelatedQuestions []struct {
		Question string `json:"question"`
	} `json:"related_questions"`
	RelatedSearches []struct {
		Query string `json:"query"`
	} `json:"related_searches"`
	Error string `json:"error"`
}

// Search performs a search and normalizes the response into the
// pipeline's SearchResults shape.
func (s *SerpAPIProvider) Search(ctx context.Context, query string, config Config) (*core.SearchResults, error) {
	// Reserve the next send slot under the lock, then wait outside it so
	// concurrent callers queue one second apart instead of serializing
	// their whole requests.
	s.mu.Lock()
	slot := s.lastCall.Add(s.rateLimit)
	if now := time.Now(); slot.Before(now) {
		slot = now
	}
	s.lastCall = slot
	s.mu.Unlock()
	if wait := time.Until(slot); wait > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("engine", "google")
	params.Set("api_key", s.apiKey)
	if config.MaxResults > 0 {
		params.Set("num", strconv.Itoa(config.MaxResults))
	}
	if config.Locale != "" {
		params.Set("hl", config.Locale)
	}

	resp, err := s.fetcher.Fetch(ctx, s.endpoint+"?"+params.Encode(), fetch.Options{APIAware: true}, nil)
	if err != nil {
		return nil, fmt.Errorf("SerpAPI request failed: %w", err)
	}

	var payload serpAPIResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode SerpAPI response: %w", err)
	}
	if payload.Error != "" {
		return nil, fmt.Errorf("SerpAPI error: %s", payload.Error)
	}
	if len(payload.OrganicResults) == 0 {
		return nil, ErrNoResults
	}

	results := &core.SearchResults{}
	for i, r := range payload.OrganicResults {
		if config.MaxResults > 0 && i >= config.MaxResults {
			break
		}
		rank := r.Position
		if rank == 0 {
			rank = i + 1
		}
		results.Organic = append(results.Organic, core.OrganicResult{
			URL:     r.Link,
			Title:   r.Title,
			Snippet: r.Snippet,
			Domain:  domainOf(r.Link),
			Rank:    rank,
		})
	}
	for _, q := range payload.RelatedQuestions {
		if q.Question != "" {
			results.PeopleAlsoAsk = append(results.PeopleAlsoAsk, q.Question)
		}
	}
	for _, r := range payload.RelatedSearches {
		if r.Query != "" {
			results.RelatedSearches = append(results.RelatedSearches, r.Query)
		}
	}
	return results, nil
}

func domainOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}
