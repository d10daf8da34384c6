package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestNewProviderFactory(t *testing.T) {
	if _, err := NewProvider(ProviderTypeSerpAPI, map[string]string{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := NewProvider(ProviderType("bing"), nil); !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("expected ErrUnsupportedProvider, got %v", err)
	}
	p, err := NewProvider(ProviderTypeMock, nil)
	if err != nil || p.GetName() != "Mock" {
		t.Errorf("mock provider not constructed: %v", err)
	}
}

func TestMockProviderShapes(t *testing.T) {
	p := NewMockProvider()
	results, err := p.Search(context.Background(), "solar panel ROI", Config{MaxResults: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results.Organic) != 5 {
		t.Errorf("expected 5 organic results, got %d", len(results.Organic))
	}
	if len(results.PeopleAlsoAsk) == 0 || len(results.RelatedSearches) == 0 {
		t.Error("expected PAA and related searches to be populated")
	}
}

func TestSerpAPIParsing(t *testing.T) {
	payload := `{
		"organic_results": [
			{"position": 1, "title": "Solar ROI", "link": "https://www.solarsite.com/roi", "snippet": "Payback in 8 years."},
			{"position": 2, "title": "Panel Costs", "link": "https://costs.example.org/panels", "snippet": "Prices fell 30%."}
		],
		"related_questions": [{"question": "How long do panels last?"}],
		"related_searches": [{"query": "solar payback calculator"}]
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Error("api key not forwarded")
		}
		w.Write([]byte(payload))
	}))
	defer server.Close()

	p := NewSerpAPIProvider("test-key")
	p.endpoint = server.URL

	results, err := p.Search(context.Background(), "solar panel ROI", Config{MaxResults: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results.Organic) != 2 {
		t.Fatalf("expected 2 organic results, got %d", len(results.Organic))
	}
	if results.Organic[0].Domain != "solarsite.com" {
		t.Errorf("www prefix should be stripped, got %q", results.Organic[0].Domain)
	}
	if results.Organic[0].Rank != 1 || results.Organic[1].Rank != 2 {
		t.Error("ranks not preserved")
	}
	if len(results.PeopleAlsoAsk) != 1 || results.PeopleAlsoAsk[0] != "How long do panels last?" {
		t.Errorf("PAA not parsed: %v", results.PeopleAlsoAsk)
	}
	if len(results.RelatedSearches) != 1 {
		t.Errorf("related searches not parsed: %v", results.RelatedSearches)
	}
}

func TestSerpAPINoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"organic_results": []}`))
	}))
	defer server.Close()

	p := NewSerpAPIProvider("test-key")
	p.endpoint = server.URL

	if _, err := p.Search(context.Background(), "empty", Config{}); !errors.Is(err, ErrNoResults) {
		t.Errorf("expected ErrNoResults, got %v", err)
	}
}

func TestSerpAPIConcurrentSearches(t *testing.T) {
	payload := `{"organic_results": [{"position": 1, "title": "Solar ROI", "link": "https://example.com/roi", "snippet": "s"}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	p := NewSerpAPIProvider("test-key")
	p.endpoint = server.URL
	p.rateLimit = 5 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Search(context.Background(), "solar", Config{}); err != nil {
				t.Errorf("concurrent search failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestSerpAPIErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "Invalid API key"}`))
	}))
	defer server.Close()

	p := NewSerpAPIProvider("bad-key")
	p.endpoint = server.URL

	_, err := p.Search(context.Background(), "anything", Config{})
	if err == nil {
		t.Fatal("expected error from error payload")
	}
}
