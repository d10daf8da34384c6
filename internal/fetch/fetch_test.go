package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDirectFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	f := NewWithRelays(nil)
	resp, err := f.Fetch(context.Background(), server.URL, Options{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.OK() {
		t.Errorf("expected 2xx, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Body), "ok") {
		t.Errorf("body not read: %q", resp.Body)
	}
}

func TestRelayFallback(t *testing.T) {
	var relayHits int
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		relayHits++
		target := r.URL.Query().Get("url")
		if target == "" {
			t.Errorf("relay did not receive target URL")
		}
		w.Write([]byte("relayed content"))
	}))
	defer relay.Close()

	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer direct.Close()

	f := NewWithRelays([]string{relay.URL + "/?url="})
	var statuses []string
	resp, err := f.Fetch(context.Background(), direct.URL, Options{}, func(s string) {
		statuses = append(statuses, s)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Body) != "relayed content" {
		t.Errorf("expected relay body, got %q", resp.Body)
	}
	if relayHits != 1 {
		t.Errorf("expected one relay hit, got %d", relayHits)
	}
	if len(statuses) == 0 {
		t.Error("expected progress callbacks")
	}
}

func TestAuthenticatedRequestNeverRelayed(t *testing.T) {
	relayCalled := false
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		relayCalled = true
	}))
	defer relay.Close()

	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer direct.Close()

	header := http.Header{}
	header.Set("Authorization", "Basic dXNlcjpwYXNz")

	f := NewWithRelays([]string{relay.URL + "/?url="})
	_, err := f.Fetch(context.Background(), direct.URL, Options{Header: header}, nil)
	if err == nil {
		t.Fatal("expected terminal error for failed authenticated request")
	}
	if relayCalled {
		t.Error("authenticated request must not be sent through a relay")
	}
	if !strings.Contains(err.Error(), "cannot be relayed") {
		t.Errorf("error should explain why relays were skipped: %v", err)
	}
}

func TestAPIAwareAcceptsNon5xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	f := NewWithRelays(nil)
	resp, err := f.Fetch(context.Background(), server.URL, Options{APIAware: true}, nil)
	if err != nil {
		t.Fatalf("API-aware fetch should surface 404 as a response: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestAllAttemptsFailAggregatesDiagnostics(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer down.Close()

	f := NewWithRelays([]string{down.URL + "/?url="})
	_, err := f.Fetch(context.Background(), down.URL, Options{}, nil)
	if err == nil {
		t.Fatal("expected error when every attempt fails")
	}
	msg := err.Error()
	for _, want := range []string{"firewall", "direct", "status 502"} {
		if !strings.Contains(msg, want) {
			t.Errorf("diagnostic message missing %q: %s", want, msg)
		}
	}
}

func TestPerAttemptTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()

	f := NewWithRelays(nil)
	start := time.Now()
	_, err := f.Fetch(context.Background(), slow.URL, Options{Timeout: 50 * time.Millisecond}, nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}
}

func TestPostBodyForwarded(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := make([]byte, r.ContentLength)
		r.Body.Read(data)
		received = string(data)
	}))
	defer server.Close()

	f := NewWithRelays(nil)
	_, err := f.Fetch(context.Background(), server.URL, Options{
		Method: http.MethodPost,
		Body:   []byte(`{"title":"Post"}`),
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received != `{"title":"Post"}` {
		t.Errorf("body not forwarded, got %q", received)
	}
}

func TestRelayURLEncoding(t *testing.T) {
	var got string
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("url")
		w.Write([]byte("ok"))
	}))
	defer relay.Close()

	// An unroutable target forces the relay path; query parameters must
	// survive the round trip through the relay's url parameter.
	target := "http://127.0.0.1:1/sitemap.xml?page=2&size=10"
	f := NewWithRelays([]string{relay.URL + "/?url="})
	_, err := f.Fetch(context.Background(), target, Options{}, nil)
	if err != nil {
		t.Fatalf("relay should have answered: %v", err)
	}
	if got != target {
		t.Errorf("relay received %q, want %q", got, target)
	}
}
