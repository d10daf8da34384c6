// Package fetch performs HTTP requests with direct-connection-first,
// relay-fallback behavior. Every network-touching component in the
// pipeline goes through this fetcher so timeout and diagnostic behavior
// stay uniform.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a general unauthenticated fetch.
	DefaultTimeout = 20 * time.Second
	// AuthenticatedTimeout bounds authenticated API calls, which may be
	// slower (media uploads, post creation).
	AuthenticatedTimeout = 30 * time.Second
)

// defaultRelays is the ordered list of public relay endpoints tried after
// a direct connection fails. Each takes the target URL as a query value
// appended to the endpoint.
var defaultRelays = []string{
	"https://api.allorigins.win/raw?url=",
	"https://corsproxy.io/?",
	"https://api.codetabs.com/v1/proxy?quest=",
}

// ProgressFunc receives a human-readable status line after each attempt.
// It is the fetcher's only observability hook.
type ProgressFunc func(status string)

// Options configures a single fetch.
type Options struct {
	Method  string        // Defaults to GET
	Header  http.Header   // Authorization here forces direct-only mode
	Body    []byte        // Request body, if any
	Timeout time.Duration // Per-attempt; zero picks the appropriate default
	// APIAware treats any non-5xx relay response as a win, so callers
	// that interpret error payloads themselves still get them.
	APIAware bool
}

// Response is a fully-read HTTP response. The body is buffered so the
// per-attempt timeout covers the entire transfer.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the response status is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Fetcher performs resilient HTTP fetches. The zero value is not usable;
// construct with New.
type Fetcher struct {
	client *http.Client
	relays []string
}

// New creates a Fetcher using the standard relay list.
func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{},
		relays: defaultRelays,
	}
}

// NewWithRelays creates a Fetcher with a custom relay list; an empty list
// disables fallback entirely.
func NewWithRelays(relays []string) *Fetcher {
	return &Fetcher{client: &http.Client{}, relays: relays}
}

// Fetch attempts a direct connection first and falls back through the
// relay list for unauthenticated requests. It fails only after every
// attempt has been exhausted, returning an error that embeds the last
// underlying failure plus actionable diagnostics.
func (f *Fetcher) Fetch(ctx context.Context, target string, opts Options, onProgress ProgressFunc) (*Response, error) {
	if onProgress == nil {
		onProgress = func(string) {}
	}
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}

	authenticated := opts.Header.Get("Authorization") != ""
	timeout := opts.Timeout
	if timeout == 0 {
		if authenticated {
			timeout = AuthenticatedTimeout
		} else {
			timeout = DefaultTimeout
		}
	}

	var failures []string

	resp, err := f.attempt(ctx, target, opts, timeout)
	if err == nil && resp.OK() {
		onProgress("Connected directly to " + hostOf(target))
		return resp, nil
	}
	if err == nil && opts.APIAware && resp.StatusCode < 500 {
		onProgress(fmt.Sprintf("Direct connection returned status %d", resp.StatusCode))
		return resp, nil
	}
	failures = append(failures, describeFailure("direct", resp, err))
	onProgress("Direct connection failed, " + failures[len(failures)-1])

	if authenticated {
		// Relays strip Authorization headers, so falling back would only
		// produce confusing 401s. Report the direct failure as terminal.
		return nil, fmt.Errorf(
			"authenticated request to %s failed and cannot be relayed (relays drop credentials): %s. "+
				"Likely causes: CORS restrictions, a firewall blocking the host, or invalid credentials",
			target, failures[0])
	}

	for _, relay := range f.relays {
		relayURL := relay + url.QueryEscape(target)
		onProgress("Trying relay " + hostOf(relay) + "...")

		resp, err := f.attempt(ctx, relayURL, opts, timeout)
		if err == nil && (resp.OK() || (opts.APIAware && resp.StatusCode < 500)) {
			onProgress("Relay " + hostOf(relay) + " succeeded")
			return resp, nil
		}
		failures = append(failures, describeFailure(hostOf(relay), resp, err))

		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf(
		"all fetch attempts for %s failed (%s). Likely causes: a firewall is blocking the host, "+
			"the resource is private, or the URL is malformed",
		target, strings.Join(failures, "; "))
}

// attempt performs one request with its own timeout and a fully-read body.
func (f *Fetcher) attempt(ctx context.Context, target string, opts Options, timeout time.Duration) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, opts.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	for k, values := range opts.Header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func describeFailure(via string, resp *Response, err error) string {
	if err != nil {
		return fmt.Sprintf("%s: %v", via, err)
	}
	return fmt.Sprintf("%s: status %d", via, resp.StatusCode)
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
