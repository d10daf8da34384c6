// Package wordpress implements the CMS publish capability against the
// WordPress REST API. All calls carry HTTP Basic credentials directly;
// the fetcher refuses to relay authenticated requests, so publishing
// either reaches the site or fails with a clear diagnostic.
package wordpress

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"seoforge/internal/fetch"
)

// PostRequest is the payload for creating or updating a post.
type PostRequest struct {
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	Content         string `json:"content"`
	Status          string `json:"status"` // draft or publish
	Excerpt         string `json:"excerpt,omitempty"`
	FeaturedMediaID int    `json:"featured_media,omitempty"`
}

// Post is the subset of the WordPress post resource the pipeline uses.
type Post struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
	Slug string `json:"slug"`
}

// Media is the subset of the WordPress media resource the pipeline uses.
type Media struct {
	ID           int    `json:"id"`
	SourceURL    string `json:"source_url"`
	MediaDetails struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"media_details"`
}

// Client talks to one WordPress site.
type Client struct {
	baseURL    string
	authHeader string
	fetcher    *fetch.Fetcher
}

// NewClient creates a client for the site at baseURL, authenticating
// with a username and application password.
func NewClient(baseURL, username, appPassword string) *Client {
	creds := base64.StdEncoding.EncodeToString([]byte(username + ":" + appPassword))
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authHeader: "Basic " + creds,
		fetcher:    fetch.New(),
	}
}

// CreateOrUpdatePost upserts a post by slug: an existing post with the
// same slug is updated in place, otherwise a new one is created.
func (c *Client) CreateOrUpdatePost(ctx context.Context, req PostRequest) (*Post, error) {
	if req.Status == "" {
		req.Status = "draft"
	}

	existing, err := c.findPostBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/wp-json/wp/v2/posts"
	if existing != nil {
		endpoint = fmt.Sprintf("%s/%d", endpoint, existing.ID)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode post: %w", err)
	}

	resp, err := c.request(ctx, http.MethodPost, endpoint, body, "application/json", "")
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, apiError("post save", resp)
	}

	var post Post
	if err := json.Unmarshal(resp.Body, &post); err != nil {
		return nil, fmt.Errorf("failed to decode post response: %w", err)
	}
	return &post, nil
}

// UploadMedia uploads raw image bytes and returns the created media
// resource.
func (c *Client) UploadMedia(ctx context.Context, data []byte, mimeType, filename string) (*Media, error) {
	endpoint := c.baseURL + "/wp-json/wp/v2/media"

	resp, err := c.request(ctx, http.MethodPost, endpoint, data, mimeType,
		fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, apiError("media upload", resp)
	}

	var media Media
	if err := json.Unmarshal(resp.Body, &media); err != nil {
		return nil, fmt.Errorf("failed to decode media response: %w", err)
	}
	return &media, nil
}

// findPostBySlug returns the post with the given slug, or nil when none
// exists.
func (c *Client) findPostBySlug(ctx context.Context, slug string) (*Post, error) {
	if slug == "" {
		return nil, nil
	}
	endpoint := c.baseURL + "/wp-json/wp/v2/posts?slug=" + url.QueryEscape(slug) + "&status=any"

	resp, err := c.request(ctx, http.MethodGet, endpoint, nil, "", "")
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, apiError("post lookup", resp)
	}

	var posts []Post
	if err := json.Unmarshal(resp.Body, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode post list: %w", err)
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return &posts[0], nil
}

func (c *Client) request(ctx context.Context, method, endpoint string, body []byte, contentType, disposition string) (*fetch.Response, error) {
	header := http.Header{}
	header.Set("Authorization", c.authHeader)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	if disposition != "" {
		header.Set("Content-Disposition", disposition)
	}

	return c.fetcher.Fetch(ctx, endpoint, fetch.Options{
		Method:   method,
		Header:   header,
		Body:     body,
		APIAware: true,
	}, nil)
}

func apiError(op string, resp *fetch.Response) error {
	msg := string(resp.Body)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return fmt.Errorf("wordpress %s failed with status %d: %s", op, resp.StatusCode, msg)
}
