package wordpress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNewPost(t *testing.T) {
	var sawAuth, sawLookup bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Basic ") {
			t.Error("missing basic auth header")
		}
		sawAuth = true

		switch {
		case r.Method == http.MethodGet && strings.Contains(r.URL.RawQuery, "slug="):
			sawLookup = true
			w.Write([]byte("[]"))
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/posts"):
			var req PostRequest
			json.NewDecoder(r.Body).Decode(&req)
			assert.Equal(t, "solar-panel-roi", req.Slug)
			assert.Equal(t, "draft", req.Status)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(Post{ID: 42, Link: "https://site.test/solar-panel-roi", Slug: req.Slug})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "admin", "app-password")
	post, err := client.CreateOrUpdatePost(context.Background(), PostRequest{
		Title:   "Solar Panel ROI",
		Slug:    "solar-panel-roi",
		Content: "<p>body</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, 42, post.ID)
	assert.Equal(t, "https://site.test/solar-panel-roi", post.Link)
	assert.True(t, sawAuth)
	assert.True(t, sawLookup, "upsert must look up the slug first")
}

func TestUpdateExistingPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode([]Post{{ID: 7, Slug: "existing-article"}})
		case r.Method == http.MethodPost:
			assert.True(t, strings.HasSuffix(r.URL.Path, "/posts/7"), "update must target the existing post ID, got %s", r.URL.Path)
			json.NewEncoder(w).Encode(Post{ID: 7, Link: "https://site.test/existing-article"})
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "admin", "pw")
	post, err := client.CreateOrUpdatePost(context.Background(), PostRequest{Slug: "existing-article", Title: "Updated"})
	require.NoError(t, err)
	assert.Equal(t, 7, post.ID)
}

func TestUploadMedia(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		assert.Contains(t, r.Header.Get("Content-Disposition"), `filename="hero.jpg"`)

		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		assert.Equal(t, payload, body)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 99, "source_url": "https://site.test/wp-content/uploads/hero.jpg", "media_details": {"width": 1600, "height": 900}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "admin", "pw")
	media, err := client.UploadMedia(context.Background(), payload, "image/jpeg", "hero.jpg")
	require.NoError(t, err)
	assert.Equal(t, 99, media.ID)
	assert.Equal(t, "https://site.test/wp-content/uploads/hero.jpg", media.SourceURL)
	assert.Equal(t, 1600, media.MediaDetails.Width)
}

func TestAPIErrorTruncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte("[]"))
			return
		}
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"code":"rest_cannot_create","message":"` + strings.Repeat("x", 500) + `"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "admin", "pw")
	_, err := client.CreateOrUpdatePost(context.Background(), PostRequest{Slug: "s", Title: "T"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Less(t, len(err.Error()), 300, "error body must be truncated")
}
