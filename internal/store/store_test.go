package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoforge/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetPages(t *testing.T) {
	s := newTestStore(t)

	pages := []core.SitemapPage{
		{URL: "https://example.com/a", Slug: "a", Title: "Page A", HealthScore: 70, UpdatePriority: "medium", LastCrawled: time.Now().UTC()},
		{URL: "https://example.com/b", Slug: "b", Title: "Page B", HealthScore: 30, UpdatePriority: "high", Stale: true, LastCrawled: time.Now().UTC()},
	}
	require.NoError(t, s.SavePages(pages))

	got, err := s.GetPages(24 * time.Hour)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Page A", got[0].Title)
	assert.True(t, got[1].Stale)
}

func TestGetPagesExcludesExpired(t *testing.T) {
	s := newTestStore(t)

	pages := []core.SitemapPage{
		{URL: "https://example.com/fresh", Slug: "fresh", LastCrawled: time.Now().UTC()},
		{URL: "https://example.com/old", Slug: "old", LastCrawled: time.Now().UTC().Add(-48 * time.Hour)},
	}
	require.NoError(t, s.SavePages(pages))

	got, err := s.GetPages(24 * time.Hour)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Slug)
}

func TestSavePagesUpsert(t *testing.T) {
	s := newTestStore(t)

	page := core.SitemapPage{URL: "https://example.com/a", Slug: "a", Title: "Old", LastCrawled: time.Now().UTC()}
	require.NoError(t, s.SavePages([]core.SitemapPage{page}))

	page.Title = "New"
	require.NoError(t, s.SavePages([]core.SitemapPage{page}))

	got, err := s.GetPages(time.Hour)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "New", got[0].Title)
}

func TestSaveAndGetArticle(t *testing.T) {
	s := newTestStore(t)

	item := core.ContentItem{
		ID:     "item-1",
		Title:  "best running shoes",
		Kind:   core.KindStandard,
		Status: core.StatusDone,
		Generated: &core.GeneratedContent{
			Title:         "The Best Running Shoes of 2026",
			Slug:          "best-running-shoes",
			Content:       "<p>body</p>",
			WordCount:     2400,
			DateGenerated: time.Now().UTC(),
		},
	}
	require.NoError(t, s.SaveArticle(item))

	got, err := s.GetArticle("item-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, core.StatusDone, got.Status)
	require.NotNil(t, got.Generated)
	assert.Equal(t, "best-running-shoes", got.Generated.Slug)
	assert.Equal(t, 2400, got.Generated.WordCount)
}

func TestGetArticleMissing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetArticle("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListArticlesOrder(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().UTC()
	for i, id := range []string{"first", "second", "third"} {
		require.NoError(t, s.SaveArticle(core.ContentItem{
			ID:     id,
			Title:  id,
			Kind:   core.KindStandard,
			Status: core.StatusDone,
			Generated: &core.GeneratedContent{
				Slug:          id,
				DateGenerated: base.Add(time.Duration(i) * time.Minute),
			},
		}))
	}

	got, err := s.ListArticles(10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "third", got[0].ID)
	assert.Equal(t, "first", got[2].ID)
}

func TestStatsAndClear(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SavePages([]core.SitemapPage{{URL: "https://example.com/a", LastCrawled: time.Now().UTC()}}))
	require.NoError(t, s.SaveArticle(core.ContentItem{ID: "x", Status: core.StatusDone}))

	stats, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PageCount)
	assert.Equal(t, 1, stats.ArticleCount)
	assert.Greater(t, stats.SizeBytes, int64(0))

	require.NoError(t, s.Clear())

	stats, err = s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PageCount)
	assert.Equal(t, 0, stats.ArticleCount)
}
