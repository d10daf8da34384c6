// Package sitemap discovers and crawls the pages of a target site. The
// resulting inventory feeds the link-integrity subsystem as read-only
// link targets and supplies source material for rewrite runs.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"seoforge/internal/batch"
	"seoforge/internal/core"
	"seoforge/internal/fetch"
	"seoforge/internal/logger"
)

// stalenessWindow marks pages unmodified for this long as stale.
const stalenessWindow = 365 * 24 * time.Hour

// maxNestedSitemaps bounds recursion into sitemap index files.
const maxNestedSitemaps = 10

type urlSet struct {
	URLs []struct {
		Loc     string `xml:"loc"`
		LastMod string `xml:"lastmod"`
	} `xml:"url"`
}

type sitemapIndex struct {
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

// Crawler discovers and fetches site pages.
type Crawler struct {
	fetcher *fetch.Fetcher
}

// NewCrawler creates a Crawler.
func NewCrawler() *Crawler {
	return &Crawler{fetcher: fetch.New()}
}

// Discover fetches a sitemap (or sitemap index) and returns the page
// inventory, without page content. Nested indexes are followed; each
// sitemap URL is visited at most once so cyclic indexes terminate.
func (c *Crawler) Discover(ctx context.Context, sitemapURL string, onProgress fetch.ProgressFunc) ([]core.SitemapPage, error) {
	return c.discover(ctx, sitemapURL, onProgress, map[string]bool{})
}

func (c *Crawler) discover(ctx context.Context, sitemapURL string, onProgress fetch.ProgressFunc, visited map[string]bool) ([]core.SitemapPage, error) {
	if visited[sitemapURL] {
		return nil, fmt.Errorf("sitemap %s already visited", sitemapURL)
	}
	visited[sitemapURL] = true

	resp, err := c.fetcher.Fetch(ctx, sitemapURL, fetch.Options{}, onProgress)
	if err != nil {
		return nil, fmt.Errorf("sitemap fetch failed: %w", err)
	}

	var index sitemapIndex
	if xml.Unmarshal(resp.Body, &index) == nil && len(index.Sitemaps) > 0 {
		var pages []core.SitemapPage
		for i, nested := range index.Sitemaps {
			if i >= maxNestedSitemaps {
				logger.Warn("sitemap index truncated", map[string]any{"limit": maxNestedSitemaps})
				break
			}
			nestedPages, err := c.discover(ctx, nested.Loc, onProgress, visited)
			if err != nil {
				logger.Warn("nested sitemap skipped", map[string]any{"url": nested.Loc, "error": err.Error()})
				continue
			}
			pages = append(pages, nestedPages...)
		}
		return pages, nil
	}

	var set urlSet
	if err := xml.Unmarshal(resp.Body, &set); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap XML: %w", err)
	}
	if len(set.URLs) == 0 {
		return nil, fmt.Errorf("sitemap at %s contains no URLs", sitemapURL)
	}

	pages := make([]core.SitemapPage, 0, len(set.URLs))
	for _, u := range set.URLs {
		page := core.SitemapPage{
			URL:  u.Loc,
			Slug: SlugFromURL(u.Loc),
		}
		if u.LastMod != "" {
			if mod, err := time.Parse("2006-01-02", u.LastMod[:min(10, len(u.LastMod))]); err == nil {
				page.Stale = time.Since(mod) > stalenessWindow
			}
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// Crawl fetches page content for the inventory with bounded concurrency,
// filling in title, text, health score, and update priority in place.
// Per-page failures are recorded on the page and never abort the batch.
func (c *Crawler) Crawl(ctx context.Context, pages []core.SitemapPage, concurrency int, onProgress batch.ProgressFunc, shouldStop batch.StopFunc) {
	indexes := make([]int, len(pages))
	for i := range indexes {
		indexes[i] = i
	}

	batch.Run(ctx, indexes, func(ctx context.Context, i int) error {
		page := &pages[i]
		resp, err := c.fetcher.Fetch(ctx, page.URL, fetch.Options{}, nil)
		if err != nil {
			logger.Warn("page crawl failed", map[string]any{"url": page.URL, "error": err.Error()})
			page.UpdatePriority = "high"
			return err
		}

		title, text := extractContent(string(resp.Body))
		page.Title = title
		page.CrawledText = text
		page.HealthScore = healthScore(title, text)
		page.UpdatePriority = updatePriority(page.HealthScore, page.Stale)
		page.LastCrawled = time.Now().UTC()
		return nil
	}, concurrency, onProgress, shouldStop)
}

// extractContent pulls the title and main text out of a page, trying
// semantic content containers before falling back to the whole body.
func extractContent(html string) (string, string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", ""
	}

	title := strings.TrimSpace(doc.Find("head title").First().Text())
	if title == "" {
		title, _ = doc.Find(`meta[property="og:title"]`).Attr("content")
		title = strings.TrimSpace(title)
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript").Remove()

	var builder strings.Builder
	for _, selector := range []string{"article", "main", "[role='main']", ".entry-content", ".post-content", "#content"} {
		doc.Find(selector).First().Find("p, h1, h2, h3, h4, li, blockquote").Each(func(_ int, s *goquery.Selection) {
			builder.WriteString(strings.TrimSpace(s.Text()))
			builder.WriteString("\n")
		})
		if builder.Len() > 0 {
			break
		}
	}
	if builder.Len() == 0 {
		doc.Find("body").Find("p, h1, h2, h3, h4, li").Each(func(_ int, s *goquery.Selection) {
			builder.WriteString(strings.TrimSpace(s.Text()))
			builder.WriteString("\n")
		})
	}

	return title, strings.TrimSpace(builder.String())
}

// healthScore rates a crawled page 0-100 from its title and body length.
func healthScore(title, text string) int {
	score := 0
	words := len(strings.Fields(text))
	switch {
	case words >= 1500:
		score += 60
	case words >= 800:
		score += 45
	case words >= 300:
		score += 25
	case words > 0:
		score += 10
	}
	if title != "" {
		score += 20
		if n := len(strings.Fields(title)); n >= 4 && n <= 14 {
			score += 10
		}
	}
	if strings.Contains(text, "\n") {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}

func updatePriority(health int, stale bool) string {
	switch {
	case health < 40 || (stale && health < 60):
		return "high"
	case health < 70 || stale:
		return "medium"
	default:
		return "low"
	}
}

// SlugFromURL derives the page slug from the final path segment.
func SlugFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}
	segments := strings.Split(path, "/")
	return segments[len(segments)-1]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
