package handlers

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"seoforge/internal/config"
	"seoforge/internal/core"
	"seoforge/internal/logger"
	"seoforge/internal/quality"
	"seoforge/internal/sitemap"
)

// NewCrawlCmd creates the sitemap crawl command
func NewCrawlCmd() *cobra.Command {
	crawlCmd := &cobra.Command{
		Use:   "crawl [sitemap-url]",
		Short: "Crawl a sitemap and build the internal-link inventory",
		Long: `Crawl discovers every page in a sitemap (following nested indexes),
fetches each page's content, and scores content health. The resulting
inventory feeds internal linking during generation and rewrite planning.

Examples:
  seoforge crawl https://example.com/sitemap.xml
  seoforge crawl --analyze          # report on the stored inventory`,
		Run: func(cmd *cobra.Command, args []string) {
			analyze, _ := cmd.Flags().GetBool("analyze")
			concurrency, _ := cmd.Flags().GetInt("concurrency")

			sitemapURL := config.GetSite().SitemapURL
			if len(args) > 0 {
				sitemapURL = args[0]
			}

			var err error
			if analyze {
				err = runAnalyze()
			} else {
				err = runCrawl(cmd.Context(), sitemapURL, concurrency)
			}
			if err != nil {
				logger.Error("crawl failed", err, nil)
				os.Exit(1)
			}
		},
	}

	crawlCmd.Flags().Bool("analyze", false, "Analyze the stored inventory instead of crawling")
	crawlCmd.Flags().Int("concurrency", 0, "Parallel page fetches (default from config)")

	return crawlCmd
}

func runCrawl(ctx context.Context, sitemapURL string, concurrency int) error {
	if sitemapURL == "" {
		return fmt.Errorf("no sitemap URL: pass one as an argument or set site.sitemap_url")
	}
	if concurrency <= 0 {
		concurrency = config.GetPipeline().Concurrency
	}

	crawler := sitemap.NewCrawler()

	fmt.Printf("Discovering pages from %s...\n", sitemapURL)
	pages, err := crawler.Discover(ctx, sitemapURL, func(status string) {
		logger.Debug("sitemap fetch", map[string]any{"status": status})
	})
	if err != nil {
		return fmt.Errorf("sitemap discovery failed: %w", err)
	}
	fmt.Printf("Found %d pages, crawling content...\n", len(pages))

	crawler.Crawl(ctx, pages, concurrency, func(completed, total int) {
		if completed%10 == 0 || completed == total {
			fmt.Printf("  crawled %d/%d\n", completed, total)
		}
	}, nil)

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SavePages(pages); err != nil {
		return fmt.Errorf("failed to save crawled pages: %w", err)
	}

	var high, medium, low int
	for _, p := range pages {
		switch p.UpdatePriority {
		case "high":
			high++
		case "medium":
			medium++
		default:
			low++
		}
	}
	fmt.Printf("\nSaved %d pages. Update priority: %d high / %d medium / %d low\n", len(pages), high, medium, low)
	return nil
}

// runAnalyze reports content health over the stored inventory, worst
// pages first, so rewrite work can be planned.
func runAnalyze() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	pages, err := s.GetPages(config.PageTTL())
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("no crawled pages in the store: run crawl first")
	}

	analyses := make([]core.ContentAnalysis, 0, len(pages))
	for _, page := range pages {
		analyses = append(analyses, analyzePage(page))
	}
	sort.Slice(analyses, func(i, j int) bool { return analyses[i].HealthScore < analyses[j].HealthScore })

	fmt.Printf("Content health for %d pages (worst first):\n\n", len(analyses))
	limit := len(analyses)
	if limit > 25 {
		limit = 25
	}
	for _, a := range analyses[:limit] {
		fmt.Printf("  [%3d] %-60s %d words, readability %.0f\n", a.HealthScore, a.URL, a.WordCount, a.Readability)
		for _, issue := range a.Issues {
			fmt.Printf("        - %s\n", issue)
		}
	}
	return nil
}

func analyzePage(page core.SitemapPage) core.ContentAnalysis {
	words := quality.CountWords(page.CrawledText)
	readability := quality.AnalyzeReadability(page.CrawledText)

	var issues, recommendations []string
	if words < quality.MinWordsStandard {
		issues = append(issues, fmt.Sprintf("thin content: %d words", words))
		recommendations = append(recommendations, "expand or consolidate with a related page")
	}
	if page.Title == "" {
		issues = append(issues, "missing title")
		recommendations = append(recommendations, "add a descriptive title")
	}
	if page.Stale {
		issues = append(issues, "not updated in over a year")
		recommendations = append(recommendations, "refresh statistics and republish")
	}
	if readability.Score > 0 && readability.Score < 30 {
		issues = append(issues, "very difficult to read")
		recommendations = append(recommendations, "shorten sentences and simplify vocabulary")
	}

	return core.ContentAnalysis{
		URL:             page.URL,
		HealthScore:     page.HealthScore,
		WordCount:       words,
		Readability:     readability.Score,
		Issues:          issues,
		Recommendations: recommendations,
		DateAnalyzed:    time.Now().UTC(),
	}
}
