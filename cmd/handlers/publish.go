package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"seoforge/internal/config"
	"seoforge/internal/core"
	"seoforge/internal/logger"
)

// NewPublishCmd creates the bulk publish command
func NewPublishCmd() *cobra.Command {
	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish finished articles to WordPress",
		Long: `Publish pushes every stored article that finished generation to the
configured WordPress site. Posts are upserted by slug, so republishing
updates in place.`,
		Run: func(cmd *cobra.Command, args []string) {
			limit, _ := cmd.Flags().GetInt("limit")
			concurrency, _ := cmd.Flags().GetInt("concurrency")

			if err := runPublish(cmd.Context(), limit, concurrency); err != nil {
				logger.Error("publish failed", err, nil)
				os.Exit(1)
			}
		},
	}

	publishCmd.Flags().Int("limit", 50, "Maximum articles to publish")
	publishCmd.Flags().Int("concurrency", 0, "Parallel publishes (default from config)")

	return publishCmd
}

func runPublish(ctx context.Context, limit, concurrency int) error {
	if config.GetWordPress().BaseURL == "" {
		return fmt.Errorf("publishing is not configured: set wordpress.base_url, username, and application password")
	}
	if concurrency <= 0 {
		concurrency = config.GetPipeline().Concurrency
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	stored, err := s.ListArticles(limit)
	if err != nil {
		return err
	}

	var items []*core.ContentItem
	for i := range stored {
		if stored[i].Status == core.StatusDone && stored[i].Generated != nil {
			items = append(items, &stored[i])
		}
	}
	if len(items) == 0 {
		fmt.Println("No finished articles to publish.")
		return nil
	}

	p, _, err := buildPipeline(ctx, s, nil)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing %d article(s)...\n", len(items))
	p.PublishBatch(ctx, items, concurrency, func(completed, total int) {
		fmt.Printf("  published %d/%d\n", completed, total)
	})

	var failed int
	for _, item := range items {
		if item.Status == core.StatusError {
			failed++
			fmt.Printf("  ✗ %s: %s\n", item.Generated.Slug, item.StatusMessage)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d articles failed to publish", failed, len(items))
	}
	fmt.Println("All articles published.")
	return nil
}
