package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"seoforge/internal/logger"
)

// NewCacheCmd creates the cache management command
func NewCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the crawl and article store",
		Long:  `Inspect and clear the SQLite store holding crawled pages and generated articles.`,
	}

	cacheCmd.AddCommand(newCacheStatsCmd())
	cacheCmd.AddCommand(newCacheClearCmd())

	return cacheCmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store statistics",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runCacheStats(); err != nil {
				logger.Error("failed to get store stats", err, nil)
				os.Exit(1)
			}
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the store (removes all crawled pages and generated articles)",
		Run: func(cmd *cobra.Command, args []string) {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if err := runCacheClear(confirm); err != nil {
				logger.Error("failed to clear store", err, nil)
				os.Exit(1)
			}
		},
	}

	clearCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	return clearCmd
}

func runCacheStats() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.GetStats()
	if err != nil {
		return fmt.Errorf("failed to get store statistics: %w", err)
	}

	fmt.Println("Store statistics")
	fmt.Println("================")
	fmt.Printf("Crawled pages:      %d\n", stats.PageCount)
	fmt.Printf("Generated articles: %d\n", stats.ArticleCount)
	fmt.Printf("Store size:         %.2f MB\n", float64(stats.SizeBytes)/1024/1024)
	if !stats.LastUpdated.IsZero() {
		fmt.Printf("Last updated:       %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runCacheClear(confirm bool) error {
	if !confirm {
		fmt.Print("This removes all crawled pages and generated articles. Continue? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" && response != "yes" {
			fmt.Println("Clear cancelled")
			return nil
		}
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Clear(); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	fmt.Println("Store cleared")
	return nil
}
