package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"seoforge/internal/config"
	"seoforge/internal/logger"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "seoforge",
		Short: "seoforge turns keywords into published, SEO-annotated articles",
		Long: `seoforge is a content-generation pipeline: given a topic or keyword it
researches the SERP landscape, plans an outline, writes and validates an
internally-linked HTML article with structured data, and publishes it to
WordPress.

Typical flow:
  seoforge crawl https://example.com/sitemap.xml   # build the link inventory
  seoforge generate "solar panel ROI"              # generate one article
  seoforge generate --file keywords.txt            # generate a batch
  seoforge publish                                 # push finished drafts`,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.seoforge.yaml)")

	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewCrawlCmd())
	rootCmd.AddCommand(NewPublishCmd())
	rootCmd.AddCommand(NewCacheCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Logging.Level)
}
