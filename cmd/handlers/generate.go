package handlers

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"seoforge/internal/config"
	"seoforge/internal/core"
	"seoforge/internal/logger"
	"seoforge/internal/pipeline"
	"seoforge/internal/store"
	"seoforge/internal/tui"
)

// NewGenerateCmd creates the article generation command
func NewGenerateCmd() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate [keyword]",
		Short: "Generate one or more articles from keywords",
		Long: `Generate runs the full pipeline for each keyword: research, outline,
section writing, FAQ, reference discovery, imagery, and a finalize pass
that enforces internal-link and word-count invariants.

Examples:
  seoforge generate "solar panel ROI"
  seoforge generate "solar panel ROI" --kind pillar
  seoforge generate --file keywords.txt --concurrency 3`,
		Run: func(cmd *cobra.Command, args []string) {
			file, _ := cmd.Flags().GetString("file")
			kind, _ := cmd.Flags().GetString("kind")
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			plain, _ := cmd.Flags().GetBool("plain")

			if err := runGenerate(cmd.Context(), args, file, kind, concurrency, plain); err != nil {
				logger.Error("generate failed", err, nil)
				os.Exit(1)
			}
		},
	}

	generateCmd.Flags().String("file", "", "File with one keyword per line (# comments skipped)")
	generateCmd.Flags().String("kind", "standard", "Content kind: standard, pillar, cluster, link-optimizer")
	generateCmd.Flags().Int("concurrency", 0, "Parallel generations (default from config)")
	generateCmd.Flags().Bool("plain", false, "Log progress instead of the interactive view")

	return generateCmd
}

func runGenerate(ctx context.Context, args []string, file, kindStr string, concurrency int, plain bool) error {
	kind, err := parseKind(kindStr)
	if err != nil {
		return err
	}

	keywords, err := collectKeywords(args, file)
	if err != nil {
		return err
	}
	if len(keywords) == 0 {
		return fmt.Errorf("no keywords given: pass one as an argument or use --file")
	}

	if concurrency <= 0 {
		concurrency = config.GetPipeline().Concurrency
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	items := make([]*core.ContentItem, 0, len(keywords))
	for _, kw := range keywords {
		items = append(items, pipeline.NewItem(kw, kind))
	}

	if plain {
		return generatePlain(ctx, s, items, concurrency)
	}
	return generateWithTUI(ctx, s, items, concurrency)
}

func generatePlain(ctx context.Context, s *store.Store, items []*core.ContentItem, concurrency int) error {
	p, _, err := buildPipeline(ctx, s, func(item *core.ContentItem) {
		logger.Info("status", map[string]any{"title": item.Title, "status": string(item.Status), "message": item.StatusMessage})
	})
	if err != nil {
		return err
	}

	p.RunBatch(ctx, items, concurrency, func(completed, total int) {
		logger.Info("batch progress", map[string]any{"completed": completed, "total": total})
	})

	return saveAndReport(s, items)
}

func generateWithTUI(ctx context.Context, s *store.Store, items []*core.ContentItem, concurrency int) error {
	var p *pipeline.Pipeline

	program := tui.NewProgram(fmt.Sprintf("Generating %d article(s)", len(items)), items, func() {
		if p != nil {
			p.StopAll()
		}
	})

	p, _, err := buildPipeline(ctx, s, func(item *core.ContentItem) {
		program.Send(tui.ItemUpdateMsg{})
	})
	if err != nil {
		return err
	}

	go func() {
		p.RunBatch(ctx, items, concurrency, func(completed, total int) {
			program.Send(tui.ProgressMsg{Completed: completed, Total: total})
		})
		program.Send(tui.DoneMsg{})
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("progress view failed: %w", err)
	}

	return saveAndReport(s, items)
}

func saveAndReport(s *store.Store, items []*core.ContentItem) error {
	var done, failed, stopped int
	for _, item := range items {
		switch item.Status {
		case core.StatusDone:
			done++
		case core.StatusError:
			failed++
		default:
			stopped++
		}
		if item.Generated != nil {
			if err := s.SaveArticle(*item); err != nil {
				logger.Error("failed to save article", err, map[string]any{"title": item.Title})
			}
		}
	}

	fmt.Printf("\nGenerated: %d  Failed: %d  Stopped: %d\n", done, failed, stopped)
	for _, item := range items {
		marker := "✓"
		if item.Status != core.StatusDone {
			marker = "✗"
		}
		fmt.Printf("  %s %-40s %s\n", marker, truncateTitle(item.Title), item.StatusMessage)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d items failed", failed, len(items))
	}
	return nil
}

func collectKeywords(args []string, file string) ([]string, error) {
	var keywords []string
	for _, a := range args {
		if strings.TrimSpace(a) != "" {
			keywords = append(keywords, strings.TrimSpace(a))
		}
	}
	if file == "" {
		return keywords, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open keywords file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keywords = append(keywords, line)
	}
	return keywords, scanner.Err()
}

func parseKind(kindStr string) (core.ContentKind, error) {
	switch core.ContentKind(kindStr) {
	case core.KindStandard, core.KindPillar, core.KindCluster, core.KindLinkOptimizer:
		return core.ContentKind(kindStr), nil
	default:
		return "", fmt.Errorf("unknown kind %q: use standard, pillar, cluster, or link-optimizer", kindStr)
	}
}

func truncateTitle(title string) string {
	if len(title) <= 40 {
		return title
	}
	return title[:37] + "..."
}
