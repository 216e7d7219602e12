package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"runledger/internal/pipeline"
)

var (
	outJSON     string
	outMD       string
	scanTimeout time.Duration
	noCache     bool
	rulesPath   string
	keyword     string
	workers     int
	llmEnabled  bool
	llmModel    string
)

var scanCmd = &cobra.Command{
	Use:   "scan <catalogue>",
	Short: "Scan a catalogue export and diff it against the ledger",
	Long: `Scan reads an episode catalogue export (CSV or JSON), extracts run
claims from titles and transcript highlights, deduplicates them, and
matches the result against the ledger.

The scan is read-only: it fetches the ledger but never writes to it.

Example:
  runledger scan episodes.csv
  runledger scan episodes.json --json report.json --md report.md
  runledger scan episodes.csv --llm --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	scanCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 5*time.Minute, "overall scan timeout")
	scanCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the ledger snapshot cache")
	scanCmd.Flags().StringVar(&rulesPath, "rules", "", "rule-table override file (YAML)")
	scanCmd.Flags().StringVar(&keyword, "keyword", "", "tracked event keyword (default from config)")
	scanCmd.Flags().IntVar(&workers, "workers", 0, "extraction worker count (default from config)")

	scanCmd.Flags().BoolVar(&llmEnabled, "llm", false, "ask the identification oracle about unresolved runs")
	scanCmd.Flags().StringVar(&llmModel, "llm-model", "", "oracle model name")
}

func runScan(cmd *cobra.Command, args []string) error {
	cataloguePath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if rulesPath != "" {
		cfg.Rules.Path = rulesPath
	}
	if keyword != "" {
		cfg.Ingest.Keyword = keyword
	}
	if workers > 0 {
		cfg.Concurrency.Workers = workers
	}
	if llmEnabled {
		cfg.LLM.Provider = "openai"
		if llmModel != "" {
			cfg.LLM.Model = llmModel
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}
	if err := requireLedger(cfg); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "scanning %s (keyword %q, %d workers)\n",
			cataloguePath, cfg.Ingest.Keyword, cfg.Concurrency.Workers)
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	report, err := p.Run(ctx, cataloguePath)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if err := p.RenderReport(report, outJSON, outMD); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}
