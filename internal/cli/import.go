package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"runledger/internal/ledger"
	"runledger/internal/model"
	"runledger/internal/pipeline"
)

var (
	importWrite   bool
	importTimeout time.Duration
)

var importCmd = &cobra.Command{
	Use:   "import <report.json>",
	Short: "Import missing runs from a scan report into the ledger",
	Long: `Import takes the "missing" partition of a scan report and creates the
corresponding ledger entries. Every imported entry is flagged for human
review.

Dry run is the default: without --write, import prints what it would do
and changes nothing. Each event is re-checked against a fresh ledger
snapshot before creation, so a stale report cannot produce duplicates.

Example:
  runledger import report.json
  runledger import report.json --write`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importWrite, "write", false, "actually write to the ledger (default is dry run)")
	importCmd.Flags().DurationVar(&importTimeout, "timeout", 5*time.Minute, "overall import timeout")
}

func runImport(cmd *cobra.Command, args []string) error {
	reportPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireLedger(cfg); err != nil {
		return err
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	var report model.ResolutionReport
	if err := json.Unmarshal(data, &report); err != nil {
		return fmt.Errorf("parse report %s: %w", reportPath, err)
	}
	if len(report.Missing) == 0 {
		fmt.Println("nothing to import: report has no missing runs")
		return nil
	}

	if !importWrite {
		fmt.Printf("dry run: %d candidate runs (use --write to commit)\n\n", len(report.Missing))
	} else {
		fmt.Printf("importing %d runs\n\n", len(report.Missing))
	}

	// The duplicate re-check must see the live ledger, not a cached
	// snapshot from an earlier scan.
	cfg.Cache.Enabled = false
	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	importer := ledger.NewImporter(p.Client(), cfg.Ledger, importWrite, os.Stdout)
	res, err := importer.Import(ctx, report.Missing)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("\nimported %d, already present %d, skipped %d, failed %d\n",
		res.Imported, res.AlreadyPresent, res.Skipped, res.Failed)
	if len(res.NewParticipants) > 0 {
		fmt.Printf("new participants: %v\n", res.NewParticipants)
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d imports failed", res.Failed)
	}
	return nil
}
