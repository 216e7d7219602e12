// Package pipeline wires the full resolution flow: catalogue ingestion,
// claim extraction, confidence classification, deduplication, ledger
// linkage and report assembly.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"runledger/internal/cache"
	"runledger/internal/dedupe"
	"runledger/internal/extract"
	"runledger/internal/ingest"
	"runledger/internal/ledger"
	"runledger/internal/llm"
	"runledger/internal/model"
	"runledger/internal/rules"
	"runledger/internal/score"
	"runledger/internal/worker"
)

// Pipeline orchestrates one catalogue scan against the ledger.
type Pipeline struct {
	ruleset    *rules.Ruleset
	extractor  *extract.Extractor
	classifier *score.Classifier
	dedup      *dedupe.Deduplicator
	client     *ledger.Client
	oracle     llm.Provider // nil when disabled
	renderer   *Renderer
	config     *model.Config
}

// New builds a pipeline from configuration. The oracle is optional:
// initialization failures disable it with a warning rather than failing
// the run.
func New(cfg *model.Config) (*Pipeline, error) {
	ruleset := rules.Default()
	if cfg.Rules.Path != "" {
		rs, err := rules.Load(cfg.Rules.Path)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		ruleset = rs
	}
	if cfg.Ingest.Keyword != "" {
		ruleset.Keyword = cfg.Ingest.Keyword
	}

	var snapshots cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			snapshots = cache.NewLayered(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			snapshots = cache.NewMemory(cfg.Cache.TTL, cfg.Cache.TTL)
		}
	}

	var oracle llm.Provider
	if cfg.LLM.Provider != "" {
		p, err := llm.NewProvider(cfg.LLM)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: oracle disabled: %v\n", err)
		} else {
			oracle = p
		}
	}

	return &Pipeline{
		ruleset:    ruleset,
		extractor:  extract.New(ruleset),
		classifier: score.NewClassifier(),
		dedup:      dedupe.New(ruleset.PriorityChannel),
		client:     ledger.NewClient(cfg.Ledger, snapshots),
		oracle:     oracle,
		renderer:   NewRenderer(cfg.Output.Verbose),
		config:     cfg,
	}, nil
}

// Client exposes the ledger client, shared with the import command.
func (p *Pipeline) Client() *ledger.Client {
	return p.client
}

// Run scans one catalogue file and resolves it against the ledger.
// Any ledger failure aborts the run before a report exists: a diff
// against a partial snapshot would misreport runs as missing.
func (p *Pipeline) Run(ctx context.Context, cataloguePath string) (*model.ResolutionReport, error) {
	records, err := ingest.ReadFile(cataloguePath)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}

	claims, skipped := p.extractAll(ctx, records)

	for i := range claims {
		claims[i] = p.classifier.ClassifyClaim(claims[i])
	}

	events := p.dedup.Resolve(claims)

	snapshot, err := p.client.Snapshot(ctx, p.config.Ledger.EntriesTable, p.config.Ledger.PeopleTable)
	if err != nil {
		return nil, fmt.Errorf("ledger snapshot: %w", err)
	}
	if p.config.Output.Verbose {
		fmt.Fprintln(os.Stderr, snapshot)
	}

	report := p.partition(events, ledger.NewLinker(snapshot))
	report.SkippedTitles = skipped
	report.Summary = model.Summary{
		TotalRecords:    len(records),
		KeywordTitles:   p.countKeywordTitles(records),
		ClaimsExtracted: len(claims),
		AfterDedup:      len(events),
		Existing:        len(report.Existing),
		Missing:         len(report.Missing),
		NeedsReview:     len(report.NeedsReview),
		Skipped:         len(skipped),
	}

	p.annotate(ctx, report.NeedsReview)

	return report, nil
}

// extractAll fans extraction over the worker pool and flattens the
// results back into catalogue order.
func (p *Pipeline) extractAll(ctx context.Context, records []model.SourceRecord) ([]model.Claim, []string) {
	batch := worker.NewBatchExtractor(p.extractor, p.config.Concurrency.Workers)
	results := batch.ProcessRecords(ctx, records)

	var claims []model.Claim
	var skipped []string
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "warning: record %s: %v\n", res.RecordID, res.Err)
			continue
		}
		claims = append(claims, res.Claims...)
		if res.SkippedTitle != "" {
			skipped = append(skipped, res.SkippedTitle)
		}
	}
	return claims, skipped
}

// partition routes every event into exactly one report bucket.
func (p *Pipeline) partition(events []model.ResolvedEvent, linker *ledger.Linker) *model.ResolutionReport {
	report := &model.ResolutionReport{GeneratedAt: time.Now().UTC()}

	for _, event := range events {
		if entry := linker.FindMatch(event); entry != nil {
			event.LedgerID = entry.ID
			event.LedgerTime = entry.Time
			report.Existing = append(report.Existing, event)
			continue
		}
		if event.Identified() && event.Confidence >= model.ConfidenceMedium {
			report.Missing = append(report.Missing, event)
			continue
		}
		report.NeedsReview = append(report.NeedsReview, event)
	}

	sortByDateDesc(report.Existing)
	sortByDateDesc(report.Missing)
	sortByDateDesc(report.NeedsReview)
	return report
}

// annotate asks the oracle about unidentified review events. Suggestions
// are advisory text on the event; oracle failures never fail the run and
// never move an event out of review.
func (p *Pipeline) annotate(ctx context.Context, events []model.ResolvedEvent) {
	if p.oracle == nil {
		return
	}
	for i := range events {
		if events[i].Identified() {
			continue
		}
		suggestion, err := p.oracle.Identify(ctx, llm.IdentifyRequest{
			Title:      events[i].Title,
			Show:       events[i].Show,
			Evidence:   events[i].Evidence,
			Discussion: events[i].Discussion,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: oracle: %v\n", err)
			continue
		}
		events[i].Suggestion = suggestion
	}
}

func (p *Pipeline) countKeywordTitles(records []model.SourceRecord) int {
	keyword := strings.ToLower(p.ruleset.Keyword)
	n := 0
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Title), keyword) {
			n++
		}
	}
	return n
}

// sortByDateDesc orders events most recent first, zero dates last.
// The sort is stable so same-date events keep resolution order.
func sortByDateDesc(events []model.ResolvedEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date.IsZero() {
			return false
		}
		if events[j].Date.IsZero() {
			return true
		}
		return events[i].Date.After(events[j].Date)
	})
}

// RenderReport writes the report artifacts and prints the summary.
func (p *Pipeline) RenderReport(report *model.ResolutionReport, jsonPath, mdPath string) error {
	return p.renderer.Render(report, jsonPath, mdPath)
}
