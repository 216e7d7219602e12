package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"runledger/internal/model"
)

// Renderer writes resolution reports as JSON and Markdown and prints a
// console summary.
type Renderer struct {
	verbose bool
}

// NewRenderer creates a renderer.
func NewRenderer(verbose bool) *Renderer {
	return &Renderer{verbose: verbose}
}

// Render writes the requested artifacts and always prints the summary.
// Empty paths skip the corresponding artifact.
func (r *Renderer) Render(report *model.ResolutionReport, jsonPath, mdPath string) error {
	if jsonPath != "" {
		if err := r.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render json: %w", err)
		}
		if r.verbose {
			fmt.Printf("wrote %s\n", jsonPath)
		}
	}
	if mdPath != "" {
		if err := r.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if r.verbose {
			fmt.Printf("wrote %s\n", mdPath)
		}
	}
	r.RenderSummary(report)
	return nil
}

// RenderJSON writes the full report, indented, to path.
func (r *Renderer) RenderJSON(report *model.ResolutionReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// RenderMarkdown writes the human-review report to path.
func (r *Renderer) RenderMarkdown(report *model.ResolutionReport, path string) error {
	return os.WriteFile(path, []byte(FormatMarkdown(report)), 0o644)
}

// RenderSummary prints the run counts to stdout.
func (r *Renderer) RenderSummary(report *model.ResolutionReport) {
	s := report.Summary
	fmt.Printf("records: %d (%d with keyword)\n", s.TotalRecords, s.KeywordTitles)
	fmt.Printf("claims:  %d extracted, %d after dedup\n", s.ClaimsExtracted, s.AfterDedup)
	fmt.Printf("ledger:  %d existing, %d missing, %d need review, %d skipped titles\n",
		s.Existing, s.Missing, s.NeedsReview, s.Skipped)
}

// FormatMarkdown renders the report for human review: missing runs
// first, then review candidates, then the already-ledgered remainder.
func FormatMarkdown(report *model.ResolutionReport) string {
	var b strings.Builder

	b.WriteString("# Ledger Resolution Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format(time.RFC3339))

	s := report.Summary
	b.WriteString("| | count |\n|---|---|\n")
	fmt.Fprintf(&b, "| records scanned | %d |\n", s.TotalRecords)
	fmt.Fprintf(&b, "| claims extracted | %d |\n", s.ClaimsExtracted)
	fmt.Fprintf(&b, "| resolved events | %d |\n", s.AfterDedup)
	fmt.Fprintf(&b, "| already in ledger | %d |\n", s.Existing)
	fmt.Fprintf(&b, "| missing from ledger | %d |\n", s.Missing)
	fmt.Fprintf(&b, "| needs review | %d |\n\n", s.NeedsReview)

	if len(report.Missing) > 0 {
		b.WriteString("## Missing from ledger\n\n")
		b.WriteString("| participant | date | confidence | title |\n|---|---|---|---|\n")
		for _, e := range report.Missing {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				e.Participant, formatDate(e.Date), e.Confidence, mdEscape(e.Title))
		}
		b.WriteString("\n")
	}

	if len(report.NeedsReview) > 0 {
		b.WriteString("## Needs review\n\n")
		for _, e := range report.NeedsReview {
			name := e.Participant
			if name == "" {
				name = "(unidentified)"
			}
			fmt.Fprintf(&b, "- **%s** %s [%s] %s\n", name, formatDate(e.Date), e.Confidence, mdEscape(e.Title))
			if e.Suggestion != nil && e.Suggestion.Participant != "" {
				fmt.Fprintf(&b, "  - suggested: %s", e.Suggestion.Participant)
				if e.Suggestion.TimeHint != "" {
					fmt.Fprintf(&b, " (%s)", e.Suggestion.TimeHint)
				}
				fmt.Fprintf(&b, " via %s\n", e.Suggestion.Model)
			}
			for _, snippet := range e.Evidence {
				fmt.Fprintf(&b, "  - > %s\n", mdEscape(snippet.Text))
			}
		}
		b.WriteString("\n")
	}

	if len(report.Existing) > 0 {
		b.WriteString("## Already in ledger\n\n")
		b.WriteString("| participant | date | ledger time | record |\n|---|---|---|---|\n")
		for _, e := range report.Existing {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				e.Participant, formatDate(e.Date), e.LedgerTime, e.LedgerID)
		}
		b.WriteString("\n")
	}

	if len(report.SkippedTitles) > 0 {
		b.WriteString("## Skipped titles\n\n")
		for _, title := range report.SkippedTitles {
			fmt.Fprintf(&b, "- %s\n", mdEscape(title))
		}
	}

	return b.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("2006-01-02")
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
