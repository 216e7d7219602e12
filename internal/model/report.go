package model

import "time"

// ResolutionReport is the terminal artifact of one pipeline run: a
// point-in-time snapshot partitioning every resolved event by its ledger
// outcome. It is created once and never mutated afterward.
type ResolutionReport struct {
	GeneratedAt time.Time `json:"generated_at"`
	Summary     Summary   `json:"summary"`

	// Existing: runs the linker matched to a ledger entry.
	Existing []ResolvedEvent `json:"existing"`

	// Missing: unmatched runs with an identified participant and
	// confidence at or above MEDIUM, ready for the import step.
	Missing []ResolvedEvent `json:"missing"`

	// NeedsReview: unmatched runs that are low-confidence or have no
	// identified participant; a human must resolve them.
	NeedsReview []ResolvedEvent `json:"needs_review"`

	// SkippedTitles lists keyword-bearing titles that produced no claim
	// (excluded or unmatched by any rule), kept for manual review.
	SkippedTitles []string `json:"skipped_titles,omitempty"`
}

// Summary carries top-level counts for cheap inspection of a report.
type Summary struct {
	TotalRecords    int `json:"total_records"`
	KeywordTitles   int `json:"keyword_titles"`
	ClaimsExtracted int `json:"claims_extracted"`
	AfterDedup      int `json:"after_dedup"`
	Existing        int `json:"existing"`
	Missing         int `json:"missing"`
	NeedsReview     int `json:"needs_review"`
	Skipped         int `json:"skipped"`
}
