package model

import "time"

// ResolvedEvent is the canonical, deduplicated representation of one
// real-world run after merging all claims that refer to it. Created by the
// deduplicator, annotated by the ledger linker, serialized by the reporter.
type ResolvedEvent struct {
	Claim

	Key string `json:"dedup_key"` // (normalized identity, calendar date)

	// Set by the linker when the run is already in the ledger.
	LedgerID   string `json:"ledger_id,omitempty"`
	LedgerTime string `json:"ledger_time,omitempty"`

	// Optional oracle suggestion for unidentified runs. Annotation only:
	// it never moves an event between report partitions.
	Suggestion *Suggestion `json:"suggestion,omitempty"`
}

// Suggestion is a structured hint returned by the optional identification
// oracle for events routed to manual review.
type Suggestion struct {
	Participant string `json:"participant,omitempty"`
	TimeHint    string `json:"time_hint,omitempty"`
	Model       string `json:"model,omitempty"`
}

// DedupKey builds the (identity, date) composite key that detects multiple
// mentions of the same run. The identity component must already be
// normalized by the caller.
func DedupKey(identity string, date time.Time) string {
	if date.IsZero() {
		return identity + "_"
	}
	return identity + "_" + date.Format("2006-01-02")
}
