package model

import "time"

// Claim is a single extracted assertion that a run occurred: one
// participant, backed by evidence from one source record. A claim always
// carries provenance (record id + rule id) and is never synthesized
// without it.
type Claim struct {
	Participant string     `json:"participant"`           // Canonical display name ("" = unidentified)
	EventType   string     `json:"event_type"`            // Matching rule's event-type tag
	Confidence  Confidence `json:"confidence"`            // Classified confidence level
	RecordID    string     `json:"record_id"`             // Originating SourceRecord
	Title       string     `json:"title"`                 // Originating title, for review
	Show        string     `json:"show,omitempty"`        // Source-channel tag, drives dedup priority
	Rule        string     `json:"rule"`                  // Identifier of the rule that matched
	Date        time.Time  `json:"date,omitempty"`        // Event date (record publish date)
	Link        string     `json:"link,omitempty"`        // Episode URL
	IsDuo       bool       `json:"is_duo,omitempty"`      // Part of a two-participant run
	RunScore    int        `json:"run_score"`             // Positive snippet-evidence count
	TalkScore   int        `json:"talk_score"`            // Discussion-indicator count
	Evidence    []Snippet  `json:"evidence,omitempty"`    // Top-K run evidence snippets
	Discussion  []Snippet  `json:"discussion,omitempty"`  // Top-K discussion snippets
	TimeHint    *TimeHint  `json:"time_hint,omitempty"`   // Elapsed-time mention, if any
}

// TimeHint is an elapsed-time mention found in a snippet, kept verbatim
// with enough context for a reviewer to verify it.
type TimeHint struct {
	Raw       string  `json:"raw"`                 // The matched time text, e.g. "3:42.15"
	Context   string  `json:"context"`             // Leading snippet text around the match
	StartTime float64 `json:"start_time,omitempty"` // Snippet offset in seconds
}

// Identified reports whether the claim names a specific participant.
func (c Claim) Identified() bool {
	return c.Participant != ""
}

// Confidence is the ordinal confidence scale for a claim. The numeric
// values define the total order used by the reporter's partitioning.
type Confidence int

const (
	ConfidenceLow       Confidence = 0 // No title match, no snippet evidence
	ConfidenceTitleOnly Confidence = 1 // Keyword in title, zero snippet evidence
	ConfidenceMedium    Confidence = 2 // 1-2 positive snippet indicators
	ConfidenceHigh      Confidence = 3 // Title rule default, or 3+ indicators
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "HIGH"
	case ConfidenceMedium:
		return "MEDIUM"
	case ConfidenceTitleOnly:
		return "TITLE_ONLY"
	default:
		return "LOW"
	}
}

// ParseConfidence maps a confidence label back to its level. Unknown
// labels map to LOW.
func ParseConfidence(s string) Confidence {
	switch s {
	case "HIGH":
		return ConfidenceHigh
	case "MEDIUM":
		return ConfidenceMedium
	case "TITLE_ONLY":
		return ConfidenceTitleOnly
	default:
		return ConfidenceLow
	}
}

// MarshalJSON encodes the confidence as its label so reports stay
// readable without the enum table.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON decodes a confidence label.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*c = ParseConfidence(s)
	return nil
}
