package model

import "time"

// SourceRecord is one row of the raw episode catalogue. Records are
// read-only input: the pipeline never mutates them after ingestion.
type SourceRecord struct {
	ID       string    `json:"id"`                  // Unique episode identifier
	Title    string    `json:"title"`               // Episode title text
	Show     string    `json:"show,omitempty"`      // Source-channel tag (e.g. "The Yak - YouTube")
	Date     time.Time `json:"date,omitempty"`      // Publish date (zero if unparseable)
	RawDate  string    `json:"raw_date,omitempty"`  // Original date string, kept for audit
	Link     string    `json:"link,omitempty"`      // Episode URL
	Snippets []Snippet `json:"snippets,omitempty"`  // Transcript highlight snippets
}

// Snippet is one transcript highlight: a text span with its offset into
// the episode, in seconds.
type Snippet struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time,omitempty"`
}
