package ingest

import (
	"strings"
	"testing"
	"time"
)

const sampleCSV = `Episode Id,Show Title,Episode Title,Publish Date,Highlights,Episode Link
ep-1,The Yak - YouTube,Jane Doe Takes On The Gauntlet,2025-03-10,"{""transcript"":[{""phrase"":""let's do the <em>gauntlet</em>"",""startTime"":4707.5}]}",https://example.com/ep-1
ep-2,The Yak,Empty Highlights Episode,3/9/2025,,https://example.com/ep-2
ep-3,The Yak,Broken Highlights,not-a-date,{invalid json,
`

func TestReadCSV(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}

	r := records[0]
	if r.ID != "ep-1" || r.Show != "The Yak - YouTube" {
		t.Errorf("record = %+v", r)
	}
	if got := r.Date; !got.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", got)
	}
	if len(r.Snippets) != 1 || r.Snippets[0].StartTime != 4707.5 {
		t.Errorf("snippets = %+v", r.Snippets)
	}

	// US-format date.
	if got := records[1].Date; !got.Equal(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("US date = %v", got)
	}

	// Malformed fields degrade, never error.
	r3 := records[2]
	if !r3.Date.IsZero() {
		t.Errorf("unparseable date should be zero, got %v", r3.Date)
	}
	if r3.RawDate != "not-a-date" {
		t.Errorf("raw date not preserved: %q", r3.RawDate)
	}
	if len(r3.Snippets) != 0 {
		t.Errorf("invalid highlights should yield no snippets: %+v", r3.Snippets)
	}
}

func TestReadCSV_ShortRows(t *testing.T) {
	csv := "Episode Id,Show Title,Episode Title,Publish Date,Highlights,Episode Link\nep-1,The Yak\n"
	records, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("short row should be tolerated: %v", err)
	}
	if len(records) != 1 || records[0].Title != "" {
		t.Errorf("records = %+v", records)
	}
}

func TestReadJSON(t *testing.T) {
	input := `[
	  {"id":"ep-1","title":"Jane Doe Takes On The Gauntlet","show":"The Yak - YouTube",
	   "date":"2025-03-10","snippets":[{"text":"final time 3:42.15","start_time":5100}]},
	  {"id":"ep-2","title":"No Date Episode"}
	]`
	records, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Snippets[0].Text != "final time 3:42.15" {
		t.Errorf("snippet = %+v", records[0].Snippets[0])
	}
	if !records[1].Date.IsZero() {
		t.Errorf("missing date should be zero, got %v", records[1].Date)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2025-03-10", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"2025-03-10T14:30:00Z", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"3/10/2025", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
		{"garbage", time.Time{}},
	}
	for _, tt := range tests {
		if got := ParseDate(tt.input); !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseHighlights_AlternateSpellings(t *testing.T) {
	raw := `{"transcript":[{"text":"doing the gauntlet","ts":42}]}`
	snippets := parseHighlights(raw)
	if len(snippets) != 1 {
		t.Fatalf("snippets = %d, want 1", len(snippets))
	}
	if snippets[0].Text != "doing the gauntlet" || snippets[0].StartTime != 42 {
		t.Errorf("snippet = %+v", snippets[0])
	}
}
