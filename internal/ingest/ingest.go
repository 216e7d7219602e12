// Package ingest reads episode catalogue snapshots. Rows are treated as
// untrusted: missing or malformed fields degrade to empty values and
// never abort the run.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"runledger/internal/model"
)

// Catalogue column names, matching the podcast search export.
const (
	colEpisodeID   = "Episode Id"
	colTitle       = "Episode Title"
	colShow        = "Show Title"
	colPublishDate = "Publish Date"
	colHighlights  = "Highlights"
	colLink        = "Episode Link"
)

// ReadFile loads a catalogue from path, dispatching on extension
// (.csv or .json).
func ReadFile(path string) ([]model.SourceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalogue: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(f)
	case ".csv":
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported catalogue format: %s", filepath.Ext(path))
	}
}

// ReadCSV reads a header-mapped CSV catalogue. Quoting is relaxed and
// short rows are tolerated; only a structurally unreadable file errors.
func ReadCSV(r io.Reader) ([]model.SourceRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []model.SourceRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if len(row) == 0 {
			continue
		}

		rawDate := field(row, colPublishDate)
		records = append(records, model.SourceRecord{
			ID:       field(row, colEpisodeID),
			Title:    field(row, colTitle),
			Show:     field(row, colShow),
			Date:     ParseDate(rawDate),
			RawDate:  rawDate,
			Link:     field(row, colLink),
			Snippets: parseHighlights(field(row, colHighlights)),
		})
	}
	return records, nil
}

// jsonRecord is the JSON catalogue row shape.
type jsonRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Show     string `json:"show"`
	Date     string `json:"date"`
	Link     string `json:"link"`
	Snippets []struct {
		Text      string  `json:"text"`
		StartTime float64 `json:"start_time"`
	} `json:"snippets"`
}

// ReadJSON reads a JSON catalogue: an array of row objects.
func ReadJSON(r io.Reader) ([]model.SourceRecord, error) {
	var rows []jsonRecord
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("parse json catalogue: %w", err)
	}

	records := make([]model.SourceRecord, 0, len(rows))
	for _, row := range rows {
		rec := model.SourceRecord{
			ID:      row.ID,
			Title:   row.Title,
			Show:    row.Show,
			Date:    ParseDate(row.Date),
			RawDate: row.Date,
			Link:    row.Link,
		}
		for _, sn := range row.Snippets {
			rec.Snippets = append(rec.Snippets, model.Snippet{Text: sn.Text, StartTime: sn.StartTime})
		}
		records = append(records, rec)
	}
	return records, nil
}

// dateLayouts are the shapes the catalogue actually carries. Anything
// else yields a zero time; downstream stages treat that as "date unknown".
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
}

// ParseDate parses a catalogue date string, returning the zero time for
// empty or unparseable input.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(24 * time.Hour)
		}
	}
	return time.Time{}
}

// highlights is the embedded per-row JSON blob of transcript search hits.
type highlights struct {
	Transcript []struct {
		Phrase    string  `json:"phrase"`
		Text      string  `json:"text"`
		StartTime float64 `json:"startTime"`
		TS        float64 `json:"ts"`
	} `json:"transcript"`
}

// parseHighlights decodes the highlight blob, tolerating both field
// spellings seen in the export. Invalid JSON yields no snippets.
func parseHighlights(raw string) []model.Snippet {
	if raw == "" {
		return nil
	}
	var h highlights
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		return nil
	}

	snippets := make([]model.Snippet, 0, len(h.Transcript))
	for _, t := range h.Transcript {
		text := t.Phrase
		if text == "" {
			text = t.Text
		}
		start := t.StartTime
		if start == 0 {
			start = t.TS
		}
		if text == "" {
			continue
		}
		snippets = append(snippets, model.Snippet{Text: text, StartTime: start})
	}
	return snippets
}
