package ledger

import (
	"context"
	"fmt"
	"time"

	"runledger/internal/ingest"
	"runledger/internal/normalize"
)

// Entry is one authoritative ledger record: a previously confirmed run.
// Read-only from the pipeline's perspective.
type Entry struct {
	ID       string    `json:"id"`
	Identity string    `json:"identity"` // Normalized participant name
	Name     string    `json:"name"`     // Display name, resolved from the people table
	Date     time.Time `json:"date"`
	RawDate  string    `json:"raw_date,omitempty"`
	Time     string    `json:"time,omitempty"` // Recorded result, verbatim
}

// Participant is one row of the people table.
type Participant struct {
	ID   string
	Name string
}

// Snapshot is a fully drained, point-in-time view of the ledger. The
// linker only ever works against a complete snapshot.
type Snapshot struct {
	Entries      []Entry // In ledger iteration order
	Participants []Participant
}

// Field names in the record store.
const (
	fieldDate        = "Date"
	fieldTime        = "Time"
	fieldPerson      = "Competitor"
	fieldPersonName  = "Name"
	fieldPersonAlt   = "Competitor"
	fieldFlag        = "Flag"
	fieldDescription = "Description"
)

// Snapshot drains the entries and people tables and resolves each
// entry's linked participant reference to a name. Any fetch failure is
// returned as-is: the caller must abort rather than match against a
// partial view.
func (c *Client) Snapshot(ctx context.Context, entriesTable, peopleTable string) (*Snapshot, error) {
	entryRecords, err := c.FetchTable(ctx, entriesTable)
	if err != nil {
		return nil, err
	}
	peopleRecords, err := c.FetchTable(ctx, peopleTable)
	if err != nil {
		return nil, err
	}

	people := make([]Participant, 0, len(peopleRecords))
	nameByID := make(map[string]string, len(peopleRecords))
	for _, rec := range peopleRecords {
		name := fieldString(rec.Fields, fieldPersonName)
		if name == "" {
			name = fieldString(rec.Fields, fieldPersonAlt)
		}
		people = append(people, Participant{ID: rec.ID, Name: name})
		nameByID[rec.ID] = name
	}

	entries := make([]Entry, 0, len(entryRecords))
	for _, rec := range entryRecords {
		rawDate := fieldString(rec.Fields, fieldDate)

		var name string
		if ids := fieldStrings(rec.Fields, fieldPerson); len(ids) > 0 {
			name = nameByID[ids[0]]
		}

		entries = append(entries, Entry{
			ID:       rec.ID,
			Identity: normalize.Identity(name),
			Name:     name,
			Date:     ingest.ParseDate(rawDate),
			RawDate:  rawDate,
			Time:     fieldString(rec.Fields, fieldTime),
		})
	}

	return &Snapshot{Entries: entries, Participants: people}, nil
}

// FindParticipant looks a name up in the snapshot's people table using
// the normalized containment policy. Returns nil when absent.
func (s *Snapshot) FindParticipant(name string) *Participant {
	id := normalize.Identity(name)
	if id == "" {
		return nil
	}
	for i := range s.Participants {
		if normalize.SameIdentity(id, normalize.Identity(s.Participants[i].Name)) {
			return &s.Participants[i]
		}
	}
	return nil
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("ledger snapshot: %d entries, %d participants", len(s.Entries), len(s.Participants))
}
