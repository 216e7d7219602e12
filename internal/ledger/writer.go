package ledger

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"runledger/internal/model"
	"runledger/internal/normalize"
)

// reviewFlagName marks imported entries for human verification.
const reviewFlagName = "Needs Review"

// Importer writes missing runs into the ledger. Dry run is the default:
// nothing is mutated unless write is set, and every planned action is
// printed either way so the operator can audit before committing.
type Importer struct {
	client *Client
	cfg    model.LedgerConfig
	write  bool
	out    io.Writer
}

// NewImporter creates an importer. With write false all mutations are
// printed as plans only.
func NewImporter(client *Client, cfg model.LedgerConfig, write bool, out io.Writer) *Importer {
	return &Importer{client: client, cfg: cfg, write: write, out: out}
}

// Result summarizes one import pass.
type Result struct {
	Imported        int
	AlreadyPresent  int
	Skipped         int
	Failed          int
	NewParticipants []string
}

// Import writes each event that is still missing from the live ledger.
// Events are re-checked against a fresh snapshot first: the report may be
// stale, and a duplicate ledger entry is the one outcome this pipeline
// exists to prevent.
func (im *Importer) Import(ctx context.Context, events []model.ResolvedEvent) (*Result, error) {
	snapshot, err := im.client.Snapshot(ctx, im.cfg.EntriesTable, im.cfg.PeopleTable)
	if err != nil {
		return nil, fmt.Errorf("refresh ledger: %w", err)
	}
	linker := NewLinker(snapshot)

	flagID, err := im.ensureReviewFlag(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, event := range events {
		switch {
		case !event.Identified():
			fmt.Fprintf(im.out, "skip: %s (%s) - participant not identified\n", event.Title, event.Key)
			res.Skipped++
			continue
		case event.Date.IsZero():
			fmt.Fprintf(im.out, "skip: %s - no usable date\n", event.Participant)
			res.Skipped++
			continue
		}

		if existing := linker.FindMatch(event); existing != nil {
			fmt.Fprintf(im.out, "exists: %s %s -> %s\n", event.Participant, event.Date.Format("2006-01-02"), existing.ID)
			res.AlreadyPresent++
			continue
		}

		if err := im.importOne(ctx, event, snapshot, flagID, res); err != nil {
			fmt.Fprintf(im.out, "error: %s: %v\n", event.Participant, err)
			res.Failed++
		}
	}
	return res, nil
}

func (im *Importer) importOne(ctx context.Context, event model.ResolvedEvent, snapshot *Snapshot, flagID string, res *Result) error {
	participantID := ""
	if p := snapshot.FindParticipant(event.Participant); p != nil {
		participantID = p.ID
		fmt.Fprintf(im.out, "found participant: %s (%s)\n", p.Name, p.ID)
	} else if im.write {
		rec, err := im.client.CreateRecord(ctx, im.cfg.PeopleTable, map[string]any{
			fieldPersonName: event.Participant,
		})
		if err != nil {
			return fmt.Errorf("create participant: %w", err)
		}
		participantID = rec.ID
		snapshot.Participants = append(snapshot.Participants, Participant{ID: rec.ID, Name: event.Participant})
		res.NewParticipants = append(res.NewParticipants, event.Participant)
		fmt.Fprintf(im.out, "created participant: %s (%s)\n", event.Participant, rec.ID)
	} else {
		participantID = "[new:" + normalize.Identity(event.Participant) + "]"
		res.NewParticipants = append(res.NewParticipants, event.Participant)
		fmt.Fprintf(im.out, "[dry run] would create participant: %s\n", event.Participant)
	}

	fields := map[string]any{
		fieldPerson: []string{participantID},
		fieldDate:   event.Date.Format("2006-01-02"),
	}
	if event.TimeHint != nil {
		if seconds, ok := ParseRunTime(event.TimeHint.Raw); ok {
			fields[fieldTime] = seconds
		}
	}
	if flagID != "" {
		fields["Asterisks"] = []string{flagID}
	}

	if !im.write {
		timeNote := "time unknown"
		if seconds, ok := fields[fieldTime]; ok {
			timeNote = fmt.Sprintf("time %v", seconds)
		}
		fmt.Fprintf(im.out, "[dry run] would create entry: %s %s (%s)\n",
			event.Participant, fields[fieldDate], timeNote)
		res.Imported++
		return nil
	}

	rec, err := im.client.CreateRecord(ctx, im.cfg.EntriesTable, fields)
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	fmt.Fprintf(im.out, "created entry: %s -> %s\n", event.Participant, rec.ID)
	res.Imported++
	return nil
}

// ensureReviewFlag finds or creates the "Needs Review" flag record and
// returns its id. In dry-run mode a placeholder id stands in for a flag
// that would have been created.
func (im *Importer) ensureReviewFlag(ctx context.Context) (string, error) {
	if im.cfg.FlagsTable == "" {
		return "", nil
	}

	records, err := im.client.FetchTable(ctx, im.cfg.FlagsTable)
	if err != nil {
		return "", fmt.Errorf("fetch flags: %w", err)
	}
	for _, rec := range records {
		if strings.Contains(strings.ToLower(fieldString(rec.Fields, fieldFlag)), strings.ToLower(reviewFlagName)) {
			return rec.ID, nil
		}
	}

	if !im.write {
		fmt.Fprintf(im.out, "[dry run] would create flag: %s\n", reviewFlagName)
		return "[new:flag]", nil
	}

	rec, err := im.client.CreateRecord(ctx, im.cfg.FlagsTable, map[string]any{
		fieldFlag:        reviewFlagName,
		fieldDescription: "Imported from catalogue scan - needs verification",
	})
	if err != nil {
		return "", fmt.Errorf("create flag: %w", err)
	}
	return rec.ID, nil
}

var runTimeRe = regexp.MustCompile(`^(\d+):(\d+(?:\.\d+)?)$`)

// ParseRunTime converts a "M:SS.cc" result to seconds. DNF-style markers
// and anything not matching the shape are rejected.
func ParseRunTime(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "DNF") || strings.EqualFold(s, "Gas") {
		return 0, false
	}
	m := runTimeRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	minutes, _ := strconv.Atoi(m[1])
	seconds, _ := strconv.ParseFloat(m[2], 64)
	return float64(minutes)*60 + seconds, true
}
