package ledger

import (
	"time"

	"runledger/internal/model"
	"runledger/internal/normalize"
)

// DateTolerance is the fuzzy-match window around an event's date.
// Catalogue publish dates and ledger entry dates drift by a day or two
// across timezones and re-posts.
const DateTolerance = 48 * time.Hour

// Linker fuzzy-matches resolved events against a complete ledger
// snapshot.
type Linker struct {
	snapshot *Snapshot
}

// NewLinker creates a linker over the given snapshot.
func NewLinker(snapshot *Snapshot) *Linker {
	return &Linker{snapshot: snapshot}
}

// FindMatch returns the first ledger entry, in ledger iteration order,
// whose date lies within the tolerance window of the event's date and
// whose identity equals or contains (either way) the event's identity.
// First candidate wins: the policy is deliberately greedy, not
// best-scored. Nil means the run is missing from the ledger.
func (l *Linker) FindMatch(event model.ResolvedEvent) *Entry {
	identity := normalize.Identity(event.Participant)
	if identity == "" || event.Date.IsZero() {
		return nil
	}

	for i := range l.snapshot.Entries {
		entry := &l.snapshot.Entries[i]
		if entry.Date.IsZero() {
			continue
		}

		diff := entry.Date.Sub(event.Date)
		if diff < 0 {
			diff = -diff
		}
		if diff > DateTolerance {
			continue
		}

		if normalize.SameIdentity(identity, entry.Identity) {
			return entry
		}
	}
	return nil
}
