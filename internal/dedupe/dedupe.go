// Package dedupe collapses claims that describe the same real-world run
// observed through multiple source records, typically a video upload and
// an audio-feed re-post of the same episode.
package dedupe

import (
	"strings"

	"runledger/internal/model"
	"runledger/internal/normalize"
)

// Deduplicator merges claims by (normalized identity, calendar date) key.
type Deduplicator struct {
	// priorityChannel marks the higher-fidelity source channel; a claim
	// whose Show contains this tag wins its key's tie-break.
	priorityChannel string
}

// New creates a deduplicator with the given priority channel tag.
func New(priorityChannel string) *Deduplicator {
	return &Deduplicator{priorityChannel: priorityChannel}
}

// Resolve collapses the claim set into resolved events: at most one event
// per dedup key. When several claims share a key, the priority-channel
// claim wins; otherwise the first-seen claim is retained. A winning
// priority claim takes the replaced claim's position, so output order is a
// deterministic function of input order and Resolve is idempotent.
func (d *Deduplicator) Resolve(claims []model.Claim) []model.ResolvedEvent {
	events := make([]model.ResolvedEvent, 0, len(claims))
	index := make(map[string]int, len(claims))

	for _, claim := range claims {
		key := model.DedupKey(d.identityKey(claim), claim.Date)

		at, seen := index[key]
		if !seen {
			index[key] = len(events)
			events = append(events, model.ResolvedEvent{Claim: claim, Key: key})
			continue
		}

		if d.priority(claim) && !d.priority(events[at].Claim) {
			events[at] = model.ResolvedEvent{Claim: claim, Key: key}
		}
	}

	return events
}

// identityKey returns the identity component of a claim's dedup key.
// Unidentified claims fall back to a title-prefix key: reposts of the
// same episode still collapse, while distinct unknown-participant runs on
// the same date stay separate.
func (d *Deduplicator) identityKey(c model.Claim) string {
	if id := normalize.Identity(c.Participant); id != "" {
		return id
	}
	title := normalize.Identity(c.Title)
	if len(title) > 30 {
		title = title[:30]
	}
	return "title:" + title
}

func (d *Deduplicator) priority(c model.Claim) bool {
	if d.priorityChannel == "" {
		return false
	}
	return strings.Contains(strings.ToLower(c.Show), strings.ToLower(d.priorityChannel))
}
