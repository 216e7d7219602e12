// Package extract turns source records into claims by applying the
// ordered rule tables: exclusion gate first, then full-title mappings,
// then title rules (first match wins), with transcript snippets scored
// independently for run and discussion indicators.
package extract

import (
	"strings"

	"runledger/internal/model"
	"runledger/internal/normalize"
	"runledger/internal/rules"
)

// Extractor applies one immutable ruleset. Safe for concurrent use: it
// holds no mutable state.
type Extractor struct {
	rules *rules.Ruleset
}

// New creates an extractor over the given ruleset.
func New(rs *rules.Ruleset) *Extractor {
	return &Extractor{rules: rs}
}

// Result is the extraction outcome for one record.
type Result struct {
	Claims []model.Claim

	// SkippedTitle is set when the title carries the tracked keyword but
	// produced no claim (excluded, or no rule matched). Surfaced in the
	// report for manual review.
	SkippedTitle string
}

// Excluded reports whether any exclusion pattern vetoes the title.
// Exclusion runs before all rule matching and is absolute.
func (e *Extractor) Excluded(title string) bool {
	for _, re := range e.rules.Exclusions {
		if re.MatchString(title) {
			return true
		}
	}
	return false
}

// Extract yields zero or more claims for one record. Missing or malformed
// fields degrade to empty values; extraction never fails.
func (e *Extractor) Extract(rec model.SourceRecord) Result {
	title := normalize.CollapseSpaces(rec.Title)
	keywordInTitle := title != "" &&
		strings.Contains(strings.ToLower(title), strings.ToLower(e.rules.Keyword))

	ev := e.analyzeSnippets(rec.Snippets)

	if keywordInTitle {
		if e.Excluded(title) {
			return Result{SkippedTitle: title}
		}

		names, rule, eventType, base, duo := e.participantsFromTitle(title)
		if len(names) == 0 {
			return Result{SkippedTitle: title}
		}

		claims := make([]model.Claim, 0, len(names))
		for _, name := range names {
			claims = append(claims, model.Claim{
				Participant: name,
				EventType:   eventType,
				Confidence:  base,
				RecordID:    rec.ID,
				Title:       title,
				Show:        rec.Show,
				Rule:        rule,
				Date:        rec.Date,
				Link:        rec.Link,
				IsDuo:       duo,
				RunScore:    ev.runScore,
				TalkScore:   ev.talkScore,
				Evidence:    ev.run,
				Discussion:  ev.talk,
				TimeHint:    ev.timeHint,
			})
		}
		return Result{Claims: claims}
	}

	// No keyword in the title: a run may still be happening on air. Only
	// the strong-commitment transcript phrases justify a claim here; the
	// generic run indicators misfire on ordinary episodes. Any hit yields
	// an unidentified claim routed to manual review.
	if ev.strongScore > 0 {
		return Result{Claims: []model.Claim{{
			EventType:  "transcript_only",
			Confidence: model.ConfidenceMedium,
			RecordID:   rec.ID,
			Title:      title,
			Show:       rec.Show,
			Rule:       "transcript_indicators",
			Date:       rec.Date,
			Link:       rec.Link,
			RunScore:   ev.runScore,
			TalkScore:  ev.talkScore,
			Evidence:   ev.run,
			Discussion: ev.talk,
			TimeHint:   ev.timeHint,
		}}}
	}

	return Result{}
}

// participantsFromTitle resolves a keyword-bearing title to participant
// names. Full-title mappings are consulted before the regex rules, on the
// sponsor-stripped title, with exact-or-prefix semantics.
func (e *Extractor) participantsFromTitle(title string) (names []string, rule, eventType string, base model.Confidence, duo bool) {
	clean := stripSponsor(title)
	lower := strings.ToLower(clean)

	for _, tm := range e.rules.TitleMappings {
		mapped := strings.ToLower(tm.Title)
		if lower != mapped && !strings.HasPrefix(lower, mapped) {
			continue
		}
		switch tm.Alias.Kind {
		case rules.AliasSkip:
			return nil, "", "", 0, false
		case rules.AliasMulti:
			return tm.Alias.Names, "title_mapping", "title_mapping", model.ConfidenceHigh, len(tm.Alias.Names) > 1
		default:
			return []string{tm.Alias.Name}, "title_mapping", "title_mapping", model.ConfidenceHigh, false
		}
	}

	for _, tr := range e.rules.TitleRules {
		m := tr.Pattern.FindStringSubmatch(title)
		if m == nil {
			continue
		}

		if tr.Duo && len(m) > 2 && m[2] != "" {
			var out []string
			for _, cap := range []string{m[1], m[2]} {
				cleaned, ok := e.cleanupName(cap)
				if ok {
					out = append(out, cleaned...)
				}
			}
			if len(out) > 0 {
				return out, tr.ID, tr.EventType, tr.Confidence, true
			}
			return nil, "", "", 0, false
		}

		cleaned, ok := e.cleanupName(m[1])
		if !ok || len(cleaned) == 0 {
			return nil, "", "", 0, false
		}
		// An alias table entry may expand one capture into co-participants.
		return cleaned, tr.ID, tr.EventType, tr.Confidence, len(cleaned) > 1
	}

	return nil, "", "", 0, false
}

type snippetEvidence struct {
	runScore    int
	strongScore int
	talkScore   int
	run         []model.Snippet
	talk        []model.Snippet
	timeHint    *model.TimeHint
}

// analyzeSnippets counts run and discussion indicators across all
// transcript snippets, retaining only the first K matches of each kind as
// evidence, and picks up the first elapsed-time mention as a hint.
func (e *Extractor) analyzeSnippets(snippets []model.Snippet) snippetEvidence {
	var ev snippetEvidence

	for _, sn := range snippets {
		text := normalize.Text(sn.Text)
		if text == "" {
			continue
		}

		for _, re := range e.rules.RunIndicators {
			if re.MatchString(text) {
				ev.runScore++
				if len(ev.run) < e.rules.MaxRunEvidence {
					ev.run = append(ev.run, model.Snippet{Text: text, StartTime: sn.StartTime})
				}
				break
			}
		}

		for _, re := range e.rules.TranscriptIndicators {
			if re.MatchString(text) {
				ev.strongScore++
				break
			}
		}

		for _, re := range e.rules.DiscussionIndicators {
			if re.MatchString(text) {
				ev.talkScore++
				if len(ev.talk) < e.rules.MaxDiscussionEvidence {
					ev.talk = append(ev.talk, model.Snippet{Text: text, StartTime: sn.StartTime})
				}
				break
			}
		}

		if ev.timeHint == nil {
			for _, re := range e.rules.TimePatterns {
				if m := re.FindString(text); m != "" {
					ev.timeHint = &model.TimeHint{
						Raw:       m,
						Context:   truncate(text, 150),
						StartTime: sn.StartTime,
					}
					break
				}
			}
		}
	}

	return ev
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
