package extract

import (
	"testing"
	"time"

	"runledger/internal/model"
	"runledger/internal/rules"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	return New(rules.Default())
}

func record(title string, snippets ...model.Snippet) model.SourceRecord {
	return model.SourceRecord{
		ID:       "ep-1",
		Title:    title,
		Show:     "The Yak - YouTube",
		Date:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Snippets: snippets,
	}
}

func TestExtract_TitleRule(t *testing.T) {
	e := newTestExtractor(t)

	res := e.Extract(record("Jane Doe Takes On The Gauntlet"))
	if len(res.Claims) != 1 {
		t.Fatalf("claims = %d, want 1", len(res.Claims))
	}
	c := res.Claims[0]
	if c.Participant != "Jane Doe" {
		t.Errorf("participant = %q", c.Participant)
	}
	if c.Rule != "takes_on" {
		t.Errorf("rule = %q", c.Rule)
	}
	if c.Confidence != model.ConfidenceHigh {
		t.Errorf("confidence = %v", c.Confidence)
	}
	if c.RecordID != "ep-1" {
		t.Error("claim lost provenance to its source record")
	}
}

func TestExtract_ExclusionIsAbsolute(t *testing.T) {
	e := newTestExtractor(t)

	// Matches the "Best of" exclusion even though the takes-on shape is
	// also present in snippets.
	res := e.Extract(record(
		"Best of The Yak Gauntlet (Compilation)",
		model.Snippet{Text: "let's do the gauntlet"},
		model.Snippet{Text: "running the gauntlet"},
		model.Snippet{Text: "final time 3:42.15"},
	))
	if len(res.Claims) != 0 {
		t.Fatalf("excluded title produced %d claims", len(res.Claims))
	}
	if res.SkippedTitle == "" {
		t.Error("excluded title should be surfaced as skipped")
	}
}

func TestExtract_DuoRuleYieldsTwoClaims(t *testing.T) {
	e := newTestExtractor(t)

	res := e.Extract(record("Cam Newton and Brandon Marshall Take On The Yak Gauntlet"))
	if len(res.Claims) != 2 {
		t.Fatalf("claims = %d, want 2", len(res.Claims))
	}
	// Full-title mapping handles this one; both claims share provenance.
	if res.Claims[0].Participant != "Cam Newton" || res.Claims[1].Participant != "Brandon Marshall" {
		t.Errorf("participants = %q, %q", res.Claims[0].Participant, res.Claims[1].Participant)
	}
	for _, c := range res.Claims {
		if !c.IsDuo {
			t.Error("duo claim not tagged")
		}
		if c.RecordID != "ep-1" {
			t.Error("duo claim lost provenance")
		}
	}
}

func TestExtract_AliasSkipDropsClaim(t *testing.T) {
	e := newTestExtractor(t)

	res := e.Extract(record("A Special Guest Takes On The Gauntlet"))
	if len(res.Claims) != 0 {
		t.Fatalf("explicitly ambiguous capture produced %d claims", len(res.Claims))
	}
	if res.SkippedTitle == "" {
		t.Error("skipped title not surfaced")
	}
}

func TestExtract_AliasCanonicalizes(t *testing.T) {
	e := newTestExtractor(t)

	res := e.Extract(record("Shane Finally Runs The Gauntlet"))
	if len(res.Claims) != 1 || res.Claims[0].Participant != "Shane Gillis" {
		t.Fatalf("claims = %+v, want Shane Gillis", res.Claims)
	}
}

func TestExtract_RolePrefixStripped(t *testing.T) {
	e := newTestExtractor(t)

	res := e.Extract(record("Our Intern Wyatt Takes On The Gauntlet"))
	if len(res.Claims) != 1 || res.Claims[0].Participant != "Wyatt" {
		t.Fatalf("claims = %+v, want Wyatt", res.Claims)
	}
}

func TestExtract_SponsorTagStripped(t *testing.T) {
	e := newTestExtractor(t)

	res := e.Extract(record("Jane Doe @sponsor Takes On The Gauntlet"))
	if len(res.Claims) != 1 || res.Claims[0].Participant != "Jane Doe" {
		t.Fatalf("claims = %+v, want Jane Doe", res.Claims)
	}
}

func TestExtract_TitleMappingBeforeRules(t *testing.T) {
	e := newTestExtractor(t)

	// "Nick Beat the Yak Gauntlet as a Pirate" matches no title rule shape
	// and resolves only through the mapping table.
	res := e.Extract(record("Nick Beat the Yak Gauntlet as a Pirate"))
	if len(res.Claims) != 1 {
		t.Fatalf("claims = %d, want 1", len(res.Claims))
	}
	if res.Claims[0].Participant != "Nick" || res.Claims[0].Rule != "title_mapping" {
		t.Errorf("claim = %+v", res.Claims[0])
	}
}

func TestExtract_SnippetEvidenceCounted(t *testing.T) {
	e := newTestExtractor(t)

	res := e.Extract(record(
		"Jane Doe Takes On The Gauntlet",
		model.Snippet{Text: "Let's do the <em>gauntlet</em> then", StartTime: 4707},
		model.Snippet{Text: "remember when KB set the record"},
		model.Snippet{Text: "final time was 3:42.15", StartTime: 5100},
	))
	if len(res.Claims) != 1 {
		t.Fatalf("claims = %d, want 1", len(res.Claims))
	}
	c := res.Claims[0]
	if c.RunScore != 2 {
		t.Errorf("run score = %d, want 2", c.RunScore)
	}
	if c.TalkScore != 1 {
		t.Errorf("talk score = %d, want 1", c.TalkScore)
	}
	if len(c.Evidence) != 2 {
		t.Fatalf("evidence = %d, want 2", len(c.Evidence))
	}
	// Markup never leaks into retained evidence.
	if c.Evidence[0].Text != "Let's do the gauntlet then" {
		t.Errorf("evidence text = %q", c.Evidence[0].Text)
	}
	if c.TimeHint == nil || c.TimeHint.Raw != "3:42.15" {
		t.Errorf("time hint = %+v", c.TimeHint)
	}
}

func TestExtract_EvidenceCapped(t *testing.T) {
	rs := rules.Default()
	e := New(rs)

	snippets := make([]model.Snippet, 0, 12)
	for i := 0; i < 12; i++ {
		snippets = append(snippets, model.Snippet{Text: "running the gauntlet", StartTime: float64(i)})
	}
	res := e.Extract(record("Jane Doe Takes On The Gauntlet", snippets...))
	c := res.Claims[0]
	if c.RunScore != 12 {
		t.Errorf("run score = %d, want 12", c.RunScore)
	}
	if len(c.Evidence) != rs.MaxRunEvidence {
		t.Errorf("evidence = %d, want cap %d", len(c.Evidence), rs.MaxRunEvidence)
	}
	// Retention is by order of discovery.
	if c.Evidence[0].StartTime != 0 || c.Evidence[len(c.Evidence)-1].StartTime != float64(rs.MaxRunEvidence-1) {
		t.Errorf("evidence not first-K: %+v", c.Evidence)
	}
}

func TestExtract_TranscriptOnlyClaim(t *testing.T) {
	e := newTestExtractor(t)

	res := e.Extract(record(
		"A Totally Normal Tuesday Show",
		model.Snippet{Text: "alright, let's do the gauntlet then", StartTime: 100},
	))
	if len(res.Claims) != 1 {
		t.Fatalf("claims = %d, want 1", len(res.Claims))
	}
	c := res.Claims[0]
	if c.Identified() {
		t.Error("transcript-only claim should be unidentified")
	}
	if c.Rule != "transcript_indicators" {
		t.Errorf("rule = %q", c.Rule)
	}
}

func TestExtract_GenericIndicatorsNeedKeywordTitle(t *testing.T) {
	e := newTestExtractor(t)

	// Sports chatter and elapsed times show up in ordinary episodes;
	// without the keyword in the title they must not produce a claim.
	res := e.Extract(record(
		"A Totally Normal Tuesday Show",
		model.Snippet{Text: "he was putting on the green all morning"},
		model.Snippet{Text: "basketball was on in the background"},
		model.Snippet{Text: "final time 3:42.15"},
	))
	if len(res.Claims) != 0 {
		t.Errorf("generic indicators produced claims: %+v", res.Claims)
	}

	// The same snippets under a keyword title still count as run
	// evidence for the identified claim.
	res = e.Extract(record(
		"Jane Doe Takes On The Gauntlet",
		model.Snippet{Text: "final time 3:42.15"},
	))
	if len(res.Claims) != 1 || res.Claims[0].RunScore != 1 {
		t.Errorf("keyword title lost run evidence: %+v", res)
	}
}

func TestExtract_NoSignalNoClaim(t *testing.T) {
	e := newTestExtractor(t)

	res := e.Extract(record("A Totally Normal Tuesday Show",
		model.Snippet{Text: "we talked about sandwiches"}))
	if len(res.Claims) != 0 || res.SkippedTitle != "" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestExtract_MalformedFieldsDegrade(t *testing.T) {
	e := newTestExtractor(t)

	res := e.Extract(model.SourceRecord{ID: "ep-2"})
	if len(res.Claims) != 0 {
		t.Errorf("empty record produced claims: %+v", res.Claims)
	}
}
