package rules

import (
	"os"
	"path/filepath"
	"testing"

	"runledger/internal/model"
)

func TestDefault_RuleOrderIsPriority(t *testing.T) {
	rs := Default()

	// "X Takes On The Gauntlet" must hit the first rule, not any later one.
	title := "Jane Doe Takes On The Gauntlet"
	for i, rule := range rs.TitleRules {
		if rule.Pattern.MatchString(title) {
			if rule.ID != "takes_on" {
				t.Errorf("first matching rule = %q (index %d), want takes_on first", rule.ID, i)
			}
			break
		}
	}
}

func TestDefault_DuoRuleCapturesTwo(t *testing.T) {
	rs := Default()

	var duo *TitleRule
	for i := range rs.TitleRules {
		if rs.TitleRules[i].Duo {
			duo = &rs.TitleRules[i]
			break
		}
	}
	if duo == nil {
		t.Fatal("no duo rule in default ruleset")
	}

	m := duo.Pattern.FindStringSubmatch("Cam Newton and Brandon Marshall Take On The Yak Gauntlet")
	if m == nil {
		t.Fatal("duo rule did not match duo title")
	}
	if m[1] != "Cam Newton" || m[2] != "Brandon Marshall" {
		t.Errorf("duo captures = %q, %q", m[1], m[2])
	}
}

func TestDefault_ExclusionsCoverCompilations(t *testing.T) {
	rs := Default()
	excluded := []string{
		"Best of The Yak Gauntlet (SO FAR)",
		"Best of The Gauntlet (Compilation)",
		"Every Gauntlet From KB's Wild Week",
		"Gauntlet Goalie Tryouts",
		"Pro Athletes are Scared of the Gauntlet",
	}
	for _, title := range excluded {
		matched := false
		for _, re := range rs.Exclusions {
			if re.MatchString(title) {
				matched = true
				break
			}
		}
		if !matched {
			t.Errorf("expected exclusion match for %q", title)
		}
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	rs, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if rs.Keyword != "gauntlet" {
		t.Errorf("Keyword = %q, want gauntlet", rs.Keyword)
	}
	if len(rs.TitleRules) == 0 || len(rs.Exclusions) == 0 {
		t.Error("default tables should not be empty")
	}
}

func TestLoad_OverridesSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `
keyword: marathon
priority_channel: Video
title_rules:
  - id: finishes
    pattern: '(?i)^(.+?)\s+Finishes\s+The\s+Marathon'
    confidence: MEDIUM
aliases:
  "The Captain":
    name: "Jane Doe"
  "Mystery Runner":
    skip: true
  "The Twins":
    names: ["Ann", "Beth"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rs, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if rs.Keyword != "marathon" || rs.PriorityChannel != "Video" {
		t.Errorf("keyword/channel = %q/%q", rs.Keyword, rs.PriorityChannel)
	}
	if len(rs.TitleRules) != 1 {
		t.Fatalf("TitleRules len = %d, want 1", len(rs.TitleRules))
	}
	tr := rs.TitleRules[0]
	if tr.ID != "finishes" || tr.EventType != "finishes" || tr.Confidence != model.ConfidenceMedium {
		t.Errorf("unexpected rule: %+v", tr)
	}

	// Untouched sections keep defaults.
	if len(rs.RunIndicators) == 0 {
		t.Error("run indicators should keep defaults")
	}
	if len(rs.TranscriptIndicators) == 0 {
		t.Error("transcript indicators should keep defaults")
	}

	if a := rs.Aliases["The Captain"]; a.Kind != AliasCanonical || a.Name != "Jane Doe" {
		t.Errorf("canonical alias = %+v", a)
	}
	if a := rs.Aliases["Mystery Runner"]; a.Kind != AliasSkip {
		t.Errorf("skip alias = %+v", a)
	}
	if a := rs.Aliases["The Twins"]; a.Kind != AliasMulti || len(a.Names) != 2 {
		t.Errorf("multi alias = %+v", a)
	}
}

func TestLoad_BadPatternFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(path, []byte("exclusions: ['([']\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
