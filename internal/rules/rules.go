// Package rules holds the ordered pattern tables that drive extraction:
// title rules, exclusion patterns, transcript indicators, the alias table
// and full-title mappings. A Ruleset is immutable configuration, built once
// at startup and passed into the extractor, so extraction stays a pure
// function of (record, ruleset).
package rules

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"runledger/internal/model"
)

// TitleRule is one entry of the ordered title-pattern list. Rules are
// tried top to bottom and the first match wins, so list order encodes
// priority.
type TitleRule struct {
	ID         string           // Rule identifier recorded on every claim
	Pattern    *regexp.Regexp   // Must capture the participant name(s)
	EventType  string           // Event-type tag for produced claims
	Confidence model.Confidence // Base confidence for title extractions
	Duo        bool             // Second capture group is a co-participant
}

// AliasKind discriminates the alias table's entry types.
type AliasKind int

const (
	AliasCanonical AliasKind = iota // Map the capture to one canonical name
	AliasMulti                      // The capture is really N co-participants
	AliasSkip                       // Explicitly ambiguous, drop the capture
)

// Alias is one alias-table entry: a canonical name, a participant list, or
// an explicit skip marker.
type Alias struct {
	Kind  AliasKind
	Name  string
	Names []string
}

// TitleMapping maps a full (sponsor-stripped) title directly to its
// participant(s), for titles that fit no regex shape. Matched exact or by
// prefix, in list order, before any title rule runs.
type TitleMapping struct {
	Title string
	Alias Alias
}

// Ruleset is the complete immutable rule configuration for one run.
type Ruleset struct {
	// Keyword is the tracked-event word that gates title processing.
	Keyword string

	// PriorityChannel marks the higher-fidelity source channel: when two
	// claims collapse to one dedup key, the claim whose Show contains
	// this tag wins.
	PriorityChannel string

	TitleRules           []TitleRule
	Exclusions           []*regexp.Regexp
	RunIndicators        []*regexp.Regexp
	TranscriptIndicators []*regexp.Regexp
	DiscussionIndicators []*regexp.Regexp
	TimePatterns         []*regexp.Regexp

	Aliases       map[string]Alias
	TitleMappings []TitleMapping

	// Evidence caps bound report size: only the first K matching
	// snippets are retained per record.
	MaxRunEvidence        int
	MaxDiscussionEvidence int
}

// Default returns the built-in ruleset.
func Default() *Ruleset {
	return &Ruleset{
		Keyword:         "gauntlet",
		PriorityChannel: "YouTube",

		TitleRules: []TitleRule{
			{
				ID:         "takes_on",
				Pattern:    regexp.MustCompile(`(?i)^(.+?)\s+Takes\s+On\s+(?:The\s+)?(?:Yak\s+)?Gauntlet`),
				EventType:  "takes_on",
				Confidence: model.ConfidenceHigh,
			},
			{
				ID:         "runs",
				Pattern:    regexp.MustCompile(`(?i)^(.+?)\s+Runs?\s+(?:The\s+)?(?:Yak\s+)?Gauntlet`),
				EventType:  "runs",
				Confidence: model.ConfidenceHigh,
			},
			{
				ID:         "dominates",
				Pattern:    regexp.MustCompile(`(?i)^(.+?)\s+(?:DOMINATES?|Dominated?)\s+(?:The\s+)?(?:Yak\s+)?Gauntlet`),
				EventType:  "dominates",
				Confidence: model.ConfidenceHigh,
			},
			{
				ID:         "duo_takes_on",
				Pattern:    regexp.MustCompile(`(?i)^(.+?)\s+(?:and|&)\s+(.+?)\s+Take\s+On\s+(?:The\s+)?(?:Yak\s+)?Gauntlet`),
				EventType:  "duo_takes_on",
				Confidence: model.ConfidenceHigh,
				Duo:        true,
			},
			{
				ID:         "our_guy",
				Pattern:    regexp.MustCompile(`(?i)^(?:Our\s+(?:Guy|Intern|New\s+Hire)?)\s*(.+?)\s+(?:Takes|Runs|Does)`),
				EventType:  "our_guy",
				Confidence: model.ConfidenceHigh,
			},
			{
				ID:         "swing_by",
				Pattern:    regexp.MustCompile(`(?i)^(.+?)\s+(?:Swings?\s+(?:By|Through)|Stops?\s+By)\s+(?:for|to)\s+(?:a\s+)?(?:Run\s+at\s+)?(?:the\s+)?Gauntlet`),
				EventType:  "swing_by",
				Confidence: model.ConfidenceMedium,
			},
		},

		// Titles that are not actual runs: compilations, retrospectives,
		// discussion of records, head-to-head matchups.
		Exclusions: compileAll(
			`(?i)^Best\s+of\s+(?:The\s+)?(?:Yak\s+)?Gauntlet`,
			`(?i)Every\s+Gauntlet`,
			`(?i)Gauntlet\s+Goalie`,
			`(?i)Gauntlet\s+Relay`,
			`(?i)Losing\s+Our\s+Gauntlet\s+Goalie`,
			`(?i)Pro\s+Athletes\s+are\s+Scared`,
			`(?i)One\s+of\s+the\s+Worst`,
			`(?i)New\s+Layer\s+to\s+the`,
			`(?i)Head\s+to\s+Head`,
			`(?i)New\s+Gauntlet\s+Goalie`,
			`(?i)^A New Gauntlet Record Has Been Set \|`,
			`(?i)^A New Athlete Yak Gauntlet Record Is Set \|`,
			`(?i)^A Few White Sox Stop By`,
			`(?i)Threaten Big Cat's Gauntlet Record \|`,
			`(?i)Is Big Cat the Best Gauntlet Athlete`,
			`(?i)Cheah Pulls Off The Ultimate Gauntlet Maneuver`,
			`(?i)KB Returns \+ Christian Yelich`,
		),

		// Phrases that indicate a run is actually happening in the
		// episode, as opposed to being talked about.
		RunIndicators: compileAll(
			`(?i)let'?s\s+do\s+(?:the\s+)?(?:body\s+armor\s+)?gauntlet`,
			`(?i)do\s+(?:the\s+)?(?:body\s+armor\s+)?gauntlet\s+(?:then|now|today)`,
			`(?i)gonna\s+do\s+(?:the\s+)?(?:a\s+)?gauntlet`,
			`(?i)going\s+to\s+do\s+(?:the\s+)?gauntlet`,
			`(?i)time\s+(?:for|to)\s+(?:the\s+)?gauntlet`,
			`(?i)owe\s+a?\s*(?:body\s+(?:gar\s+)?armor\s+)?gauntlet`,
			`(?i)get\s+up\s+there.*gauntlet`,
			`(?i)run(?:ning)?\s+the\s+gauntlet`,
			`(?i)takes?\s+on\s+the\s+gauntlet`,
			`(?i)doing\s+the\s+gauntlet`,
			`(?i)did\s+the\s+gauntlet`,
			`(?i)gauntlet\s+is\s+brought\s+to\s+you`,
			`(?i)final\s+time`,
			`(?i)gauntlet\s+time`,
			`(?i)time\s+(?:is|was|of)\s+\d`,
			`\d+:\d{2}\.\d{2}`,
			`(?i)\d+\s+minutes?\s+(?:and\s+)?\d+\s+seconds?`,
			`(?i)hockey\s+(?:shot|puck)`,
			`(?i)soccer\s+kick`,
			`(?i)basketball`,
			`(?i)football\s+(?:throw|toss)`,
			`(?i)putt(?:ing)?`,
			`(?i)cornhole`,
			`(?i)lacrosse`,
		),

		// Strong-commitment phrases that alone justify flagging an
		// episode whose title never mentions the keyword. Generic run
		// indicators (station names, elapsed times) are too noisy for
		// that: hosts putt and quote times in unrelated episodes.
		TranscriptIndicators: compileAll(
			`(?i)let'?s\s+do\s+(?:the\s+)?(?:body\s+armor\s+)?gauntlet`,
			`(?i)do\s+(?:the\s+)?(?:body\s+armor\s+)?gauntlet\s+(?:then|now|today)`,
			`(?i)gonna\s+do\s+(?:the\s+)?(?:a\s+)?gauntlet`,
			`(?i)going\s+to\s+do\s+(?:the\s+)?gauntlet`,
			`(?i)time\s+(?:for|to)\s+(?:the\s+)?gauntlet`,
			`(?i)owe\s+a?\s*(?:body\s+(?:gar\s+)?armor\s+)?gauntlet`,
		),

		// Phrases that suggest discussion about past runs.
		DiscussionIndicators: compileAll(
			`(?i)remember\s+(?:when|the)`,
			`(?i)that\s+time\s+(?:when|you)`,
			`(?i)best\s+gauntlet`,
			`(?i)worst\s+gauntlet`,
			`(?i)gauntlet\s+record`,
			`(?i)beat\s+(?:the|my|your|his|her)\s+(?:gauntlet\s+)?record`,
		),

		// Elapsed-time shapes used for the review time hint.
		TimePatterns: compileAll(
			`\d+:\d{2}\.\d{2}`,
			`\d+:\d{2}:\d{2}`,
			`(?i)\d+\s*minutes?\s*(?:and\s*)?\d+\s*seconds?`,
			`(?i)time\s*(?:of|was|is)?\s*\d+:\d{2}`,
			`(?i)final\s+time[:\s]+\d+:\d{2}`,
		),

		Aliases: map[string]Alias{
			"UFC Hall of Famer Clay Guida": Canonical("Clay Guida"),
			"White Boy Rick":               Canonical("White Boy Rick"),
			"White Boy Rick Finally":       Canonical("White Boy Rick"),
			"Our Guy Joey Avery":           Canonical("Joey Avery"),
			"Our Guy Matt":                 Canonical("Matt"),
			"Our Intern Wyatt":             Canonical("Wyatt"),
			"Our New Hire Mike Katic":      Canonical("Mike Katic"),
			"Chef Donny":                   Canonical("Chef Donny"),
			"Fat Perez":                    Canonical("Fat Perez"),
			"Billy the Pizza Man":          Canonical("Billy the Pizza Man"),
			"White Sox Pitcher Sean Burke": Canonical("Sean Burke"),
			"Big Cat and Wild Berry":       Multi("Big Cat", "Wild Berry"),
			"Brandon and Cinnamon Roll":    Multi("Brandon", "Cinnamon Roll"),
			"Kate and Hot Fudge Sundae":    Multi("Kate", "Hot Fudge Sundae"),
			"Maxine the Corgi":             Canonical("Maxine the Corgi"),
			"A Random Coworker":            Skip(), // Not a specific person
			"A Special Guest":              Skip(), // Needs identification
			"Shane Finally":                Canonical("Shane Gillis"),
			"Jerry":                        Canonical("Jerry O'Connell"),
		},

		TitleMappings: defaultTitleMappings(),

		MaxRunEvidence:        5,
		MaxDiscussionEvidence: 3,
	}
}

// defaultTitleMappings lists titles that fit no regex shape, mapped
// directly to their participants. Order matters: prefix matching walks the
// list top to bottom.
func defaultTitleMappings() []TitleMapping {
	m := func(title string, alias Alias) TitleMapping {
		return TitleMapping{Title: title, Alias: alias}
	}
	return []TitleMapping{
		m("KATE WITH THE GRANNY SHOT IN THE GAUNTLET", Canonical("Kate")),
		m("KB Dissed Danny HARD After His Gauntlet Run", Canonical("Danny")),
		m("Danny Gets ROASTED By KB After His Gauntlet Run", Canonical("Danny")),
		m("White Sox Pitcher Sean Burke Sets New Gauntlet Record", Canonical("Sean Burke")),
		m("Sean Burke Sets New Gauntlet Record", Canonical("Sean Burke")),
		m("Cheah's Vampire Gauntlet Run", Canonical("Cheah")),
		m("Is Ebo Top Contender to Beat Big Cat's Gauntlet Record", Canonical("Ebo")),
		m("Big Cat Almost Broke His Gauntlet Record", Canonical("Big Cat")),
		m("Nick Almost Broke the Gauntlet Record", Canonical("Nick")),
		m("Is Steven's Poor Gauntlet Time the Reason Why the Knicks Lost", Canonical("Steven Cheah")),
		m("KB Takes On The @planetfitness Gauntlet With His New Haircut", Canonical("KB")),
		m("KB Takes On The", Canonical("KB")), // Sponsor-stripped variant
		m("Sam Morril Sets a Comedian Gauntlet Record", Canonical("Sam Morril")),
		m("Kody Takes on the Gauntlet for the First Time", Canonical("Kody")),
		m("Gino Takes on the Gauntlet in His Hat", Canonical("Gino")),
		m("Harry Comes SO Close to Beating the Gauntlet Record", Canonical("Harry")),
		m("Tate Runs the Gauntlet in a Bunny Costume", Canonical("Tate")),
		m("Spider Puts Up the Third Best Gauntlet Run of All-Time", Canonical("Spider")),
		m("Sas STRUGGLES with the Gauntlet", Canonical("Sas")),
		m("Caleb Pressley DOMINATES The Yak Gauntlet", Canonical("Caleb Pressley")),
		m("All Business Pete Finally Agreed to Try the Yak Gauntlet", Canonical("All Business Pete")),
		m("Brandon Goes Full Dainty Mode in the Gauntlet", Canonical("Brandon Walker")),
		m("Nick Beat the Yak Gauntlet as a Pirate", Canonical("Nick")),
		m("Miresh Takes on the Yak Gauntlet", Canonical("Miresh")),
		m("Putting a Standup Comedian Through the Yak Gauntlet", Skip()),
		m("Paul Rabil's Gauntlet Football Toss", Canonical("Paul Rabil")),
		m("Luke Combs Takes Over The Yak and Dominates The Gauntlet", Canonical("Luke Combs")),
		m("Nick Foles Runs the Gauntlet and Meets The Tunnel", Canonical("Nick Foles")),
		m("Paul Skenes Takes on the Gauntlet", Canonical("Paul Skenes")),
		m("Fat Perez Takes on the Gauntlet", Canonical("Fat Perez")),
		m("Ari Shaffir Takes on the Gauntlet", Canonical("Ari Shaffir")),
		m("John Summit Takes on The Gauntlet", Canonical("John Summit")),
		m("Stavvy Delivers on His Big Promise and Runs The Gauntlet", Canonical("Stavvy")),
		m("Intern Saves Job With Gauntlet Redemption", Skip()),
		m("Gia Puts Up All-Time Numbers in the Yak Gauntlet", Canonical("Gia")),
		m("Joey Avery Runs Through the Gauntlet", Canonical("Joey Avery")),
		m("Dan Soder Braves The Yak Gauntlet", Canonical("Dan Soder")),
		m("Nick Colletti Takes on The Gauntlet", Canonical("Nick Colletti")),
		m("Alex Caruso Stops By for a Run at the Gauntlet", Canonical("Alex Caruso")),
		m("Jack Gohlke and the Detroit Tigers Swing Through for the Gauntlet", Multi("Jack Gohlke")),
		m("The Orioles Swing By to Take on the Gauntlet", Skip()),
		m("Sketch and Ryan Blaney Break Records in The Gauntlet", Multi("Sketch", "Ryan Blaney")),
		m("Cam Newton and Brandon Marshall Take On The Yak Gauntlet", Multi("Cam Newton", "Brandon Marshall")),
		m("Big Cat and Wild Berry Take On the Yak Gauntlet", Multi("Big Cat", "Wild Berry Pop-Tart")),
		m("Brandon and Cinnamon Roll Take On the Yak Gauntlet", Multi("Brandon Walker", "Cinnamon Roll Pop-Tart")),
		m("Kate and Hot Fudge Sundae Take On The Yak Gauntlet", Multi("Kate", "Hot Fudge Sundae Pop-Tart")),
		m("Maxine the Corgi Takes On the Gauntlet", Canonical("Maxine the Corgi")),
		m("Our Guy Matt Almost Broke the Gauntlet Record", Canonical("Matt")),
		m("Chef Donny Dominated His First Gauntlet Run", Canonical("Chef Donny")),
		m("Chef Donny DOMINATES His First Yak Gauntlet Run", Canonical("Chef Donny")),
		m("Mintzy Was Confused Running the Gauntlet", Canonical("Mintzy")),
		m("Steven Cheah", Canonical("Steven Cheah")),
		m("Is Steven's Poor Gauntlet Time", Canonical("Steven Cheah")),
	}
}

// Canonical builds a map-to-one-name alias entry.
func Canonical(name string) Alias { return Alias{Kind: AliasCanonical, Name: name} }

// Multi builds an alias entry expanding to several co-participants.
func Multi(names ...string) Alias { return Alias{Kind: AliasMulti, Names: names} }

// Skip builds the explicit "drop this capture" marker.
func Skip() Alias { return Alias{Kind: AliasSkip} }

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// fileRuleset is the YAML override schema. Any section left empty keeps
// the built-in table.
type fileRuleset struct {
	Keyword         string `yaml:"keyword"`
	PriorityChannel string `yaml:"priority_channel"`

	TitleRules []struct {
		ID         string `yaml:"id"`
		Pattern    string `yaml:"pattern"`
		EventType  string `yaml:"event_type"`
		Confidence string `yaml:"confidence"`
		Duo        bool   `yaml:"duo"`
	} `yaml:"title_rules"`

	Exclusions           []string `yaml:"exclusions"`
	RunIndicators        []string `yaml:"run_indicators"`
	TranscriptIndicators []string `yaml:"transcript_indicators"`
	DiscussionIndicators []string `yaml:"discussion_indicators"`

	Aliases map[string]struct {
		Name  string   `yaml:"name"`
		Names []string `yaml:"names"`
		Skip  bool     `yaml:"skip"`
	} `yaml:"aliases"`

	TitleMappings []struct {
		Title string   `yaml:"title"`
		Name  string   `yaml:"name"`
		Names []string `yaml:"names"`
		Skip  bool     `yaml:"skip"`
	} `yaml:"title_mappings"`
}

// Load returns the default ruleset with any sections present in the YAML
// file at path swapped in. An empty path returns the defaults unchanged.
func Load(path string) (*Ruleset, error) {
	rs := Default()
	if path == "" {
		return rs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var f fileRuleset
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	if f.Keyword != "" {
		rs.Keyword = f.Keyword
	}
	if f.PriorityChannel != "" {
		rs.PriorityChannel = f.PriorityChannel
	}

	if len(f.TitleRules) > 0 {
		rules := make([]TitleRule, 0, len(f.TitleRules))
		for _, tr := range f.TitleRules {
			re, err := regexp.Compile(tr.Pattern)
			if err != nil {
				return nil, fmt.Errorf("title rule %q: %w", tr.ID, err)
			}
			conf := model.ConfidenceHigh
			if tr.Confidence != "" {
				conf = model.ParseConfidence(tr.Confidence)
			}
			eventType := tr.EventType
			if eventType == "" {
				eventType = tr.ID
			}
			rules = append(rules, TitleRule{
				ID:         tr.ID,
				Pattern:    re,
				EventType:  eventType,
				Confidence: conf,
				Duo:        tr.Duo,
			})
		}
		rs.TitleRules = rules
	}

	if len(f.Exclusions) > 0 {
		if rs.Exclusions, err = compileChecked("exclusion", f.Exclusions); err != nil {
			return nil, err
		}
	}
	if len(f.RunIndicators) > 0 {
		if rs.RunIndicators, err = compileChecked("run indicator", f.RunIndicators); err != nil {
			return nil, err
		}
	}
	if len(f.TranscriptIndicators) > 0 {
		if rs.TranscriptIndicators, err = compileChecked("transcript indicator", f.TranscriptIndicators); err != nil {
			return nil, err
		}
	}
	if len(f.DiscussionIndicators) > 0 {
		if rs.DiscussionIndicators, err = compileChecked("discussion indicator", f.DiscussionIndicators); err != nil {
			return nil, err
		}
	}

	if len(f.Aliases) > 0 {
		aliases := make(map[string]Alias, len(f.Aliases))
		for k, v := range f.Aliases {
			switch {
			case v.Skip:
				aliases[k] = Skip()
			case len(v.Names) > 0:
				aliases[k] = Multi(v.Names...)
			default:
				aliases[k] = Canonical(v.Name)
			}
		}
		rs.Aliases = aliases
	}

	if len(f.TitleMappings) > 0 {
		mappings := make([]TitleMapping, 0, len(f.TitleMappings))
		for _, tm := range f.TitleMappings {
			var alias Alias
			switch {
			case tm.Skip:
				alias = Skip()
			case len(tm.Names) > 0:
				alias = Multi(tm.Names...)
			default:
				alias = Canonical(tm.Name)
			}
			mappings = append(mappings, TitleMapping{Title: tm.Title, Alias: alias})
		}
		rs.TitleMappings = mappings
	}

	return rs, nil
}

func compileChecked(kind string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%s pattern %q: %w", kind, p, err)
		}
		out = append(out, re)
	}
	return out, nil
}
