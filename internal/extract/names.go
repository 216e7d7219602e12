package extract

import (
	"regexp"
	"strings"

	"runledger/internal/rules"
)

// Cleanup strips applied to captured participant strings, in order:
// sponsor tags, pipe-delimited suffixes, "Presented by" tails, trailing
// punctuation, and role prefixes.
var (
	sponsorTagRe  = regexp.MustCompile(`\s*[@#].*$`)
	pipeSuffixRe  = regexp.MustCompile(`\s*\|.*$`)
	presentedByRe = regexp.MustCompile(`(?i)\s*Presented\s+by.*$`)
	trailingDotRe = regexp.MustCompile(`\s*\.+$`)
	rolePrefixRe  = regexp.MustCompile(`(?i)^\s*(?:Our\s+(?:Guy|Intern|New\s+Hire)\s*)`)

	// Job-title prefixes removed after the alias table has had its say,
	// so aliases can still match the full captured string.
	jobPrefixRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:UFC\s+Hall\s+of\s+Famer\s+)`),
		regexp.MustCompile(`(?i)^(?:White\s+Sox\s+Pitcher\s+)`),
	}

	// Strips applied to titles before the full-title mapping lookup.
	titleSponsorRe = regexp.MustCompile(`(?i)\s*[.!]?\s*Presented\s+by.*$`)
	titleTagRe     = regexp.MustCompile(`(?i)\s*[@#]\w+.*$`)
)

// cleanupName canonicalizes a captured participant string. It returns the
// resolved name(s) and false when the capture is explicitly marked
// ambiguous (the claim must be dropped entirely) or reduces to nothing.
func (e *Extractor) cleanupName(raw string) ([]string, bool) {
	cleaned := raw
	cleaned = sponsorTagRe.ReplaceAllString(cleaned, "")
	cleaned = pipeSuffixRe.ReplaceAllString(cleaned, "")
	cleaned = presentedByRe.ReplaceAllString(cleaned, "")
	cleaned = trailingDotRe.ReplaceAllString(cleaned, "")
	cleaned = rolePrefixRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if alias, ok := e.rules.Aliases[cleaned]; ok {
		switch alias.Kind {
		case rules.AliasSkip:
			return nil, false
		case rules.AliasMulti:
			return alias.Names, true
		default:
			return []string{alias.Name}, true
		}
	}

	for _, re := range jobPrefixRes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return nil, false
	}
	return []string{cleaned}, true
}

// stripSponsor removes sponsor tails from a title before the full-title
// mapping lookup.
func stripSponsor(title string) string {
	t := titleSponsorRe.ReplaceAllString(title, "")
	t = titleTagRe.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}
