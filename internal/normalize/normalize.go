// Package normalize canonicalizes free text and participant names before
// extraction and comparison.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Text strips HTML-like emphasis markup and collapses runs of whitespace.
// Transcript snippets arrive with search-highlight tags ("<em>gauntlet</em>")
// that must not leak into evidence or reports. Idempotent: angle brackets
// the parser decodes out of entities are re-escaped, so the output never
// contains a literal '<' and a second pass leaves it untouched.
func Text(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsRune(s, '<') {
		if doc, err := html.Parse(strings.NewReader(s)); err == nil {
			s = visibleText(doc)
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

var escapeAngles = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// visibleText walks the parsed fragment collecting text nodes, skipping
// script and style subtrees. Angle brackets in text content stay escaped
// so stripped text cannot be re-parsed as markup.
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			buf.WriteString(escapeAngles.Replace(n.Data))
			buf.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

// Identity reduces a participant name to its comparison key: lower-cased,
// alphanumeric-only. Returns "" for empty input, which downstream stages
// treat as "unidentified". Two mentions are the same identity when their
// keys are equal or one contains the other.
func Identity(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SameIdentity applies the containment-or-equality tolerance policy to two
// normalized identity keys. Empty keys never match anything: an
// unidentified participant cannot be linked to a ledger entry.
func SameIdentity(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// CollapseSpaces trims and collapses internal whitespace without touching
// markup. Used on titles, which never carry tags.
func CollapseSpaces(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
