// Package llm is the optional identification oracle: given a title and
// transcript evidence for a run whose participant the rule tables could
// not name, it asks a language model for a structured guess. Suggestions
// are annotations for human reviewers only and never move an event
// between report partitions.
package llm

import (
	"context"
	"fmt"
	"strings"

	"runledger/internal/model"
)

// Provider is an identification oracle backend.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Identify asks the model who ran, given the episode evidence.
	// A nil suggestion with nil error means the model could not tell.
	Identify(ctx context.Context, req IdentifyRequest) (*model.Suggestion, error)

	// IsAvailable checks the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// IdentifyRequest carries the evidence for one unresolved run.
type IdentifyRequest struct {
	Title      string
	Show       string
	Evidence   []model.Snippet
	Discussion []model.Snippet
}

// BuildPrompt renders the identification prompt. The model only sees the
// transcript excerpts we pass it and must answer in strict JSON, so a
// refusal parses as cleanly as a guess.
func BuildPrompt(req IdentifyRequest) string {
	var b strings.Builder

	b.WriteString(`An obstacle-course segment happened in this episode, but the title does not name who ran it. From the title and transcript excerpts below, identify the participant.

Rules:
1. Use ONLY the text provided. Do not guess from outside knowledge.
2. Answer with a single JSON object, nothing else:
   {"participant": "<full name or null>", "time_hint": "<M:SS.cc or null>"}
3. If the excerpts do not name the runner, set "participant" to null.
4. Only report a time_hint if an elapsed time for the run appears verbatim.

`)

	fmt.Fprintf(&b, "Episode title: %s\n", req.Title)
	if req.Show != "" {
		fmt.Fprintf(&b, "Channel: %s\n", req.Show)
	}

	if len(req.Evidence) > 0 {
		b.WriteString("\nTranscript excerpts:\n")
		for _, s := range req.Evidence {
			fmt.Fprintf(&b, "- [%s] %s\n", formatOffset(s.StartTime), s.Text)
		}
	}
	if len(req.Discussion) > 0 {
		b.WriteString("\nRelated discussion:\n")
		for _, s := range req.Discussion {
			fmt.Fprintf(&b, "- %s\n", s.Text)
		}
	}

	return b.String()
}

func formatOffset(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
