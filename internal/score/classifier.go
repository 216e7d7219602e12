// Package score classifies claim confidence from accumulated evidence
// counters. The classifier is a total, deterministic function: no
// randomness, no learned weights, every output explainable from its
// inputs.
package score

import "runledger/internal/model"

// Classifier maps evidence counters onto the ordinal confidence scale.
type Classifier struct{}

// NewClassifier creates a new classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Inputs are the accumulated signals for one claim.
type Inputs struct {
	// TitleConfidence is the matching title rule's base confidence, when
	// a title rule produced the claim. Title extractions keep their
	// rule's declared confidence regardless of snippet counts.
	TitleConfidence *model.Confidence

	// TitleKeyword reports whether the tracked keyword appeared in the
	// title at all.
	TitleKeyword bool

	// Positive is the run-indicator snippet count, Negative the
	// discussion-indicator count.
	Positive int
	Negative int
}

// Classify returns the confidence level for the given counters.
//
// Snippet-only thresholds: 3+ positive indicators is HIGH, 1-2 is MEDIUM,
// a keyword-bearing title with no snippet evidence is TITLE_ONLY, and
// anything else is LOW. Increasing the positive count never lowers the
// result.
func (c *Classifier) Classify(in Inputs) model.Confidence {
	if in.TitleConfidence != nil {
		return *in.TitleConfidence
	}

	switch {
	case in.Positive >= 3:
		return model.ConfidenceHigh
	case in.Positive >= 1:
		return model.ConfidenceMedium
	case in.TitleKeyword:
		return model.ConfidenceTitleOnly
	default:
		return model.ConfidenceLow
	}
}

// ClassifyClaim applies Classify to an extracted claim and returns the
// claim with its final confidence. Claims produced by a title rule or
// title mapping carry their base confidence in Claim.Confidence already.
func (c *Classifier) ClassifyClaim(claim model.Claim) model.Claim {
	in := Inputs{
		Positive: claim.RunScore,
		Negative: claim.TalkScore,
	}
	switch claim.Rule {
	case "", "transcript_indicators":
		// Snippet-only extraction: thresholds decide.
	default:
		base := claim.Confidence
		in.TitleConfidence = &base
		in.TitleKeyword = true
	}
	claim.Confidence = c.Classify(in)
	return claim
}
