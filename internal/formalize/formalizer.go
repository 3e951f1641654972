package formalize

import (
	"context"

	"resumeforge/internal/ai"
	"resumeforge/internal/errors"
	"resumeforge/internal/types"
)

// Source identifies which path produced a formalized list.
const (
	SourceOracle   = "oracle"
	SourceFallback = "fallback"
)

// Outcome is the result of formalizing one list of lines. Lines always
// has the same length and order as the (cleaned) input.
type Outcome struct {
	Lines  []string
	Source string
	Reason string // why the fallback ran; empty on oracle success
	Usage  *ai.TokenUsage
}

// Formalizer normalizes shorthand resume lines into polished ones. With
// an oracle it asks for a contextual rewrite and verifies the reply; in
// every failure mode it degrades to the deterministic local pass, so a
// caller always gets usable lines back.
type Formalizer struct {
	oracle ai.Oracle // nil means deterministic-only mode
	logger *errors.Logger
}

// New creates a Formalizer. A nil oracle is valid and selects the
// deterministic fallback for every call.
func New(oracle ai.Oracle, logger *errors.Logger) *Formalizer {
	return &Formalizer{oracle: oracle, logger: logger}
}

// HasOracle reports whether an oracle is wired in.
func (f *Formalizer) HasOracle() bool {
	return f.oracle != nil
}

// FormalizeList normalizes one category of lines. The cardinality
// invariant holds on every path: len(out.Lines) equals the number of
// non-blank input items, in input order.
func (f *Formalizer) FormalizeList(ctx context.Context, items []string, category types.ContentCategory, userCity, userState string) Outcome {
	cleaned := CleanList(items)
	if len(cleaned) == 0 {
		return Outcome{Lines: []string{}, Source: SourceFallback}
	}

	locallyCleaned := make([]string, len(cleaned))
	for i, item := range cleaned {
		locallyCleaned[i] = LocalCleanup(item)
	}

	if f.oracle != nil {
		raw, usage, err := f.oracle.FormalizeList(ctx, types.FormalizeInput{
			Items:     locallyCleaned,
			Category:  category,
			UserCity:  userCity,
			UserState: userState,
		})
		if err != nil {
			f.logger.Warn("Formalizer falling back after oracle error",
				"category", string(category),
				"item_count", len(cleaned),
				"error", err.Error())
			return f.fallback(locallyCleaned, category, "oracle call failed")
		}

		arr, ok := ParseStringArray(raw, len(cleaned))
		if !ok {
			f.logger.Warn("Formalizer falling back on reply shape mismatch",
				"category", string(category),
				"expected", len(cleaned),
				"raw_length", len(raw))
			return f.fallback(locallyCleaned, category, "reply shape mismatch")
		}

		return Outcome{
			Lines:  PostProcess(arr, category),
			Source: SourceOracle,
			Usage:  usage,
		}
	}

	return f.fallback(locallyCleaned, category, "no oracle configured")
}

// fallback runs the deterministic path: post-processing over the locally
// cleaned lines, plus light title-casing for hobbies and skills. Oracle
// output never gets the title-casing - the oracle is trusted to case
// things itself.
func (f *Formalizer) fallback(locallyCleaned []string, category types.ContentCategory, reason string) Outcome {
	lines := PostProcess(locallyCleaned, category)

	if category == types.CategoryHobbies || category == types.CategorySkills {
		cased := make([]string, len(lines))
		for i, line := range lines {
			cased[i] = TitleCaseLite(line)
		}
		lines = cased
	}

	return Outcome{Lines: lines, Source: SourceFallback, Reason: reason}
}
