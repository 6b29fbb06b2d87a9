package similarity

import (
	"context"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/hupe1980/docmesh/core"
	"github.com/hupe1980/docmesh/logging"
)

// ScorerOptions configures a Scorer.
type ScorerOptions struct {
	// Comparator optionally delegates scoring to a semantic backend. Any
	// error from the delegate falls back to the lexical baseline.
	Comparator core.Comparator
	// SequenceWeight is the share of the sequence ratio in the blended
	// lexical score; the token overlap measure receives the remainder.
	SequenceWeight float64
	// Logger receives debug records for delegate fallbacks.
	Logger logging.Logger
}

// Scorer computes a normalized [0,1] similarity between two text fragments.
// A Scorer has no internal mutable state after construction and is safe for
// concurrent use.
type Scorer struct {
	comparator core.Comparator
	seqWeight  float64
	logger     logging.Logger
}

// NewScorer constructs a Scorer with optional overrides.
func NewScorer(optFns ...func(o *ScorerOptions)) *Scorer {
	opts := ScorerOptions{
		SequenceWeight: 0.6,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Scorer{
		comparator: opts.Comparator,
		seqWeight:  opts.SequenceWeight,
		logger:     opts.Logger,
	}
}

// Score returns the similarity of a and b in [0,1]. It is symmetric, returns
// 0 when either input is empty and 1 when both inputs are equal. Scoring is
// case-sensitive; callers wanting case-insensitive matching normalize first.
// Score never returns an error: a failing semantic delegate degrades to the
// lexical baseline.
func (s *Scorer) Score(ctx context.Context, a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	// Equal inputs are identical by definition; the token overlap component
	// cannot certify this for inputs that tokenize to nothing (whitespace-only
	// strings have empty token sets).
	if a == b {
		return 1.0
	}

	if s.comparator != nil {
		res, err := s.comparator.Compare(ctx,
			core.DocumentSection{Content: a},
			core.DocumentSection{Content: b},
		)
		if err == nil {
			return clamp01(res.SimilarityScore)
		}
		s.logger.Debug("similarity.semantic.fallback", "error", err.Error())
	}

	return s.lexical(a, b)
}

// lexical blends the sequence ratio with the token-set overlap measure. Both
// components are symmetric and equal 1 for identical inputs, so the blend
// preserves the identity and symmetry properties.
func (s *Scorer) lexical(a, b string) float64 {
	seq := sequenceRatio(a, b)
	tok := tokenOverlap(a, b)
	return s.seqWeight*seq + (1-s.seqWeight)*tok
}

// sequenceRatio is the longest-matching-blocks ratio over the two strings,
// computed at rune granularity.
func sequenceRatio(a, b string) float64 {
	m := difflib.NewMatcher(runeSeq(a), runeSeq(b))
	return m.Ratio()
}

func runeSeq(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// tokenOverlap is the size of the intersection of the whitespace-tokenized
// word sets divided by the size of the larger set. It tolerates reordered
// phrasing that the sequence ratio penalizes.
func tokenOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	common := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			common++
		}
	}

	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	return float64(common) / float64(larger)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
