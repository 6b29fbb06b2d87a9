package similarity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/docmesh/core"
)

type stubComparator struct {
	score float64
	err   error
}

func (s *stubComparator) Compare(_ context.Context, _, _ core.DocumentSection) (core.ComparisonResult, error) {
	if s.err != nil {
		return core.ComparisonResult{}, s.err
	}
	return core.ComparisonResult{SimilarityScore: s.score, Explanation: "stub"}, nil
}

func TestScorer_EmptyInputs(t *testing.T) {
	s := NewScorer()
	ctx := context.Background()

	assert.Equal(t, 0.0, s.Score(ctx, "", "anything"))
	assert.Equal(t, 0.0, s.Score(ctx, "anything", ""))
	assert.Equal(t, 0.0, s.Score(ctx, "", ""))
}

func TestScorer_Identity(t *testing.T) {
	s := NewScorer()
	ctx := context.Background()

	assert.Equal(t, 1.0, s.Score(ctx, "hello world", "hello world"))
	assert.Equal(t, 1.0, s.Score(ctx, "a", "a"))
}

func TestScorer_IdentityWithoutTokens(t *testing.T) {
	s := NewScorer()
	ctx := context.Background()

	// Whitespace-only inputs tokenize to empty sets; identity must hold anyway.
	assert.Equal(t, 1.0, s.Score(ctx, "   ", "   "))
	assert.Equal(t, 1.0, s.Score(ctx, "\t\n", "\t\n"))
}

func TestScorer_Symmetry(t *testing.T) {
	s := NewScorer()
	ctx := context.Background()

	pairs := [][2]string{
		{"the quick brown fox", "a quick brown dog"},
		{"introduction to go", "go introduction"},
		{"abc", "xyz"},
	}
	for _, p := range pairs {
		assert.Equal(t, s.Score(ctx, p[0], p[1]), s.Score(ctx, p[1], p[0]), "pair %v", p)
	}
}

func TestScorer_Bounds(t *testing.T) {
	s := NewScorer()
	ctx := context.Background()

	score := s.Score(ctx, "completely unrelated words", "zq xv jk")
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestScorer_TokenBlendToleratesReordering(t *testing.T) {
	s := NewScorer()
	seqOnly := NewScorer(func(o *ScorerOptions) { o.SequenceWeight = 1.0 })
	ctx := context.Background()

	a := "channels and goroutines in go"
	b := "go goroutines and channels in"
	assert.Greater(t, s.Score(ctx, a, b), seqOnly.Score(ctx, a, b))
}

func TestScorer_SemanticDelegate(t *testing.T) {
	s := NewScorer(func(o *ScorerOptions) {
		o.Comparator = &stubComparator{score: 0.9}
	})
	assert.Equal(t, 0.9, s.Score(context.Background(), "apples", "oranges"))
}

func TestScorer_SemanticDelegateClamped(t *testing.T) {
	ctx := context.Background()

	high := NewScorer(func(o *ScorerOptions) { o.Comparator = &stubComparator{score: 1.7} })
	assert.Equal(t, 1.0, high.Score(ctx, "a", "b"))

	low := NewScorer(func(o *ScorerOptions) { o.Comparator = &stubComparator{score: -0.3} })
	assert.Equal(t, 0.0, low.Score(ctx, "a", "b"))
}

func TestScorer_SemanticFallbackOnError(t *testing.T) {
	s := NewScorer(func(o *ScorerOptions) {
		o.Comparator = &stubComparator{err: errors.New("backend down")}
	})

	// Must not panic or propagate; identical inputs still score 1.0 via the
	// lexical baseline.
	assert.Equal(t, 1.0, s.Score(context.Background(), "same text", "same text"))
}
