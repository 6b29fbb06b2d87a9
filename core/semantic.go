package core

import "context"

// ComparisonResult is the outcome of a semantic comparison between two
// document sections.
type ComparisonResult struct {
	SimilarityScore float64 `json:"similarity_score"` // Normalized score in [0,1]
	Explanation     string  `json:"explanation"`      // Why the sections are (dis)similar
}

// MergeResult is the outcome of semantically merging two document sections
// into one unified section.
type MergeResult struct {
	MergedTitle    string   `json:"merged_title"`
	MergedContent  string   `json:"merged_content"`
	SourceSections []string `json:"source_sections"`
}

// Comparator scores the semantic similarity of two sections. Implementations
// are typically backed by an LLM call and therefore fallible and latent;
// callers must treat errors as a signal to fall back to lexical scoring, not
// as a hard failure.
type Comparator interface {
	Compare(ctx context.Context, a, b DocumentSection) (ComparisonResult, error)
}

// Merger produces a unified section from two sections. Like Comparator it is
// fallible; callers fall back to a conservative local merge policy on error.
type Merger interface {
	Merge(ctx context.Context, a, b DocumentSection) (MergeResult, error)
}
