// Package semantic implements the external semantic capability boundary
// (core.Comparator / core.Merger) on top of an llm.Completer.
//
// Both operations prompt the model for a single JSON object and parse it
// strictly. Any transport failure or malformed output surfaces as an error;
// callers recover locally (the similarity scorer falls back to its lexical
// baseline, the reconciler falls back to the conservative merge policy), so
// a broken model backend can degrade quality but never break a write.
package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/docmesh/core"
	"github.com/hupe1980/docmesh/llm"
	"github.com/hupe1980/docmesh/logging"
)

const (
	compareInstructions = "You compare two document sections for semantic overlap. " +
		"Return a JSON object with keys \"similarity_score\" (number between 0 and 1) " +
		"and \"explanation\" (short string)."

	mergeInstructions = "You merge two document sections into one unified section without losing information. " +
		"Return a JSON object with keys \"merged_title\" (string), \"merged_content\" (string) " +
		"and \"source_sections\" (array of the source section titles)."
)

// Options configures a Capability.
type Options struct {
	// Logger receives debug records for raw model output on parse failures.
	Logger logging.Logger
}

// Capability implements core.Comparator and core.Merger using a single
// completion backend. It has no internal mutable state after construction and
// is safe for concurrent use.
type Capability struct {
	completer llm.Completer
	logger    logging.Logger
}

var (
	_ core.Comparator = (*Capability)(nil)
	_ core.Merger     = (*Capability)(nil)
)

// NewCapability constructs a Capability over the given completer.
func NewCapability(completer llm.Completer, optFns ...func(o *Options)) *Capability {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Capability{completer: completer, logger: opts.Logger}
}

// Compare implements core.Comparator.
func (c *Capability) Compare(ctx context.Context, a, b core.DocumentSection) (core.ComparisonResult, error) {
	resp, err := c.completer.Complete(ctx, llm.Request{
		Instructions: compareInstructions,
		Input:        sectionPairPrompt("Compare these two document sections:", a, b),
		ForceJSON:    true,
	})
	if err != nil {
		return core.ComparisonResult{}, fmt.Errorf("semantic compare: %w", err)
	}

	var result core.ComparisonResult
	if err := unmarshalObject(resp.Text, &result); err != nil {
		c.logger.Debug("semantic.compare.malformed", "output", resp.Text)
		return core.ComparisonResult{}, fmt.Errorf("semantic compare: %w", err)
	}
	if result.SimilarityScore < 0 || result.SimilarityScore > 1 {
		return core.ComparisonResult{}, fmt.Errorf("semantic compare: score %v out of range", result.SimilarityScore)
	}

	return result, nil
}

// Merge implements core.Merger.
func (c *Capability) Merge(ctx context.Context, a, b core.DocumentSection) (core.MergeResult, error) {
	resp, err := c.completer.Complete(ctx, llm.Request{
		Instructions: mergeInstructions,
		Input:        sectionPairPrompt("Merge these two document sections into a unified section:", a, b),
		ForceJSON:    true,
	})
	if err != nil {
		return core.MergeResult{}, fmt.Errorf("semantic merge: %w", err)
	}

	var result core.MergeResult
	if err := unmarshalObject(resp.Text, &result); err != nil {
		c.logger.Debug("semantic.merge.malformed", "output", resp.Text)
		return core.MergeResult{}, fmt.Errorf("semantic merge: %w", err)
	}
	if result.MergedTitle == "" && result.MergedContent == "" {
		return core.MergeResult{}, fmt.Errorf("semantic merge: empty result")
	}

	return result, nil
}

func sectionPairPrompt(task string, a, b core.DocumentSection) string {
	return fmt.Sprintf("%s\n\nSection 1 (%s):\n%s\n\nSection 2 (%s):\n%s",
		task, a.Title, a.Content, b.Title, b.Content)
}

// unmarshalObject parses the first JSON object found in the model output,
// tolerating surrounding prose and markdown code fences.
func unmarshalObject(text string, v any) error {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in model output")
	}
	return json.Unmarshal([]byte(text[start:end+1]), v)
}
