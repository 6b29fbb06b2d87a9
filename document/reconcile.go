package document

import (
	"context"
	"time"

	"github.com/hupe1980/docmesh/core"
	"github.com/hupe1980/docmesh/logging"
	"github.com/hupe1980/docmesh/similarity"
)

// DefaultAcceptThreshold is the matcher score above which a candidate is
// merged into an existing section instead of creating a new one.
const DefaultAcceptThreshold = 0.7

// Outcome describes the result of reconciling one candidate write: exactly
// one of "new section created" or "existing section merged" happened, and the
// document version advanced by 1 either way.
type Outcome struct {
	SectionID  string
	Section    *core.DocumentSection
	IsNew      bool
	MatchScore float64
}

// ReconcilerOptions configures a Reconciler.
type ReconcilerOptions struct {
	// Merger optionally performs LLM-assisted merges. When nil, or when it
	// fails, the conservative local fallback applies.
	Merger core.Merger
	// AcceptThreshold overrides DefaultAcceptThreshold.
	AcceptThreshold float64
	// Logger receives debug records for match and fallback decisions.
	Logger logging.Logger
}

// Reconciler decides whether incoming content is a new section of a document
// or an update to an existing one, and applies the mutation. Empty titles and
// contents are accepted as valid inputs; a section may legitimately have an
// empty body pending future content.
type Reconciler struct {
	matcher   *similarity.Matcher
	merger    core.Merger
	threshold float64
	logger    logging.Logger
}

// NewReconciler constructs a Reconciler using the given matcher.
func NewReconciler(matcher *similarity.Matcher, optFns ...func(o *ReconcilerOptions)) *Reconciler {
	opts := ReconcilerOptions{
		AcceptThreshold: DefaultAcceptThreshold,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Reconciler{
		matcher:   matcher,
		merger:    opts.Merger,
		threshold: opts.AcceptThreshold,
		logger:    opts.Logger,
	}
}

// Reconcile applies the candidate (title, content) to the document. Below the
// acceptance threshold it allocates a new positional section id with version
// 0; at or above it, it merges into the matched section and increments that
// section's version. The document version always advances by exactly 1.
func (r *Reconciler) Reconcile(ctx context.Context, doc *core.Document, title, content string) Outcome {
	now := time.Now()

	matchID, score := r.matcher.BestMatch(ctx, doc, title, content)
	if matchID == "" || score < r.threshold {
		sectionID := doc.NextSectionID()
		section := &core.DocumentSection{
			Title:         title,
			Content:       content,
			Version:       0,
			LastModified:  now,
			ContextTokens: core.TokenCount(content),
		}
		doc.PutSection(sectionID, section)
		doc.Version++
		doc.LastModified = now

		r.logger.Debug("reconcile.new_section", "section_id", sectionID, "match_score", score)

		return Outcome{SectionID: sectionID, Section: section, IsNew: true, MatchScore: score}
	}

	existing, _ := doc.Section(matchID)
	mergedTitle, mergedContent := r.merge(ctx, existing, title, content)

	// The merge result is fully computed before any mutation so a failed or
	// cancelled capability call never leaves the section half-updated.
	existing.Title = mergedTitle
	existing.Content = mergedContent
	existing.Version++
	existing.LastModified = now
	existing.ContextTokens = core.TokenCount(mergedContent)
	doc.Version++
	doc.LastModified = now

	r.logger.Debug("reconcile.merged", "section_id", matchID, "match_score", score, "section_version", existing.Version)

	return Outcome{SectionID: matchID, Section: existing, IsNew: false, MatchScore: score}
}

// merge prefers the external merge capability and falls back to the
// conservative local policy: keep the existing title when present, replace
// the content wholesale with the candidate's. The fallback is lossy but safe;
// callers requiring lossless merge-on-failure retry above this layer.
func (r *Reconciler) merge(ctx context.Context, existing *core.DocumentSection, title, content string) (string, string) {
	if r.merger != nil {
		res, err := r.merger.Merge(ctx, *existing, core.DocumentSection{Title: title, Content: content})
		if err == nil {
			return res.MergedTitle, res.MergedContent
		}
		r.logger.Warn("reconcile.merge.fallback", "error", err.Error())
	}

	mergedTitle := existing.Title
	if mergedTitle == "" {
		mergedTitle = title
	}
	return mergedTitle, content
}
