package research

import (
	"context"
	"fmt"

	"github.com/hupe1980/docmesh/core"
	"github.com/hupe1980/docmesh/document"
	"github.com/hupe1980/docmesh/llm"
	"github.com/hupe1980/docmesh/logging"
)

// DeepResearchOptions configures a DeepResearch pipeline.
type DeepResearchOptions struct {
	// Runner overrides the default runner built over the completer.
	Runner *Runner
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// DeepResearch assembles a research document for a query: the query is
// expanded into related queries, the qna agent covers them with
// question/answer pairs, and each pair is written to the document as a
// section through the writer facade (near-duplicate answers merge instead of
// proliferating).
type DeepResearch struct {
	writer   *document.Writer
	runner   *Runner
	expander *QueryExpander
	qna      *QnaEngine
	logger   logging.Logger
}

// NewDeepResearch constructs a DeepResearch pipeline over a completion
// backend and a document writer.
func NewDeepResearch(completer llm.Completer, writer *document.Writer, optFns ...func(o *DeepResearchOptions)) *DeepResearch {
	opts := DeepResearchOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	runner := opts.Runner
	if runner == nil {
		runner = NewRunner(completer, func(o *RunnerOptions) {
			o.Logger = opts.Logger
		})
	}

	return &DeepResearch{
		writer:   writer,
		runner:   runner,
		expander: NewQueryExpander(runner, func(o *QueryExpanderOptions) { o.Logger = opts.Logger }),
		qna:      NewQnaEngine(runner, func(o *QnaEngineOptions) { o.Logger = opts.Logger }),
		logger:   opts.Logger,
	}
}

// Runner exposes the pipeline's agent runner for direct agent invocation.
func (d *DeepResearch) Runner() *Runner { return d.runner }

// Deep researches the query into the given document and returns a snapshot of
// the result. The document is created up front with the researched query
// recorded in its metadata, and each generated question becomes a section
// title with its answer as content. Expansion and qna degrade rather than
// fail; Deep itself fails only on document writes.
func (d *DeepResearch) Deep(ctx context.Context, docID, query string) (*core.Document, error) {
	if _, err := d.writer.Create(docID, func(o *document.CreateOptions) {
		o.Metadata = map[string]string{"query": query}
	}); err != nil {
		return nil, fmt.Errorf("deep research: %w", err)
	}

	queries := d.expander.Expand(ctx, query)
	d.logger.Info("research.deep.expanded", "doc_id", docID, "query_count", len(queries))

	pairs := d.qna.Generate(ctx, queries)
	d.logger.Info("research.deep.qna", "doc_id", docID, "pair_count", len(pairs))

	for _, pair := range pairs {
		if _, err := d.writer.UpdateSection(ctx, docID, pair.Question, pair.Answer); err != nil {
			return nil, fmt.Errorf("deep research: write section: %w", err)
		}
	}

	return d.writer.Get(docID)
}
