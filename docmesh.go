// Package docmesh provides a high-level façade over the document
// reconciliation engine and its services (storage, similarity, semantic
// capabilities, tools & logging). Most applications interact with this
// package by:
//  1. Creating a DocMesh via New() (optionally overriding the store, the
//     completion backend or the matcher tuning)
//  2. Writing sections through Writer() or the tool surface from Tools()
//  3. Optionally driving the deep research pipeline via DeepResearch()
//
// The façade delegates reconciliation to document.Writer while keeping setup
// ergonomics concise. All defaults are safe for local development and testing;
// production deployments typically supply a completion backend and a
// structured logger.
package docmesh

import (
	"fmt"

	"github.com/hupe1980/docmesh/core"
	"github.com/hupe1980/docmesh/document"
	"github.com/hupe1980/docmesh/llm"
	"github.com/hupe1980/docmesh/logging"
	"github.com/hupe1980/docmesh/research"
	"github.com/hupe1980/docmesh/semantic"
	"github.com/hupe1980/docmesh/similarity"
	"github.com/hupe1980/docmesh/storage"
	"github.com/hupe1980/docmesh/tool"
)

// Options configures the DocMesh instance.
type Options struct {
	// Store persists documents. Defaults to a filesystem store under
	// StorageDir.
	Store core.DocumentStore

	// StorageDir is the root directory of the default filesystem store. Only
	// consulted when Store is nil.
	StorageDir string

	// Completer backs the semantic comparator/merger and the research
	// pipeline. When nil, matching is purely lexical and merges use the
	// conservative local policy.
	Completer llm.Completer

	// AcceptThreshold overrides the similarity score above which a candidate
	// write merges into its best matching section. Zero keeps the default.
	AcceptThreshold float64

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// DocMesh is the high-level façade aggregating the writer, the tool surface
// and the research pipeline.
type DocMesh struct {
	opts     Options
	writer   *document.Writer
	research *research.DeepResearch
}

// New creates a new DocMesh instance with optional overrides. Any unset
// service is initialized with a sensible default.
func New(optFns ...func(o *Options)) (*DocMesh, error) {
	opts := Options{
		StorageDir: "documents",
		Logger:     logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	store := opts.Store
	if store == nil {
		fileStore, err := storage.NewFileStore(opts.StorageDir, func(o *storage.FileStoreOptions) {
			o.Logger = opts.Logger
		})
		if err != nil {
			return nil, fmt.Errorf("init document store: %w", err)
		}
		store = fileStore
	}

	var comparator core.Comparator
	var merger core.Merger
	if opts.Completer != nil {
		capability := semantic.NewCapability(opts.Completer, func(o *semantic.Options) {
			o.Logger = opts.Logger
		})
		comparator = capability
		merger = capability
	}

	scorer := similarity.NewScorer(func(o *similarity.ScorerOptions) {
		o.Comparator = comparator
		o.Logger = opts.Logger
	})
	matcher := similarity.NewMatcher(scorer)

	writer, err := document.NewWriter(store, func(o *document.WriterOptions) {
		o.Matcher = matcher
		o.Merger = merger
		if opts.AcceptThreshold > 0 {
			o.AcceptThreshold = opts.AcceptThreshold
		}
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, fmt.Errorf("init writer: %w", err)
	}

	m := &DocMesh{opts: opts, writer: writer}
	if opts.Completer != nil {
		m.research = research.NewDeepResearch(opts.Completer, writer, func(o *research.DeepResearchOptions) {
			o.Logger = opts.Logger
		})
	}

	return m, nil
}

// Writer returns the document writer facade.
func (m *DocMesh) Writer() *document.Writer { return m.writer }

// Tools returns the document management tools for registration with an agent
// runtime.
func (m *DocMesh) Tools() []tool.Tool {
	return tool.DocumentTools(m.writer, func(o *tool.FunctionToolOptions) {
		o.Logger = m.opts.Logger
	})
}

// DeepResearch returns the research pipeline, or nil when no completion
// backend was configured.
func (m *DocMesh) DeepResearch() *research.DeepResearch { return m.research }
