// Package document implements the section reconciliation engine: the merge
// policy deciding whether incoming agent writes are duplicates, updates or
// new sections, and the Writer facade composing matching, merging, versioning
// and persistence behind the public operation surface.
package document

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/docmesh/core"
	"github.com/hupe1980/docmesh/logging"
	"github.com/hupe1980/docmesh/similarity"
)

// WriterOptions configures a Writer.
type WriterOptions struct {
	// Matcher locates the best existing section for a candidate write.
	// Defaults to a purely lexical matcher.
	Matcher *similarity.Matcher
	// Merger optionally performs LLM-assisted merges.
	Merger core.Merger
	// AcceptThreshold overrides the reconciler's merge threshold.
	AcceptThreshold float64
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Writer is the public operation surface over the document subsystem. It owns
// an in-process cache of loaded documents kept write-through consistent with
// the store: every mutation is applied to the cached document and flushed to
// storage before the call returns, so a subsequent Get within the same
// process observes it.
//
// Writes to the same document id are serialized internally with a per-id
// mutex; callers may issue concurrent operations freely.
type Writer struct {
	store      core.DocumentStore
	reconciler *Reconciler
	logger     logging.Logger

	mu        sync.Mutex
	documents map[string]*core.Document
	locks     map[string]*sync.Mutex
}

// NewWriter constructs a Writer over the given store and hydrates its cache
// by loading every listed document.
func NewWriter(store core.DocumentStore, optFns ...func(o *WriterOptions)) (*Writer, error) {
	opts := WriterOptions{
		AcceptThreshold: DefaultAcceptThreshold,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Matcher == nil {
		opts.Matcher = similarity.NewMatcher(similarity.NewScorer())
	}

	w := &Writer{
		store: store,
		reconciler: NewReconciler(opts.Matcher, func(o *ReconcilerOptions) {
			o.Merger = opts.Merger
			o.AcceptThreshold = opts.AcceptThreshold
			o.Logger = opts.Logger
		}),
		logger:    opts.Logger,
		documents: make(map[string]*core.Document),
		locks:     make(map[string]*sync.Mutex),
	}

	listed, err := store.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	for docID := range listed {
		doc, err := store.Load(docID)
		if err != nil {
			w.logger.Warn("writer.hydrate.skip", "doc_id", docID, "error", err.Error())
			continue
		}
		if doc != nil {
			w.documents[docID] = doc
		}
	}

	return w, nil
}

// docLock returns the serialization point for a document id, creating it
// lazily.
func (w *Writer) docLock(docID string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	l, ok := w.locks[docID]
	if !ok {
		l = &sync.Mutex{}
		w.locks[docID] = l
	}
	return l
}

func (w *Writer) cached(docID string) (*core.Document, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	doc, ok := w.documents[docID]
	return doc, ok
}

func (w *Writer) commit(docID string, doc *core.Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.documents[docID] = doc
}

// CreateOptions configures a Create call.
type CreateOptions struct {
	// Metadata is attached to the new document and surfaces in List results.
	Metadata map[string]string
}

// Create creates a new empty document, persists it and returns a snapshot.
// When the id already exists the existing document is returned unchanged —
// existing content and metadata are never silently discarded.
func (w *Writer) Create(docID string, optFns ...func(o *CreateOptions)) (*core.Document, error) {
	opts := CreateOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	lock := w.docLock(docID)
	lock.Lock()
	defer lock.Unlock()

	if doc, ok := w.cached(docID); ok {
		return doc.Clone(), nil
	}

	doc := core.NewDocument()
	for _, key := range sortedKeys(opts.Metadata) {
		doc.AddMetadata(key, opts.Metadata[key])
	}
	if err := w.store.Save(docID, doc); err != nil {
		return nil, err
	}
	w.commit(docID, doc)

	w.logger.Info("writer.create", "doc_id", docID)

	return doc.Clone(), nil
}

// Get returns a snapshot of a known document or core.ErrDocumentNotFound.
func (w *Writer) Get(docID string) (*core.Document, error) {
	doc, ok := w.cached(docID)
	if !ok {
		return nil, fmt.Errorf("document %q: %w", docID, core.ErrDocumentNotFound)
	}
	return doc.Clone(), nil
}

// UpdateSection reconciles the candidate (title, content) into the document,
// creating the document implicitly when the id is unknown, and flushes the
// result to storage before returning. On a storage failure the cache is left
// at the pre-call state so it stays consistent with what a reader of the
// store would observe.
func (w *Writer) UpdateSection(ctx context.Context, docID, title, content string) (*core.DocumentSection, error) {
	lock := w.docLock(docID)
	lock.Lock()
	defer lock.Unlock()

	var work *core.Document
	if doc, ok := w.cached(docID); ok {
		work = doc.Clone()
	} else {
		work = core.NewDocument()
	}

	outcome := w.reconciler.Reconcile(ctx, work, title, content)

	if err := w.store.Save(docID, work); err != nil {
		return nil, err
	}
	w.commit(docID, work)

	w.logger.Info("writer.update_section",
		"doc_id", docID,
		"section_id", outcome.SectionID,
		"is_new", outcome.IsNew,
		"match_score", outcome.MatchScore,
		"doc_version", work.Version,
	)

	section := *outcome.Section
	return &section, nil
}

// OrganizeSections greedily buckets the document's sections, in insertion
// order, into groups whose accumulated context tokens stay within maxTokens;
// a section that would overflow the running group closes it and starts the
// next one. The operation is read-only: no section is reordered, duplicated
// or dropped, and every section id appears in exactly one group.
func (w *Writer) OrganizeSections(docID string, maxTokens int) ([][]string, error) {
	doc, ok := w.cached(docID)
	if !ok {
		return nil, fmt.Errorf("document %q: %w", docID, core.ErrDocumentNotFound)
	}

	var groups [][]string
	var current []string
	tokens := 0

	for _, id := range doc.SectionIDs() {
		section, ok := doc.Section(id)
		if !ok {
			continue
		}
		if len(current) > 0 && tokens+section.ContextTokens > maxTokens {
			groups = append(groups, current)
			current = nil
			tokens = 0
		}
		current = append(current, id)
		tokens += section.ContextTokens
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups, nil
}

// List returns all stored documents with their metadata, delegating directly
// to the store.
func (w *Writer) List() (map[string]map[string]string, error) {
	return w.store.List()
}

// sortedKeys keeps metadata item order deterministic in the persisted record.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
