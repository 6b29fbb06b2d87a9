package document

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docmesh/core"
)

// memStore is an in-memory core.DocumentStore for writer tests, with an
// optional injected save failure.
type memStore struct {
	mu       sync.Mutex
	docs     map[string]*core.Document
	failSave bool
}

var _ core.DocumentStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]*core.Document)}
}

func (s *memStore) Save(docID string, doc *core.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errors.New("disk full")
	}
	s.docs[docID] = doc.Clone()
	return nil
}

func (s *memStore) Load(docID string) (*core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[docID]
	if !ok {
		return nil, nil
	}
	return doc.Clone(), nil
}

func (s *memStore) List() (map[string]map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]map[string]string, len(s.docs))
	for id, doc := range s.docs {
		out[id] = doc.MetadataMap()
	}
	return out, nil
}

type stubMerger struct {
	result core.MergeResult
	err    error
	calls  int
}

func (m *stubMerger) Merge(_ context.Context, a, b core.DocumentSection) (core.MergeResult, error) {
	m.calls++
	if m.err != nil {
		return core.MergeResult{}, m.err
	}
	return m.result, nil
}

func newTestWriter(t *testing.T, optFns ...func(o *WriterOptions)) *Writer {
	t.Helper()
	w, err := NewWriter(newMemStore(), optFns...)
	require.NoError(t, err)
	return w
}

func TestWriter_NewSectionCreation(t *testing.T) {
	w := newTestWriter(t)

	section, err := w.UpdateSection(context.Background(), "doc1", "Introduction", "Hello world")
	require.NoError(t, err)
	assert.Equal(t, "Introduction", section.Title)
	assert.Equal(t, "Hello world", section.Content)
	assert.Equal(t, 0, section.Version)
	assert.Equal(t, 2, section.ContextTokens)

	doc, err := w.Get("doc1")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, []string{"section_1"}, doc.SectionIDs())
}

func TestWriter_MergeOnNearDuplicate(t *testing.T) {
	w := newTestWriter(t)
	ctx := context.Background()

	_, err := w.UpdateSection(ctx, "doc1", "Introduction", "Hello world")
	require.NoError(t, err)

	// Same title, slightly extended content: crosses the strict threshold.
	section, err := w.UpdateSection(ctx, "doc1", "Introduction", "Hello world again")
	require.NoError(t, err)
	assert.Equal(t, 1, section.Version)

	doc, err := w.Get("doc1")
	require.NoError(t, err)
	assert.Equal(t, []string{"section_1"}, doc.SectionIDs(), "merge must not create a second section")
	assert.Equal(t, 2, doc.Version)
}

func TestWriter_DistinctTopicsStayDistinct(t *testing.T) {
	w := newTestWriter(t)
	ctx := context.Background()

	_, err := w.UpdateSection(ctx, "doc1", "Introduction", "Hello world")
	require.NoError(t, err)
	_, err = w.UpdateSection(ctx, "doc1", "Benchmarks", "Latency and throughput numbers under load.")
	require.NoError(t, err)

	doc, err := w.Get("doc1")
	require.NoError(t, err)
	assert.Equal(t, []string{"section_1", "section_2"}, doc.SectionIDs())
	assert.Equal(t, 2, doc.Version)
}

func TestWriter_LLMAssistedMerge(t *testing.T) {
	merger := &stubMerger{result: core.MergeResult{
		MergedTitle:   "Introduction (unified)",
		MergedContent: "Hello world, now unified.",
	}}
	w := newTestWriter(t, func(o *WriterOptions) { o.Merger = merger })
	ctx := context.Background()

	_, err := w.UpdateSection(ctx, "doc1", "Introduction", "Hello world")
	require.NoError(t, err)
	section, err := w.UpdateSection(ctx, "doc1", "Introduction", "Hello world again")
	require.NoError(t, err)

	assert.Equal(t, 1, merger.calls)
	assert.Equal(t, "Introduction (unified)", section.Title)
	assert.Equal(t, "Hello world, now unified.", section.Content)
	assert.Equal(t, 1, section.Version)
	assert.Equal(t, core.TokenCount("Hello world, now unified."), section.ContextTokens)
}

func TestWriter_FallbackMergeOnMergerError(t *testing.T) {
	merger := &stubMerger{err: errors.New("model timeout")}
	w := newTestWriter(t, func(o *WriterOptions) { o.Merger = merger })
	ctx := context.Background()

	_, err := w.UpdateSection(ctx, "doc1", "Introduction", "Hello world")
	require.NoError(t, err)

	// No error escapes; the conservative fallback keeps the existing title
	// and takes the candidate content verbatim.
	section, err := w.UpdateSection(ctx, "doc1", "Introduction", "Hello world again")
	require.NoError(t, err)
	assert.Equal(t, 1, merger.calls)
	assert.Equal(t, "Introduction", section.Title)
	assert.Equal(t, "Hello world again", section.Content)
	assert.Equal(t, 1, section.Version)
}

func TestWriter_VersionMonotonicity(t *testing.T) {
	w := newTestWriter(t)
	ctx := context.Background()

	topics := [][2]string{
		{"Introduction", "Hello world"},
		{"Introduction", "Hello world again"}, // merge
		{"Benchmarks", "Latency and throughput numbers under load."},
		{"Benchmarks", "Latency and throughput numbers under heavy load."}, // merge
		{"References", "Further reading material and citations."},
	}

	for n, topic := range topics {
		_, err := w.UpdateSection(ctx, "doc1", topic[0], topic[1])
		require.NoError(t, err)

		doc, err := w.Get("doc1")
		require.NoError(t, err)
		assert.Equal(t, n+1, doc.Version, "document version must advance by exactly 1 per write")
	}
}

func TestWriter_CreateIsIdempotent(t *testing.T) {
	w := newTestWriter(t)
	ctx := context.Background()

	_, err := w.UpdateSection(ctx, "doc1", "Introduction", "Hello world")
	require.NoError(t, err)

	// Creating an existing document must not discard its content.
	doc, err := w.Create("doc1")
	require.NoError(t, err)
	assert.Equal(t, []string{"section_1"}, doc.SectionIDs())
	assert.Equal(t, 1, doc.Version)
}

func TestWriter_CreateWithMetadata(t *testing.T) {
	w := newTestWriter(t)

	_, err := w.Create("doc1", func(o *CreateOptions) {
		o.Metadata = map[string]string{"query": "greetings", "source": "unit"}
	})
	require.NoError(t, err)

	doc, err := w.Get("doc1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"query": "greetings", "source": "unit"}, doc.MetadataMap())

	// Metadata surfaces through List.
	docs, err := w.List()
	require.NoError(t, err)
	assert.Equal(t, "greetings", docs["doc1"]["query"])

	// Item order is deterministic regardless of map iteration order.
	assert.Equal(t,
		[]core.MetadataItem{{Key: "query", Value: "greetings"}, {Key: "source", Value: "unit"}},
		doc.Metadata,
	)

	// Re-creating with different metadata must not overwrite the original.
	_, err = w.Create("doc1", func(o *CreateOptions) {
		o.Metadata = map[string]string{"query": "overwritten"}
	})
	require.NoError(t, err)
	doc, err = w.Get("doc1")
	require.NoError(t, err)
	assert.Equal(t, "greetings", doc.MetadataMap()["query"])
}

func TestWriter_GetUnknownDocument(t *testing.T) {
	w := newTestWriter(t)
	_, err := w.Get("missing")
	assert.ErrorIs(t, err, core.ErrDocumentNotFound)
}

func TestWriter_GetReturnsSnapshot(t *testing.T) {
	w := newTestWriter(t)
	ctx := context.Background()

	_, err := w.UpdateSection(ctx, "doc1", "Introduction", "Hello world")
	require.NoError(t, err)

	doc, err := w.Get("doc1")
	require.NoError(t, err)
	doc.Sections["section_1"].Content = "tampered"

	fresh, err := w.Get("doc1")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", fresh.Sections["section_1"].Content)
}

func TestWriter_OrganizeSections(t *testing.T) {
	w := newTestWriter(t)
	ctx := context.Background()

	// Three sections of 4, 4 and 2 tokens.
	_, err := w.UpdateSection(ctx, "doc1", "Alpha", "one two three four")
	require.NoError(t, err)
	_, err = w.UpdateSection(ctx, "doc1", "Beta", "cinq six sept huit")
	require.NoError(t, err)
	_, err = w.UpdateSection(ctx, "doc1", "Gamma", "nine ten")
	require.NoError(t, err)

	groups, err := w.OrganizeSections("doc1", 8)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"section_1", "section_2"}, {"section_3"}}, groups)

	// Round-trip: flattening the groups yields every id exactly once, in order.
	var flat []string
	for _, g := range groups {
		flat = append(flat, g...)
	}
	doc, err := w.Get("doc1")
	require.NoError(t, err)
	assert.Equal(t, doc.SectionIDs(), flat)

	// Large budget: a single group.
	groups, err = w.OrganizeSections("doc1", 1000)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"section_1", "section_2", "section_3"}}, groups)

	// Tiny budget: one oversized section still gets its own group.
	groups, err = w.OrganizeSections("doc1", 1)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"section_1"}, {"section_2"}, {"section_3"}}, groups)
}

func TestWriter_OrganizeSectionsUnknownDocument(t *testing.T) {
	w := newTestWriter(t)
	_, err := w.OrganizeSections("missing", 100)
	assert.ErrorIs(t, err, core.ErrDocumentNotFound)
}

func TestWriter_OrganizeSectionsIsReadOnly(t *testing.T) {
	w := newTestWriter(t)
	ctx := context.Background()

	_, err := w.UpdateSection(ctx, "doc1", "Alpha", "one two three four")
	require.NoError(t, err)

	before, err := w.Get("doc1")
	require.NoError(t, err)
	_, err = w.OrganizeSections("doc1", 2)
	require.NoError(t, err)
	after, err := w.Get("doc1")
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
}

func TestWriter_SaveFailureLeavesCacheConsistent(t *testing.T) {
	store := newMemStore()
	w, err := NewWriter(store)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = w.UpdateSection(ctx, "doc1", "Introduction", "Hello world")
	require.NoError(t, err)

	store.failSave = true
	_, err = w.UpdateSection(ctx, "doc1", "Benchmarks", "Numbers under load.")
	require.Error(t, err)

	// Cache still matches what the store holds.
	doc, err := w.Get("doc1")
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, []string{"section_1"}, doc.SectionIDs())
}

func TestWriter_HydratesCacheFromStore(t *testing.T) {
	store := newMemStore()
	seed := core.NewDocument()
	seed.PutSection("section_1", &core.DocumentSection{Title: "Seeded", Content: "From storage", ContextTokens: 2})
	seed.Version = 1
	require.NoError(t, store.Save("doc1", seed))

	w, err := NewWriter(store)
	require.NoError(t, err)

	doc, err := w.Get("doc1")
	require.NoError(t, err)
	assert.Equal(t, "Seeded", doc.Sections["section_1"].Title)
}

func TestWriter_ConcurrentWritersSameDocument(t *testing.T) {
	w := newTestWriter(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			title := fmt.Sprintf("Topic %d", i)
			content := fmt.Sprintf("Completely distinct body number %d about subject-%d.", i, i)
			if _, err := w.UpdateSection(ctx, "doc1", title, content); err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	doc, err := w.Get("doc1")
	require.NoError(t, err)
	assert.Equal(t, writers, doc.Version, "each serialized write advances the version once")
}
