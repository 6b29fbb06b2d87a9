// Package storage contains the filesystem implementation of
// core.DocumentStore.
//
// Each document maps to one JSON record plus one rendered markdown export
// with the same base name inside a configurable storage root. Records are
// replaced atomically (write-then-rename) so a crash mid-save never leaves a
// half-written record observable to a subsequent load.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hupe1980/docmesh/core"
	"github.com/hupe1980/docmesh/logging"
)

const (
	recordExt = ".json"
	renderExt = ".md"
)

// FileStoreOptions configures a FileStore.
type FileStoreOptions struct {
	// Logger receives warnings for records skipped during List.
	Logger logging.Logger
}

// FileStore persists documents as JSON records on the local filesystem.
// Methods are safe for concurrent use across distinct document ids; callers
// must serialize concurrent writers of the same id (the Writer facade does).
type FileStore struct {
	dir    string
	logger logging.Logger
}

// Compile-time interface assertion.
var _ core.DocumentStore = (*FileStore)(nil)

// NewFileStore creates the storage root if necessary and returns a store
// rooted at dir. It returns an *InitError when the path looks unsafe for the
// target filesystem or cannot be created.
func NewFileStore(dir string, optFns ...func(o *FileStoreOptions)) (*FileStore, error) {
	opts := FileStoreOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := checkPath(dir); err != nil {
		return nil, &InitError{Path: dir, Err: err}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &InitError{Path: dir, Err: err}
	}

	return &FileStore{dir: dir, logger: opts.Logger}, nil
}

// checkPath rejects paths that look unsafe for the target filesystem. A colon
// is tolerated only as part of a drive prefix ("C:\..."); anywhere else it
// indicates a malformed or hostile path.
func checkPath(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("empty storage path")
	}
	rest := dir
	if len(dir) >= 2 && dir[1] == ':' && isASCIILetter(dir[0]) {
		rest = dir[2:]
	}
	if strings.ContainsRune(rest, ':') {
		return fmt.Errorf("path contains raw colon outside device prefix")
	}
	return nil
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// SanitizeDocID replaces any character outside [A-Za-z0-9-_ ] with an
// underscore so the id is safe as a filename component. Save, Load and List
// all apply the same transformation, so a given doc id always maps to the
// same record.
func SanitizeDocID(docID string) string {
	var b strings.Builder
	b.Grow(len(docID))
	for _, r := range docID {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '-', r == '_', r == ' ':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func (s *FileStore) recordPath(docID string) string {
	return filepath.Join(s.dir, SanitizeDocID(docID)+recordExt)
}

func (s *FileStore) renderPath(docID string) string {
	return filepath.Join(s.dir, SanitizeDocID(docID)+renderExt)
}

// sectionRecord is the persisted shape of a section. Timestamps serialize as
// ISO-8601 strings or null.
type sectionRecord struct {
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	LastModified  *string `json:"last_modified"`
	Version       int     `json:"version"`
	ContextTokens int     `json:"context_tokens"`
}

type documentRecord struct {
	Sections     map[string]sectionRecord `json:"sections"`
	Metadata     []core.MetadataItem      `json:"metadata"`
	CreatedAt    *string                  `json:"created_at"`
	LastModified *string                  `json:"last_modified"`
	Version      int                      `json:"version"`
}

// Save serializes the document to its JSON record and writes the rendered
// markdown export alongside it. The record write is atomic; failures surface
// as *IOError.
func (s *FileStore) Save(docID string, doc *core.Document) error {
	record := documentRecord{
		Sections:     make(map[string]sectionRecord, len(doc.Sections)),
		Metadata:     doc.Metadata,
		CreatedAt:    timeString(doc.CreatedAt),
		LastModified: timeString(doc.LastModified),
		Version:      doc.Version,
	}
	if record.Metadata == nil {
		record.Metadata = []core.MetadataItem{}
	}
	for id, section := range doc.Sections {
		record.Sections[id] = sectionRecord{
			Title:         section.Title,
			Content:       section.Content,
			LastModified:  timeString(section.LastModified),
			Version:       section.Version,
			ContextTokens: section.ContextTokens,
		}
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return &IOError{DocID: docID, Op: "save", Err: err}
	}
	if err := writeFileAtomic(s.recordPath(docID), data); err != nil {
		return &IOError{DocID: docID, Op: "save", Err: err}
	}

	if err := os.WriteFile(s.renderPath(docID), []byte(renderDocument(docID, doc)), 0o644); err != nil {
		return &IOError{DocID: docID, Op: "render", Err: err}
	}

	s.logger.Debug("storage.save", "doc_id", docID, "sections", len(doc.Sections), "version", doc.Version)

	return nil
}

// Load reads and deserializes a document record. It returns (nil, nil) when
// no record exists and an *IOError when a record exists but cannot be read or
// parsed. Missing optional fields deserialize to zero values; missing
// timestamps become the zero time rather than failing the load.
func (s *FileStore) Load(docID string) (*core.Document, error) {
	data, err := os.ReadFile(s.recordPath(docID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &IOError{DocID: docID, Op: "load", Err: err}
	}

	var record documentRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, &IOError{DocID: docID, Op: "load", Err: err}
	}

	doc := &core.Document{
		Sections:     make(map[string]*core.DocumentSection, len(record.Sections)),
		Metadata:     record.Metadata,
		Version:      record.Version,
		CreatedAt:    parseTime(record.CreatedAt),
		LastModified: parseTime(record.LastModified),
	}
	if doc.Metadata == nil {
		doc.Metadata = []core.MetadataItem{}
	}
	for id, sr := range record.Sections {
		doc.Sections[id] = &core.DocumentSection{
			Title:         sr.Title,
			Content:       sr.Content,
			LastModified:  parseTime(sr.LastModified),
			Version:       sr.Version,
			ContextTokens: sr.ContextTokens,
		}
	}
	doc.RestoreOrder()

	return doc, nil
}

// List scans all records in the storage root and returns doc id to metadata
// map. A record that fails to parse is skipped with a warning so one corrupt
// file cannot abort the listing of the others.
func (s *FileStore) List() (map[string]map[string]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &IOError{Op: "list", Err: err}
	}

	documents := make(map[string]map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}
		docID := strings.TrimSuffix(entry.Name(), recordExt)

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			s.logger.Warn("storage.list.skip", "doc_id", docID, "error", err.Error())
			continue
		}
		var record documentRecord
		if err := json.Unmarshal(data, &record); err != nil {
			s.logger.Warn("storage.list.skip", "doc_id", docID, "error", err.Error())
			continue
		}

		metadata := make(map[string]string, len(record.Metadata))
		for _, item := range record.Metadata {
			metadata[item.Key] = item.Value
		}
		documents[docID] = metadata
	}

	return documents, nil
}

// writeFileAtomic writes data to a temporary file in the target directory and
// renames it over path, so readers observe either the old or the new record.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	// CreateTemp opens the file 0600; align with the rendered export so both
	// artifacts of a save carry the same permissions after the rename.
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// renderDocument produces the human-readable markdown export: section titles
// and contents concatenated in insertion order.
func renderDocument(docID string, doc *core.Document) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(docID)
	b.WriteString("\n")
	for _, id := range doc.SectionIDs() {
		section, ok := doc.Section(id)
		if !ok {
			continue
		}
		b.WriteString("\n## ")
		b.WriteString(section.Title)
		b.WriteString("\n\n")
		b.WriteString(section.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func timeString(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(time.RFC3339Nano)
	return &s
}

func parseTime(s *string) time.Time {
	if s == nil || *s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return time.Time{}
	}
	return t
}
