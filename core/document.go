package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DocumentSection is a titled, versioned fragment of a document's body.
//
// Contract:
//   - Version starts at 0 and increments by exactly 1 on every accepted
//     mutation; it is never reset while the section exists.
//   - ContextTokens is an approximate size measure (word count proxy) used to
//     bound how much text is grouped together for downstream consumption.
type DocumentSection struct {
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Version       int       `json:"version"`
	LastModified  time.Time `json:"last_modified"`
	ContextTokens int       `json:"context_tokens"`
}

// MetadataItem is a single key/value metadata entry attached to a document.
// Keys are not required to be unique at the storage layer; the write API only
// ever appends items, it never mutates them in place.
type MetadataItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Document is the in-memory representation of a living research document.
//
// Sections are keyed by positional identifiers ("section_1", "section_2", …)
// assigned at creation time and stable across merges. Document.Version
// increments by exactly 1 per accepted write operation, independent of the
// per-section counters.
//
// Document carries no internal locking; the Writer facade serializes all
// mutations per document id.
type Document struct {
	Sections     map[string]*DocumentSection `json:"sections"`
	Metadata     []MetadataItem              `json:"metadata"`
	Version      int                         `json:"version"`
	CreatedAt    time.Time                   `json:"created_at"`
	LastModified time.Time                   `json:"last_modified"`

	// order tracks section insertion order for stable iteration and
	// reproducible persisted output.
	order []string
}

// NewDocument creates an empty document with version 0 and both timestamps
// set to now.
func NewDocument() *Document {
	now := time.Now()
	return &Document{
		Sections:     make(map[string]*DocumentSection),
		Metadata:     []MetadataItem{},
		CreatedAt:    now,
		LastModified: now,
	}
}

// SectionIDs returns the section identifiers in insertion order. The slice is
// a snapshot and safe for caller mutation.
func (d *Document) SectionIDs() []string {
	ids := make([]string, len(d.order))
	copy(ids, d.order)
	return ids
}

// Section returns the section stored under id, if any.
func (d *Document) Section(id string) (*DocumentSection, bool) {
	s, ok := d.Sections[id]
	return s, ok
}

// NextSectionID allocates the positional identifier for a section created at
// the current section count ("section_{n+1}").
func (d *Document) NextSectionID() string {
	return fmt.Sprintf("section_%d", len(d.Sections)+1)
}

// PutSection stores a section under the given id, appending it to the
// insertion order if the id is new.
func (d *Document) PutSection(id string, s *DocumentSection) {
	if _, exists := d.Sections[id]; !exists {
		d.order = append(d.order, id)
	}
	d.Sections[id] = s
}

// AddMetadata appends a metadata item. Existing items are never mutated.
func (d *Document) AddMetadata(key, value string) {
	d.Metadata = append(d.Metadata, MetadataItem{Key: key, Value: value})
}

// MetadataMap flattens the metadata items into a key/value map (last write
// wins on duplicate keys).
func (d *Document) MetadataMap() map[string]string {
	m := make(map[string]string, len(d.Metadata))
	for _, item := range d.Metadata {
		m[item.Key] = item.Value
	}
	return m
}

// Clone returns a deep copy of the document safe for independent mutation.
func (d *Document) Clone() *Document {
	clone := &Document{
		Sections:     make(map[string]*DocumentSection, len(d.Sections)),
		Metadata:     make([]MetadataItem, len(d.Metadata)),
		Version:      d.Version,
		CreatedAt:    d.CreatedAt,
		LastModified: d.LastModified,
		order:        make([]string, len(d.order)),
	}
	for id, s := range d.Sections {
		cp := *s
		clone.Sections[id] = &cp
	}
	copy(clone.Metadata, d.Metadata)
	copy(clone.order, d.order)
	return clone
}

// RestoreOrder rebuilds the insertion order after deserialization. Positional
// ids sort by their numeric suffix; anything else sorts lexically after them.
func (d *Document) RestoreOrder() {
	ids := make([]string, 0, len(d.Sections))
	for id := range d.Sections {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, iok := sectionOrdinal(ids[i])
		nj, jok := sectionOrdinal(ids[j])
		if iok && jok {
			return ni < nj
		}
		if iok != jok {
			return iok
		}
		return ids[i] < ids[j]
	})
	d.order = ids
}

func sectionOrdinal(id string) (int, bool) {
	suffix, ok := strings.CutPrefix(id, "section_")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return n, true
}

// TokenCount approximates the context token footprint of a text fragment
// using its whitespace-separated word count.
func TokenCount(text string) int {
	return len(strings.Fields(text))
}
