// Package core defines the domain contracts shared across DocMesh: the
// versioned document model, the persistence interface (DocumentStore) and the
// external semantic capability boundary (Comparator / Merger).
//
// Keeping contracts central avoids dependency cycles between implementation
// packages (storage, similarity, semantic, document) and lets callers depend
// on interfaces rather than concrete types so persistence layers and LLM
// backends can be substituted in tests or production.
package core
