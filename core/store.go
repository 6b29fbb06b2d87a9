package core

// DocumentStore defines the interface for durable document persistence.
// Implementations should be thread-safe and must apply the same doc id
// sanitization for Save, Load and List so a given id always maps to the same
// record.
//
// Contract:
//   - Save must never leave a half-written record observable to a subsequent
//     Load (atomic-replace discipline).
//   - Load returns (nil, nil) when no record exists and an error only when a
//     record exists but cannot be read or parsed.
//   - List skips records that fail to parse instead of aborting the scan.
type DocumentStore interface {
	Save(docID string, doc *Document) error
	Load(docID string) (*Document, error)
	List() (map[string]map[string]string, error)
}
