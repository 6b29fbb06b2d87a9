package storage

import "fmt"

// InitError reports that the storage root could not be created or accessed,
// or that the configured path failed the safety check. It is fatal to
// constructing the store and is never retried internally.
type InitError struct {
	Path string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("storage init failed for %q: %v", e.Path, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// IOError reports a save or parse-on-load failure on an otherwise healthy
// store. Listing operations skip the offending record instead of returning
// this error.
type IOError struct {
	DocID string
	Op    string // "save", "load" or "render"
	Err   error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("storage %s failed for document %q: %v", e.Op, e.DocID, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
