package core

import "fmt"

var (
	// ErrDocumentNotFound is returned when a document id is unknown to the
	// writer facade or the underlying store. Recoverable by the caller
	// (create the document first).
	ErrDocumentNotFound = fmt.Errorf("document not found")
)
