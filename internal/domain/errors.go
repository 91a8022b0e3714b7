package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat   = errors.New("unsupported document format")
	ErrCorruptDocument     = errors.New("document could not be opened")
	ErrMissingDocument     = errors.New("required document not supplied")
	ErrNoRecognizedFields  = errors.New("no recognized fields")
	ErrBackendUnavailable  = errors.New("inference backend unavailable")
	ErrAmbiguousAlignment  = errors.New("ambiguous alignment")
	ErrExtractionTimeout   = errors.New("extraction timed out")
	ErrInvalidVocabulary   = errors.New("invalid role vocabulary")
	ErrUnsupportedLocation = errors.New("unsupported storage location")
)

// DocumentError ties a failure to the document, and where known the page and line, it came from.
type DocumentError struct {
	Role DocumentRole
	Name string
	Page int
	Line int
	Err  error
}

func (e *DocumentError) Error() string {
	loc := e.Role.Label()
	if e.Name != "" {
		loc = fmt.Sprintf("%s (%s)", loc, e.Name)
	}
	if e.Page > 0 {
		loc = fmt.Sprintf("%s page %d", loc, e.Page)
		if e.Line > 0 {
			loc = fmt.Sprintf("%s line %d", loc, e.Line)
		}
	}
	return fmt.Sprintf("%s: %v", loc, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
