package content

import (
	"errors"
	"fmt"
)

// ErrDocumentNotFound matches every *DocumentNotFoundError via errors.Is.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentNotFoundError reports that (Section, Slug) has no backing file or
// that the file could not be parsed or rendered. Err holds the cause.
type DocumentNotFoundError struct {
	Section string
	Slug    string
	Err     error
}

func (e *DocumentNotFoundError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("document not found: %s/%s", e.Section, e.Slug)
	}
	return fmt.Sprintf("document not found: %s/%s: %v", e.Section, e.Slug, e.Err)
}

func (e *DocumentNotFoundError) Unwrap() error { return e.Err }

func (e *DocumentNotFoundError) Is(target error) bool { return target == ErrDocumentNotFound }

// IsNotFound reports whether err is a document-not-found failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound)
}
