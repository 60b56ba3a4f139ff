package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for commit protocol and lookup failures. The web layer maps
// these to HTTP status codes.
var (
	ErrUnknownType     = errors.New("unknown upload type")
	ErrEmptyUpload     = errors.New("empty upload")
	ErrNoDataRows      = errors.New("no data rows after header")
	ErrPreviewNotFound = errors.New("preview not found or already committed")
	ErrTypeMismatch    = errors.New("preview type does not match requested type")
	ErrJobNotFound     = errors.New("job not found")
)

// MissingColumnsError is a structural upload error: one or more required
// columns are absent from the uploaded header row.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}
