package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL     = errors.New("invalid URL")
	ErrJobNotFound    = errors.New("job not found")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrSchemaMismatch = errors.New("jobs table schema mismatch")
)

// FetchError reports a failed page retrieval: a transport error, a timeout or
// a non-success HTTP status. Nothing is stored for the submission.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
