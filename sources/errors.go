package sources

import (
	"errors"
	"fmt"
)

// ErrUnavailable indicates a source could not serve a request.
var ErrUnavailable = errors.New("source unavailable")

// FetchError describes a failed request to a source.
type FetchError struct {
	Source     string
	URL        string
	StatusCode int // Zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, ErrUnavailable, e.Err)
	}
	return fmt.Sprintf("%s: %s: status %d", e.Source, ErrUnavailable, e.StatusCode)
}

// Unwrap exposes both ErrUnavailable and the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnavailable}
	}
	return []error{ErrUnavailable, e.Err}
}
