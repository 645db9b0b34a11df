package types

import (
	"errors"
	"fmt"
)

// ErrVideoNotFound is returned when a video_id has no record.
var ErrVideoNotFound = errors.New("video not found")

// ValidationError reports an upload policy violation (duration, size, type).
// Distinct from adapter failures so callers can message the user accordingly.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// AdapterError wraps a failure from one of the external adapters
// (speech-to-text, embedding model, chat completion). The underlying error
// is preserved verbatim.
type AdapterError struct {
	Adapter string
	Err     error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s: %v", e.Adapter, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// DataError reports a malformed or missing transcript structure encountered
// during search or grounding.
type DataError struct {
	Detail string
}

func (e *DataError) Error() string {
	return e.Detail
}
