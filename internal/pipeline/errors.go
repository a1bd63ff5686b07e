package pipeline

import (
	"errors"
	"fmt"

	"github.com/glaudinekorrie/twitter-data-intelligence/pkg/models"
)

// ErrorKind classifies pipeline failures for callers and run summaries
type ErrorKind string

const (
	// KindSourceUnavailable means the fetch stage could not reach or
	// parse the source; the run aborts with nothing loaded.
	KindSourceUnavailable ErrorKind = "SourceUnavailable"

	// KindScoringFailure is per-post and non-fatal; the post is dropped.
	KindScoringFailure ErrorKind = "ScoringFailure"

	// KindDataQualityWarning is per-field and non-fatal; the record is
	// kept with the corrected value.
	KindDataQualityWarning ErrorKind = "DataQualityWarning"

	// KindStoreUnavailable means the loader could not reach the store;
	// the run aborts with nothing persisted.
	KindStoreUnavailable ErrorKind = "StoreUnavailable"

	// KindPartialLoadFailure means some records failed to persist; the
	// run still completes with a reduced loaded count.
	KindPartialLoadFailure ErrorKind = "PartialLoadFailure"
)

// Error is a pipeline failure tagged with its kind and the state the run
// was in when it occurred
type Error struct {
	Kind  ErrorKind
	State models.RunState
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s in state %s: %v", e.Kind, e.State, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind from a pipeline error chain
func KindOf(err error) (ErrorKind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}
