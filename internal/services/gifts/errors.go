package gifts

import (
	"context"
	"errors"
	"fmt"

	"github.com/nidrosoft/rizzer-sub001/internal/database"
	"github.com/nidrosoft/rizzer-sub001/internal/services/ai"
)

var (
	// ErrNotFound is returned when the base profile does not exist
	ErrNotFound = database.ErrNotFound
	// ErrInsufficientData is returned when the quality score is under the gate
	ErrInsufficientData = errors.New("insufficient profile data")
	// ErrUpstream is returned when the completion call fails
	ErrUpstream = ai.ErrUpstream
	// ErrMalformedResponse is returned when the model output is missing or not JSON
	ErrMalformedResponse = ai.ErrMalformedResponse
	// ErrSchemaInvalid is returned when the JSON does not match the suggestion shape
	ErrSchemaInvalid = errors.New("model response does not match suggestion schema")
	// ErrPersistence is returned when a datastore write fails
	ErrPersistence = errors.New("persistence failed")
	// ErrGenerationInProgress is returned when another attempt holds the profile
	ErrGenerationInProgress = errors.New("generation already in progress for profile")
)

// InsufficientDataError carries the score that failed the gate and a hint
// for the user.
type InsufficientDataError struct {
	Score     int
	Threshold int
	Hint      string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("data quality score %d is below the minimum of %d: %s", e.Score, e.Threshold, e.Hint)
}

func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// ValidationError names the first suggestion field that failed validation.
// Index is -1 for problems with the envelope itself.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid response: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid suggestion %d: %s %s", e.Index, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrSchemaInvalid
}

// PersistenceError wraps a failed write with the operation that failed
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Error kind labels, stable for logs and metrics
const (
	KindNotFound          = "not_found"
	KindInsufficientData  = "insufficient_data"
	KindUpstream          = "upstream"
	KindMalformedResponse = "malformed_response"
	KindSchemaInvalid     = "schema_invalid"
	KindPersistence       = "persistence"
	KindInProgress        = "in_progress"
	KindCanceled          = "canceled"
	KindInternal          = "internal"
)

// ErrorKind classifies err into one of the Kind labels. Malformed and
// schema-invalid responses stay distinct.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, ErrUpstream):
		return KindUpstream
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	case errors.Is(err, ErrSchemaInvalid):
		return KindSchemaInvalid
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	case errors.Is(err, ErrGenerationInProgress):
		return KindInProgress
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
