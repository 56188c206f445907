package assessments

import (
	"errors"
	"strings"
)

// ErrNotPersisted means storage was skipped because no identity was
// available. Callers treat it as a no-op, not a failure.
var ErrNotPersisted = errors.New("assessment not persisted: no identity")

// ErrUnknownAssessment is reported when a type is missing from the catalog.
var ErrUnknownAssessment = errors.New("unknown assessment type")

// ErrNotFound is returned by repositories when no stored assessment matches.
var ErrNotFound = errors.New("assessment not found")

// ValidationError collects every problem found in a record.
type ValidationError struct {
	Problems []string
	unknown  bool
}

func (e *ValidationError) Error() string {
	return "invalid assessment: " + strings.Join(e.Problems, "; ")
}

// Is lets errors.Is(err, ErrUnknownAssessment) see through a ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrUnknownAssessment && e.unknown
}
