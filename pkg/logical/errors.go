package logical

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrMissingTag is matched by every MissingTagError.
	ErrMissingTag = errors.New("required tag missing")

	// ErrDanglingReference indicates an index reference outside its target list.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrCircularShare indicates series share references that form a cycle.
	ErrCircularShare = errors.New("circular series share")

	// ErrMalformedSeries indicates series values that do not fit their storage method.
	ErrMalformedSeries = errors.New("malformed series values")

	// ErrMissingContainer indicates a file whose first record is not a container.
	ErrMissingContainer = errors.New("first record is not a container record")

	// ErrDuplicateContainer indicates a second container record in one file.
	ErrDuplicateContainer = errors.New("file contains more than one container record")

	// ErrNoDataSource indicates an observation without an associated data source.
	ErrNoDataSource = errors.New("observation has no data source")

	// ErrNoMoreObservations indicates NextObservationRecord was called after the last observation.
	ErrNoMoreObservations = errors.New("no more observation records")

	// ErrContainerRequired indicates an observation written before the container.
	ErrContainerRequired = errors.New("container record must be written first")

	// ErrContainerAlreadyWritten indicates a second container write.
	ErrContainerAlreadyWritten = errors.New("container record already written")

	// ErrWriterFinished indicates a write after the record flagged as last.
	ErrWriterFinished = errors.New("writer already wrote the last record")

	// ErrParserClosed indicates use of a parser after Close.
	ErrParserClosed = errors.New("parser closed")
)

// MissingTagError reports a required element absent from a record.
type MissingTagError struct {
	Tag  uuid.UUID
	Name string
}

func (e *MissingTagError) Error() string {
	return fmt.Sprintf("required tag missing: %s (%s)", e.Name, e.Tag)
}

func (e *MissingTagError) Is(target error) bool {
	return target == ErrMissingTag
}

func missingTag(tag uuid.UUID) error {
	return &MissingTagError{Tag: tag, Name: TagName(tag)}
}

func dangling(what string, index, size int) error {
	return fmt.Errorf("%w: %s index %d, %d available", ErrDanglingReference, what, index, size)
}
