package profile

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrInvalidInput        = errors.New("invalid profile input")
	ErrInternalConsistency = errors.New("inconsistent profile")
	ErrUnavailableSource   = errors.New("profile source unavailable")
)

// InvalidInputError reports input that violates the encoder's contract.
// Nothing is encoded when it is returned.
type InvalidInputError struct {
	// Sample is the offending sample index, or -1 when the problem is not
	// tied to a single sample.
	Sample int
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Sample < 0 {
		return fmt.Sprintf("invalid profile input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid profile input: sample %d: %s", e.Sample, e.Reason)
}

// Is matches ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Unwrap returns ErrInvalidInput.
func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// InternalConsistencyError reports a dangling or duplicate id found while
// marshaling. It always points at a bug in whatever built the Profile.
type InternalConsistencyError struct {
	Table  string
	ID     uint64
	Reason string
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("inconsistent profile: %s id %d: %s", e.Table, e.ID, e.Reason)
}

// Is matches ErrInternalConsistency.
func (e *InternalConsistencyError) Is(target error) bool {
	return target == ErrInternalConsistency
}

// Unwrap returns ErrInternalConsistency.
func (e *InternalConsistencyError) Unwrap() error {
	return ErrInternalConsistency
}

// UnavailableSourceError is returned by sampling sources that cannot
// currently supply data, e.g. because sampling is disabled.
type UnavailableSourceError struct {
	Source string
	Reason string
}

func (e *UnavailableSourceError) Error() string {
	return fmt.Sprintf("%s profile unavailable: %s", e.Source, e.Reason)
}

// Is matches ErrUnavailableSource.
func (e *UnavailableSourceError) Is(target error) bool {
	return target == ErrUnavailableSource
}

// Unwrap returns ErrUnavailableSource.
func (e *UnavailableSourceError) Unwrap() error {
	return ErrUnavailableSource
}
