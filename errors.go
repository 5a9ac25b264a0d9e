package multiview

import (
	"errors"
	"fmt"
)

var (
	// ErrTooFewViews is returned when fewer than three views of
	// correspondences are supplied to the error engine.
	ErrTooFewViews = errors.New("multiview: at least 3 views are required")

	// ErrViewLengthMismatch is returned when the per-view correspondence
	// sequences differ in length.
	ErrViewLengthMismatch = errors.New("multiview: views have different numbers of correspondences")

	// ErrCameraCount is returned when the number of cameras does not match
	// the number of views.
	ErrCameraCount = errors.New("multiview: number of cameras does not match number of views")

	// ErrNilRig is returned when no rig was supplied.
	ErrNilRig = errors.New("multiview: nil rig")

	// ErrSeparationExhausted matches a [*SeparationExhaustedError].
	ErrSeparationExhausted = errors.New("multiview: camera separation constraint exhausted")

	// ErrInvariantViolation matches an [*InvariantError]. It indicates a
	// bug, not a property of the input data.
	ErrInvariantViolation = errors.New("multiview: invariant violation")
)

// SeparationExhaustedError reports that the spherical sampler could not place
// another camera at the requested minimum separation within its trial budget.
// The cameras accepted so far are still pairwise separated.
type SeparationExhaustedError struct {
	Requested int
	Accepted  int
	Trials    int
}

func (e *SeparationExhaustedError) Error() string {
	return fmt.Sprintf("multiview: camera separation constraint exhausted after %d trials (%d of %d cameras placed)",
		e.Trials, e.Accepted, e.Requested)
}

func (e *SeparationExhaustedError) Is(target error) bool {
	return target == ErrSeparationExhausted
}

// InvariantError describes a violated internal invariant.
type InvariantError struct {
	What string
}

func (e *InvariantError) Error() string {
	return "multiview: invariant violation: " + e.What
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariantViolation
}

func invariantf(format string, args ...any) error {
	return &InvariantError{What: fmt.Sprintf(format, args...)}
}
