package entity

import (
	"errors"
	"fmt"
)

// Error categories. Specific errors wrap one of these so callers can branch with
// errors.Is on the category alone.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrTransient  = errors.New("storage unavailable")
)

// Domain errors for the course tree.
var (
	ErrInvalidGrade     = fmt.Errorf("%w: grade must be between 0 and 100", ErrValidation)
	ErrInvalidTarget    = fmt.Errorf("%w: target must be between 0 and 100", ErrValidation)
	ErrInvalidWeight    = fmt.Errorf("%w: weight must be between 0 and 100", ErrValidation)
	ErrInvalidCredits   = fmt.Errorf("%w: credits must be a positive integer", ErrValidation)
	ErrInvalidName      = fmt.Errorf("%w: name must not be empty", ErrValidation)
	ErrInvalidYearCount = fmt.Errorf("%w: year count must be between 0 and %d", ErrValidation, MaxYearCount)
	ErrInvalidYearNum   = fmt.Errorf("%w: year number must be positive", ErrValidation)
	ErrInvalidUserID    = fmt.Errorf("%w: user id required", ErrValidation)

	ErrCourseExists = fmt.Errorf("%w: course already exists for user", ErrConflict)

	ErrCourseNotFound     = fmt.Errorf("course %w", ErrNotFound)
	ErrYearNotFound       = fmt.Errorf("year %w", ErrNotFound)
	ErrModuleNotFound     = fmt.Errorf("module %w", ErrNotFound)
	ErrAssessmentNotFound = fmt.Errorf("assessment %w", ErrNotFound)

	ErrCourseNotLoaded = errors.New("no course loaded")
)

// Transient marks an I/O failure of the backing store.
func Transient(err error) error {
	if err == nil || errors.Is(err, ErrTransient) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}
