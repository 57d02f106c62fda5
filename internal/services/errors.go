package services

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/lifedrop-backend/internal/access"
)

var (
	ErrUnauthenticated = access.ErrUnauthenticated
	ErrForbidden       = access.ErrForbidden

	// ErrPersistence hides storage failures from callers. The cause is logged.
	ErrPersistence = errors.New("storage failure")

	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDonorNotFound       = errors.New("donor not found")
	ErrBloodUnitNotFound   = errors.New("blood unit not found")

	ErrIneligibleDonor   = errors.New("donor is not eligible to donate yet")
	ErrInvalidSchedule   = errors.New("appointment must be scheduled in the future")
	ErrDuplicateBooking  = errors.New("an appointment is already scheduled for this date")
	ErrInvalidTransition = errors.New("appointment status transition not allowed")
	ErrScreeningFailed   = errors.New("donor did not pass health screening")

	// ErrValidation is wrapped by every input validation error.
	ErrValidation = errors.New("invalid input")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func persistenceError(action string, err error) error {
	slog.Error("persistence failure", "action", action, "error", err)
	return fmt.Errorf("%w: %s", ErrPersistence, action)
}

// isDomainError reports whether err already belongs to the service taxonomy
// and can be returned from a transaction unchanged.
func isDomainError(err error) bool {
	for _, target := range []error{
		ErrUnauthenticated, ErrForbidden, ErrPersistence, ErrValidation,
		ErrAppointmentNotFound, ErrDonorNotFound, ErrBloodUnitNotFound, ErrUserNotFound,
		ErrIneligibleDonor, ErrInvalidSchedule, ErrDuplicateBooking, ErrInvalidTransition,
		ErrScreeningFailed, ErrEmailTaken,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
