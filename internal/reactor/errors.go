package reactor

import (
	"errors"
	"fmt"
)

// Precondition violations reported to the driver.
var (
	// ErrInvalidInput indicates a control input or step argument outside its domain.
	ErrInvalidInput = errors.New("reactor: invalid input")

	// ErrNotRunning indicates Step was called after containment collapsed.
	ErrNotRunning = errors.New("reactor: simulation no longer running (containment collapsed)")

	// ErrStopped indicates Step was called after RequestStop.
	ErrStopped = errors.New("reactor: simulation stopped by request")
)

// StepError wraps an error with the tick and simulated time it happened at.
type StepError struct {
	Tick    uint64
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
