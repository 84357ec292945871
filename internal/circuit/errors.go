package circuit

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a circuit path does not exist.
	ErrNotFound = errors.New("circuit not found")

	// ErrBackendUnavailable is returned when no parser is registered for a circuit format.
	ErrBackendUnavailable = errors.New("circuit parser unavailable")
)

// ParseError reports a QASM line that could not be understood.
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}
