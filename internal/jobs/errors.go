package jobs

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCommand is returned when a Request is built without tokens.
	ErrEmptyCommand = errors.New("no tokenized command specified")

	// ErrExecution indicates that the child process could not be launched or
	// was terminated before it could report an exit status.
	ErrExecution = errors.New("job execution failed")
)

// ExecutionError describes a process-level fault: the external tool never
// ran to completion, so there is no exit status to interpret.
type ExecutionError struct {
	// Program is the first token of the request.
	Program string
	Err     error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("run %s: %v", e.Program, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExecution.
func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecution
}
