package kubectl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/giantswarm/kubectl-jobs/internal/jobs"
)

var (
	// ErrToolFailure indicates that kubectl ran and exited non-zero.
	ErrToolFailure = errors.New("kubectl reported a failure")

	// ErrNotFound indicates that kubectl reported the target resource as
	// missing. It is only ever matched through a *ToolError.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidManifest is returned when a manifest lacks a kind.
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrInvalidMergeStrategy is returned for a patch strategy outside
	// strategic, json and merge.
	ErrInvalidMergeStrategy = errors.New("invalid merge strategy")

	// ErrInvalidPatchBody is returned when a patch body cannot be encoded or
	// does not fit the selected strategy.
	ErrInvalidPatchBody = errors.New("invalid patch body")

	// ErrInvalidDeleteOptions is returned for a negative grace period or an
	// unknown cascade mode.
	ErrInvalidDeleteOptions = errors.New("invalid delete options")
)

// notFoundMarker is the reason kubectl prints for a missing object, as in
// `Error from server (NotFound): deployments.apps "x" not found`.
const notFoundMarker = "(NotFound)"

// ToolError carries the verbatim error text of a failed kubectl run.
type ToolError struct {
	// Command is the redacted command line.
	Command string
	// Stderr is the captured standard error, unmodified.
	Stderr string
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return "kubectl exited non-zero without error output"
	}
	return msg
}

// Is matches ErrToolFailure, and ErrNotFound when kubectl reported a missing
// object.
func (e *ToolError) Is(target error) bool {
	switch target {
	case ErrToolFailure:
		return true
	case ErrNotFound:
		return strings.Contains(e.Stderr, notFoundMarker)
	}
	return false
}

// Phase is a dispatcher state.
type Phase string

const (
	PhaseBuilding     Phase = "building"
	PhaseExecuting    Phase = "executing"
	PhaseInterpreting Phase = "interpreting"
	PhaseDone         Phase = "done"
	PhaseFailed       Phase = "failed"
)

// OperationError reports the phase in which an operation failed.
type OperationError struct {
	Operation string
	Phase     Phase
	Err       error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	return fmt.Sprintf("%s failed while %s: %v", e.Operation, e.Phase, e.Err)
}

// Unwrap returns the underlying cause.
func (e *OperationError) Unwrap() error {
	return e.Err
}

// killedError builds the execution fault for a process that ended on a signal.
func killedError(req *jobs.Request, cause error, stderr string) error {
	err := errors.New("process was killed before it exited")
	if cause != nil {
		err = fmt.Errorf("process was killed: %w", cause)
	}
	if stderr != "" {
		err = fmt.Errorf("%w: %s", err, stderr)
	}
	return &jobs.ExecutionError{Program: req.Program(), Err: err}
}
