package kinds

import (
	"errors"
	"fmt"
)

var (
	// ErrKindNotRegistered indicates that a kind is neither built in nor
	// registered. Retrying will not help until the registry changes.
	ErrKindNotRegistered = errors.New("kind not registered")

	// ErrInvalidManifestName indicates a malformed "<Kind> <name>" string.
	ErrInvalidManifestName = errors.New("invalid manifest name")

	// ErrDuplicateKind indicates that a kind was listed twice in one table.
	ErrDuplicateKind = errors.New("duplicate kind")
)

// UnregisteredKindError names the kind that could not be resolved.
type UnregisteredKindError struct {
	Kind string
}

// Error implements the error interface.
func (e *UnregisteredKindError) Error() string {
	return fmt.Sprintf("kind %q is not a built-in kind and is not registered as a custom resource", e.Kind)
}

// Unwrap returns ErrKindNotRegistered for use with errors.Is().
func (e *UnregisteredKindError) Unwrap() error {
	return ErrKindNotRegistered
}
