package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation    = "operation"
	KeyNamespace    = "namespace"
	KeyResourceType = "resource_type"
	KeyResourceName = "resource_name"
	KeyAccount      = "account"
	KeyContext      = "kube_context"
	KeyPhase        = "phase"
	KeyDuration     = "duration"
	KeyStatus       = "status"
	KeyError        = "error"
	KeyCommand      = "command"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// sensitiveFlags lists command-line flags whose values must not be logged.
var sensitiveFlags = []string{"--token", "--password", "--client-key", "--username"}

// NewLogger returns a text logger writing to w. Debug enables debug level.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithAccount returns a logger with the account attribute set.
func WithAccount(logger *slog.Logger, account string) *slog.Logger {
	return logger.With(slog.String(KeyAccount, account))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Namespace returns a slog attribute for the namespace.
func Namespace(ns string) slog.Attr {
	return slog.String(KeyNamespace, ns)
}

// ResourceType returns a slog attribute for the resource type.
func ResourceType(rt string) slog.Attr {
	return slog.String(KeyResourceType, rt)
}

// ResourceName returns a slog attribute for the resource name.
func ResourceName(name string) slog.Attr {
	return slog.String(KeyResourceName, name)
}

// Context returns a slog attribute for the kubeconfig context.
func Context(name string) slog.Attr {
	return slog.String(KeyContext, name)
}

// Phase returns a slog attribute for an operation phase.
func Phase(phase string) slog.Attr {
	return slog.String(KeyPhase, phase)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Command returns a slog attribute for a command line with sensitive flag
// values redacted.
func Command(tokens []string) slog.Attr {
	return slog.String(KeyCommand, strings.Join(RedactArgs(tokens), " "))
}

// RedactArgs returns a copy of tokens in which the values of sensitive flags
// are replaced. Both "--flag=value" and "--flag value" forms are handled.
//
// Examples:
//   - ["kubectl", "--token=abc", "get"] -> ["kubectl", "--token=<redacted>", "get"]
//   - ["kubectl", "--token", "abc"]     -> ["kubectl", "--token", "<redacted>"]
func RedactArgs(tokens []string) []string {
	out := make([]string, len(tokens))
	copy(out, tokens)

	for i := 0; i < len(out); i++ {
		for _, flag := range sensitiveFlags {
			switch {
			case strings.HasPrefix(out[i], flag+"="):
				out[i] = flag + "=<redacted>"
			case out[i] == flag && i+1 < len(out):
				out[i+1] = "<redacted>"
				i++
			}
		}
	}

	return out
}
