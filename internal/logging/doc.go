// Package logging provides structured logging utilities for kubectl-jobs.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "delete")
//	logger.Info("deleting resource",
//	    logging.Namespace("default"),
//	    logging.ResourceType("deployment"),
//	    logging.ResourceName("my-app"))
//
// Kubeconfig paths may be logged; credentials and manifest payloads never
// are. Use RedactArgs before logging a command line that may carry a token.
package logging
