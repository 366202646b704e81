// Package kubectl turns resource operations into kubectl invocations and
// interprets their outcome.
//
// A Builder assembles the token sequence for each operation: program,
// account flags, namespace flag, verb, resource addressing and verb flags, in
// that order. Kinds are resolved through a kinds.Registry before any token is
// emitted, so an unregistered kind never reaches a child process.
//
// A Dispatcher drives one operation through three phases:
//
//	building     -> resolve the account, build the request
//	executing    -> run the request through a jobs.Executor
//	interpreting -> map the result to a value or a typed error
//
// Failures are reported as *OperationError, which records the phase and wraps
// one of kinds.ErrKindNotRegistered, jobs.ErrExecution or ErrToolFailure.
package kubectl
