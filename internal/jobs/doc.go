// Package jobs runs external command-line tools as child processes.
//
// A Request describes one invocation: the tokenized command line, the
// environment handed to the child, and the payload written to its standard
// input. The payload is captured in memory when the Request is built, so a
// Request can be compared, hashed and executed any number of times.
//
// An Executor runs a Request and classifies the outcome as a Result. Output
// is either buffered into a string or handed, while the child is still
// running, to a Consumer that derives a value from the stream:
//
//	req, err := jobs.NewRequest([]string{"kubectl", "get", "pods", "-o", "json"})
//	if err != nil {
//		return err
//	}
//
//	res, err := jobs.Run(ctx, executor, req)
//	if err != nil {
//		// the process could not be launched
//		return err
//	}
//	if res.Status != jobs.StatusSuccess {
//		// the tool ran and reported a failure in res.Error
//	}
//
// Launch failures (missing binary, permission denied) are returned as an
// *ExecutionError and never folded into a Result. A non-zero exit status is
// a StatusFailure Result with the captured standard error.
//
// Executors perform no retries and enforce no timeout. Callers that need
// bounded execution pass a context with a deadline, which kills the child.
package jobs
