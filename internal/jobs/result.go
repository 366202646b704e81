package jobs

// Status classifies how a job ended.
type Status string

const (
	// StatusSuccess means the process exited with status zero.
	StatusSuccess Status = "SUCCESS"

	// StatusFailure means the process ran and exited with a non-zero status.
	StatusFailure Status = "FAILURE"

	// StatusKilled means the process was terminated by a signal before it
	// could exit on its own, for example when the caller's deadline expired.
	StatusKilled Status = "KILLED"
)

// Result is the outcome of one executed Request.
type Result[T any] struct {
	Status Status
	// Output is the buffered standard output, or the value returned by the
	// Consumer when the job ran in streaming mode.
	Output T
	// Error is the captured standard error. It is empty on success unless
	// the tool wrote warnings.
	Error string
}

// Succeeded reports whether the job exited with status zero.
func (r *Result[T]) Succeeded() bool {
	return r != nil && r.Status == StatusSuccess
}
