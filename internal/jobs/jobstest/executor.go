// Package jobstest provides an in-memory jobs.Executor for tests.
package jobstest

import (
	"context"
	"strings"
	"sync"

	"github.com/giantswarm/kubectl-jobs/internal/jobs"
)

var _ jobs.Executor = (*Executor)(nil)

// Executor returns canned results keyed by request identity and records
// every request it is asked to run. It never spawns a process.
//
// When a canned result carries string output and the caller runs in
// streaming mode, the string is fed through the caller's consumer so
// parsing code is exercised the same way as with a real process.
type Executor struct {
	mu         sync.Mutex
	results    map[string]*jobs.Result[any]
	faults     map[string]error
	defaultRes *jobs.Result[any]
	requests   []*jobs.Request
}

// NewExecutor creates an Executor whose default result is a successful job
// with empty output.
func NewExecutor() *Executor {
	return &Executor{
		results:    make(map[string]*jobs.Result[any]),
		faults:     make(map[string]error),
		defaultRes: &jobs.Result[any]{Status: jobs.StatusSuccess, Output: ""},
	}
}

// Register returns res whenever a request equal to req is executed.
func (e *Executor) Register(req *jobs.Request, res *jobs.Result[any]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.results[req.Digest()] = res
}

// RegisterOutput is shorthand for registering a result with the given
// status, standard output and standard error.
func (e *Executor) RegisterOutput(req *jobs.Request, status jobs.Status, stdout, stderr string) {
	e.Register(req, &jobs.Result[any]{Status: status, Output: stdout, Error: stderr})
}

// RegisterFault makes requests equal to req fail with err instead of
// producing a result, as a missing binary would.
func (e *Executor) RegisterFault(req *jobs.Request, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.faults[req.Digest()] = err
}

// SetDefault sets the result for requests nothing was registered for.
func (e *Executor) SetDefault(res *jobs.Result[any]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaultRes = res
}

// Reset drops registered results and recorded requests.
func (e *Executor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.results = make(map[string]*jobs.Result[any])
	e.faults = make(map[string]error)
	e.requests = nil
}

// Calls returns how many requests were executed.
func (e *Executor) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.requests)
}

// Requests returns the executed requests in order.
func (e *Executor) Requests() []*jobs.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*jobs.Request, len(e.requests))
	copy(out, e.requests)
	return out
}

// LastTokens returns the tokens of the most recent request, or nil.
func (e *Executor) LastTokens() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.requests) == 0 {
		return nil
	}
	return e.requests[len(e.requests)-1].Tokens()
}

// Execute implements jobs.Executor.
func (e *Executor) Execute(_ context.Context, req *jobs.Request, consume jobs.Consumer[any]) (*jobs.Result[any], error) {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	fault := e.faults[req.Digest()]
	res, ok := e.results[req.Digest()]
	if !ok {
		res = e.defaultRes
	}
	e.mu.Unlock()

	if fault != nil {
		return nil, &jobs.ExecutionError{Program: req.Program(), Err: fault}
	}

	out := *res
	if text, isText := res.Output.(string); consume != nil && isText {
		v, err := consume(strings.NewReader(text))
		if err != nil && res.Status == jobs.StatusSuccess {
			return nil, err
		}
		out.Output = v
	}

	return &out, nil
}
