package jobs

import (
	"context"
	"fmt"
	"io"
)

// Consumer reads a job's standard output while the process runs and derives
// a value from it. A Consumer does not need to read until EOF; the executor
// discards whatever is left.
type Consumer[T any] func(r io.Reader) (T, error)

// Executor runs a Request to completion.
//
// When consume is nil the executor buffers standard output and returns it as
// a string in Result.Output. Otherwise Result.Output holds whatever consume
// returned.
//
// An error is returned only when the job could not be run or its output
// could not be consumed; a tool that ran and failed is reported through
// Result.Status.
type Executor interface {
	Execute(ctx context.Context, req *Request, consume Consumer[any]) (*Result[any], error)
}

// Run executes req with buffered output.
func Run(ctx context.Context, e Executor, req *Request) (*Result[string], error) {
	res, err := e.Execute(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	out := &Result[string]{Status: res.Status, Error: res.Error}
	switch v := res.Output.(type) {
	case nil:
	case string:
		out.Output = v
	case []byte:
		out.Output = string(v)
	default:
		return nil, fmt.Errorf("unexpected buffered output type %T", res.Output)
	}

	return out, nil
}

// RunWithConsumer executes req and hands its standard output to consume.
func RunWithConsumer[T any](ctx context.Context, e Executor, req *Request, consume Consumer[T]) (*Result[T], error) {
	res, err := e.Execute(ctx, req, func(r io.Reader) (any, error) {
		return consume(r)
	})
	if err != nil {
		return nil, err
	}

	out := &Result[T]{Status: res.Status, Error: res.Error}
	if res.Output != nil {
		v, ok := res.Output.(T)
		if !ok {
			return nil, fmt.Errorf("unexpected consumer output type %T", res.Output)
		}
		out.Output = v
	}

	return out, nil
}
