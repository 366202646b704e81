package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/kubectl-jobs/internal/logging"
)

// ProcessExecutor runs requests as local child processes.
type ProcessExecutor struct {
	logger *slog.Logger
}

// NewProcessExecutor creates a ProcessExecutor. A nil logger falls back to
// slog.Default().
func NewProcessExecutor(logger *slog.Logger) *ProcessExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessExecutor{logger: logger}
}

// Execute implements Executor.
func (p *ProcessExecutor) Execute(ctx context.Context, req *Request, consume Consumer[any]) (*Result[any], error) {
	if req == nil {
		return nil, ErrEmptyCommand
	}

	start := time.Now()
	logger := p.logger.With(slog.String("program", req.Program()))

	//nolint:gosec // G204: the command line is assembled by the caller on purpose.
	cmd := exec.CommandContext(ctx, req.Program(), req.Args()...)
	cmd.Env = req.Env()
	cmd.Stdin = req.Input()

	var (
		res *Result[any]
		err error
	)
	if consume == nil {
		res, err = p.runBuffered(cmd, req)
	} else {
		res, err = p.runStreaming(cmd, req, consume)
	}

	if err != nil {
		logger.DebugContext(ctx, "job failed to run",
			logging.Err(err),
			slog.Duration(logging.KeyDuration, time.Since(start)))
		return nil, err
	}

	logger.DebugContext(ctx, "job finished",
		logging.Status(string(res.Status)),
		slog.Duration(logging.KeyDuration, time.Since(start)))

	return res, nil
}

func (p *ProcessExecutor) runBuffered(cmd *exec.Cmd, req *Request) (*Result[any], error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, &ExecutionError{Program: req.Program(), Err: err}
	}

	status, err := classify(cmd.Wait())
	if err != nil {
		return nil, &ExecutionError{Program: req.Program(), Err: err}
	}

	return &Result[any]{
		Status: status,
		Output: stdout.String(),
		Error:  stderr.String(),
	}, nil
}

func (p *ProcessExecutor) runStreaming(cmd *exec.Cmd, req *Request, consume Consumer[any]) (*Result[any], error) {
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &ExecutionError{Program: req.Program(), Err: err}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, &ExecutionError{Program: req.Program(), Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &ExecutionError{Program: req.Program(), Err: err}
	}

	// Both pipes must be read to EOF before Wait, or a child that fills one
	// of them blocks forever.
	var (
		stderr   bytes.Buffer
		output   any
		consumed error
		g        errgroup.Group
	)
	g.Go(func() error {
		output, consumed = consume(stdoutPipe)
		_, err := io.Copy(io.Discard, stdoutPipe)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&stderr, stderrPipe)
		return err
	})
	drainErr := g.Wait()

	status, err := classify(cmd.Wait())
	if err != nil {
		return nil, &ExecutionError{Program: req.Program(), Err: err}
	}
	if drainErr != nil {
		return nil, &ExecutionError{Program: req.Program(), Err: fmt.Errorf("read output: %w", drainErr)}
	}

	res := &Result[any]{
		Status: status,
		Output: output,
		Error:  stderr.String(),
	}

	// A failed tool usually prints nothing useful on stdout, so a consumer
	// error only matters when the tool itself succeeded.
	if consumed != nil && status == StatusSuccess {
		return nil, fmt.Errorf("consume output of %s: %w", req.Program(), consumed)
	}

	return res, nil
}

// classify maps the error returned by exec.Cmd.Wait to a job status.
// Errors that are not exit statuses are returned unchanged.
func classify(waitErr error) (Status, error) {
	if waitErr == nil {
		return StatusSuccess, nil
	}

	if errors.Is(waitErr, context.DeadlineExceeded) || errors.Is(waitErr, context.Canceled) {
		return StatusKilled, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if exitErr.ExitCode() == -1 {
			return StatusKilled, nil
		}
		return StatusFailure, nil
	}

	return "", waitErr
}
