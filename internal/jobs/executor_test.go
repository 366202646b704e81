package jobs_test

import (
	"bufio"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/kubectl-jobs/internal/jobs"
	"github.com/giantswarm/kubectl-jobs/internal/jobs/jobstest"
)

func TestRun_WithFakeExecutor(t *testing.T) {
	executor := jobstest.NewExecutor()
	req := jobs.MustNewRequest([]string{"kubectl", "version"})
	executor.RegisterOutput(req, jobs.StatusSuccess, "Client Version: v1.34.0", "")

	res, err := jobs.Run(context.Background(), executor, req)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusSuccess, res.Status)
	assert.Equal(t, "Client Version: v1.34.0", res.Output)
	assert.Equal(t, 1, executor.Calls())
}

func TestRun_EqualRequestsShareResult(t *testing.T) {
	executor := jobstest.NewExecutor()
	executor.RegisterOutput(
		jobs.MustNewRequest([]string{"kubectl", "apply", "-f", "-"}, jobs.WithEnvironment(nil), jobs.WithInputString("a")),
		jobs.StatusFailure, "", "denied")

	res, err := jobs.Run(context.Background(), executor,
		jobs.MustNewRequest([]string{"kubectl", "apply", "-f", "-"}, jobs.WithEnvironment(nil), jobs.WithInputString("a")))
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusFailure, res.Status)
	assert.Equal(t, "denied", res.Error)

	// Same tokens, other payload: falls back to the default result.
	res, err = jobs.Run(context.Background(), executor,
		jobs.MustNewRequest([]string{"kubectl", "apply", "-f", "-"}, jobs.WithEnvironment(nil), jobs.WithInputString("b")))
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusSuccess, res.Status)
}

func TestRunWithConsumer_FeedsCannedOutput(t *testing.T) {
	executor := jobstest.NewExecutor()
	req := jobs.MustNewRequest([]string{"kubectl", "top", "po"})
	executor.RegisterOutput(req, jobs.StatusSuccess, "a\nb\nc\n", "")

	countLines := func(r io.Reader) (int, error) {
		n := 0
		s := bufio.NewScanner(r)
		for s.Scan() {
			n++
		}
		return n, s.Err()
	}

	res, err := jobs.RunWithConsumer(context.Background(), executor, req, countLines)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Output)
}

func TestRunWithConsumer_TypedCannedOutput(t *testing.T) {
	executor := jobstest.NewExecutor()
	req := jobs.MustNewRequest([]string{"kubectl", "get", "crd"})
	executor.Register(req, &jobs.Result[any]{Status: jobs.StatusSuccess, Output: []string{"a", "b"}})

	res, err := jobs.RunWithConsumer(context.Background(), executor, req, func(io.Reader) ([]string, error) {
		t.Fatal("consumer must not run for pre-parsed output")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Output)

	_, err = jobs.Run(context.Background(), executor, req)
	assert.Error(t, err, "buffered run cannot return a non-string output")
}

func TestRun_Fault(t *testing.T) {
	executor := jobstest.NewExecutor()
	req := jobs.MustNewRequest([]string{"kubectl", "version"})
	executor.RegisterFault(req, errors.New("exec: \"kubectl\": executable file not found in $PATH"))

	res, err := jobs.Run(context.Background(), executor, req)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, jobs.ErrExecution)
	assert.Equal(t, 1, executor.Calls())
	assert.Equal(t, []string{"kubectl", "version"}, executor.LastTokens())

	executor.Reset()
	assert.Zero(t, executor.Calls())
	assert.Nil(t, executor.LastTokens())
}

func TestResult_Succeeded(t *testing.T) {
	var nilResult *jobs.Result[string]
	assert.False(t, nilResult.Succeeded())
	assert.True(t, (&jobs.Result[string]{Status: jobs.StatusSuccess}).Succeeded())
	assert.False(t, (&jobs.Result[string]{Status: jobs.StatusFailure}).Succeeded())
}
