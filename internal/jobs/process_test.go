package jobs

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available, skipping", name)
	}
}

func TestProcessExecutor_Buffered(t *testing.T) {
	requireBinary(t, "sh")

	tests := []struct {
		name       string
		script     string
		wantStatus Status
		wantOut    string
		wantErr    string
	}{
		{
			name:       "success",
			script:     "echo hello",
			wantStatus: StatusSuccess,
			wantOut:    "hello\n",
		},
		{
			name:       "failure keeps stderr verbatim",
			script:     `echo 'error: the server doesn'"'"'t have a resource type "none"' >&2; exit 1`,
			wantStatus: StatusFailure,
			wantErr:    "error: the server doesn't have a resource type \"none\"\n",
		},
		{
			name:       "both streams captured independently",
			script:     "echo out; echo err >&2",
			wantStatus: StatusSuccess,
			wantOut:    "out\n",
			wantErr:    "err\n",
		},
	}

	executor := NewProcessExecutor(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := MustNewRequest([]string{"sh", "-c", tt.script})

			res, err := Run(context.Background(), executor, req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantOut, res.Output)
			assert.Equal(t, tt.wantErr, res.Error)
		})
	}
}

func TestProcessExecutor_Stdin(t *testing.T) {
	requireBinary(t, "cat")

	req := MustNewRequest([]string{"cat"}, WithInputString(`{"kind":"ConfigMap"}`))

	res, err := Run(context.Background(), NewProcessExecutor(nil), req)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, `{"kind":"ConfigMap"}`, res.Output)
}

func TestProcessExecutor_Environment(t *testing.T) {
	requireBinary(t, "sh")

	req := MustNewRequest([]string{"sh", "-c", `printf %s "$JOB_VALUE"`},
		WithEnvironment(map[string]string{"JOB_VALUE": "from-request", "PATH": "/usr/bin:/bin"}))

	res, err := Run(context.Background(), NewProcessExecutor(nil), req)
	require.NoError(t, err)
	assert.Equal(t, "from-request", res.Output)
}

func TestProcessExecutor_LaunchFailure(t *testing.T) {
	req := MustNewRequest([]string{"kubectl-jobs-definitely-not-installed", "version"})

	res, err := Run(context.Background(), NewProcessExecutor(nil), req)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecution)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "kubectl-jobs-definitely-not-installed", execErr.Program)
}

func TestProcessExecutor_Streaming(t *testing.T) {
	requireBinary(t, "sh")

	countLines := func(r io.Reader) (int, error) {
		n := 0
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			n++
		}
		return n, scanner.Err()
	}

	req := MustNewRequest([]string{"sh", "-c", "for i in 1 2 3 4 5; do echo line$i; done; echo warn >&2"})

	res, err := RunWithConsumer(context.Background(), NewProcessExecutor(nil), req, countLines)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 5, res.Output)
	assert.Equal(t, "warn\n", res.Error)
}

func TestProcessExecutor_StreamingLargeOutput(t *testing.T) {
	requireBinary(t, "sh")

	// Enough output on both streams to fill an OS pipe buffer several times.
	script := "i=0; while [ $i -lt 20000 ]; do echo stdout-line-$i; echo stderr-line-$i >&2; i=$((i+1)); done"
	req := MustNewRequest([]string{"sh", "-c", script})

	firstLine := func(r io.Reader) (string, error) {
		line, err := bufio.NewReader(r).ReadString('\n')
		return strings.TrimSpace(line), err
	}

	done := make(chan struct{})
	var (
		res *Result[string]
		err error
	)
	go func() {
		defer close(done)
		res, err = RunWithConsumer(context.Background(), NewProcessExecutor(nil), req, firstLine)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("executor did not drain the child's output")
	}

	require.NoError(t, err)
	assert.Equal(t, "stdout-line-0", res.Output)
	assert.True(t, strings.HasSuffix(res.Error, "stderr-line-19999\n"))
}

func TestProcessExecutor_StreamingConsumerError(t *testing.T) {
	requireBinary(t, "sh")

	failing := func(io.Reader) (any, error) {
		return nil, fmt.Errorf("not json")
	}

	req := MustNewRequest([]string{"sh", "-c", "echo garbage"})
	_, err := NewProcessExecutor(nil).Execute(context.Background(), req, failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not json")
	assert.NotErrorIs(t, err, ErrExecution)

	// The tool failure wins over a consumer that could not parse its output.
	req = MustNewRequest([]string{"sh", "-c", "echo oops >&2; exit 3"})
	res, err := NewProcessExecutor(nil).Execute(context.Background(), req, failing)
	require.NoError(t, err)
	assert.Equal(t, StatusFailure, res.Status)
	assert.Equal(t, "oops\n", res.Error)
}

func TestProcessExecutor_CallerDeadline(t *testing.T) {
	requireBinary(t, "sleep")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res, err := Run(ctx, NewProcessExecutor(nil), MustNewRequest([]string{"sleep", "10"}))
	require.NoError(t, err)
	assert.Equal(t, StatusKilled, res.Status)
}
