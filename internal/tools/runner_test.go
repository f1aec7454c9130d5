package tools

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test shells out to sh")
	}

	stdout, stderr, err := ExecRunner{}.Run(context.Background(),
		"sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", stdout)
	assert.Equal(t, "err\n", stderr)
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test shells out to sh")
	}

	_, _, err := ExecRunner{}.Run(context.Background(),
		"sh", "-c", "echo details >&2; exit 3")
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, 3, toolErr.ExitCode)
	assert.Contains(t, toolErr.Output, "details")
}

func TestExecRunnerFallsBackToStdout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test shells out to sh")
	}

	_, _, err := ExecRunner{}.Run(context.Background(),
		"sh", "-c", "echo only-stdout; exit 1")
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Contains(t, toolErr.Output, "only-stdout")
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, _, err := ExecRunner{}.Run(context.Background(), "definitely-not-a-real-tool-xyz")
	require.Error(t, err)

	// A launch failure is not a tool exit; it must not masquerade as one.
	var toolErr *ToolError
	assert.False(t, errors.As(err, &toolErr))
}
