package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	log "github.com/sirupsen/logrus"
)

// Runner executes an external tool and captures its output. The pipeline
// only ever sees this interface, so tests substitute fakes and the real
// tools are never required on developer machines.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// ToolError is a non-zero exit from an external tool. Output carries the
// captured stderr (or stdout when stderr was empty) verbatim, because it is
// the only diagnostic the user will get.
type ToolError struct {
	Tool     string
	ExitCode int
	Output   string
}

func (e *ToolError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("command %s failed with code %d", e.Tool, e.ExitCode)
	}
	return fmt.Sprintf("command %s failed with code %d: %s", e.Tool, e.ExitCode, e.Output)
}

// MissingOutputError is an expected artifact that is absent even though the
// tool that should have produced it reported success.
type MissingOutputError struct {
	Tool string
	Path string
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("%s did not produce expected output: %s", e.Tool, e.Path)
}

// ExecRunner runs tools as subprocesses.
type ExecRunner struct{}

// Run executes name with args, capturing both output streams. A non-zero
// exit becomes a ToolError; other launch failures are returned as-is.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	outText := stdout.String()
	errText := stderr.String()

	exitCode := -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	log.WithFields(log.Fields{
		"tool": name,
		"exit": exitCode,
	}).Debug("finished external command")
	if outText != "" {
		log.Debugf("%s stdout: %s", name, outText)
	}
	if errText != "" {
		log.Debugf("%s stderr: %s", name, errText)
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			output := errText
			if output == "" {
				output = outText
			}
			return outText, errText, &ToolError{
				Tool:     name,
				ExitCode: exitErr.ExitCode(),
				Output:   output,
			}
		}
		return outText, errText, fmt.Errorf("failed to run %s: %w", name, runErr)
	}

	return outText, errText, nil
}
