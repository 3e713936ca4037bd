// Package runner executes external commands under a context deadline.
package runner

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/pipegate/pipegate/internal/domain"
)

// ExecRunner is the production implementation of domain.CommandRunner using
// os/exec. Commands started with a deadline context are killed when the
// deadline passes.
type ExecRunner struct{}

// New creates an ExecRunner.
func New() *ExecRunner { return &ExecRunner{} }

// Run executes the command and captures stdout/stderr. A non-zero exit is
// reported via ExitCode, not an error; errors are reserved for execution
// failures (missing binary, canceled context).
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, dir string) (domain.CmdResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if dir != "" {
		cmd.Dir = dir
	}

	err := cmd.Run()

	result := domain.CmdResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}
