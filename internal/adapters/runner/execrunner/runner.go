// Package execrunner runs convergence commands on the local host.
package execrunner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/hostinit/hostinit/internal/core/ports"
)

type Runner struct {
	logger ports.Logger
}

func New(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes the command and captures its output. A non-zero exit is
// reported through CommandResult.ExitCode, not the error; the error is
// reserved for start failures and context expiry.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (ports.CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := ports.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}
	return result, nil
}
