package gpio

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and reports whether it succeeded.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec. A missing executable or a non-zero
// exit status is returned as an error carrying the command output.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	line := strings.Join(append([]string{name}, args...), " ")

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return fmt.Errorf("%s: exit status %d", line, exitErr.ExitCode())
		}
		return fmt.Errorf("%s: exit status %d: %s", line, exitErr.ExitCode(), msg)
	}
	return fmt.Errorf("%s: %w", line, err)
}
