package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes external commands.
type Runner interface {
	// Run executes name with args in dir and returns its captured output.
	Run(ctx context.Context, dir, name string, args ...string) (Output, error)
}

// Output is the captured output of a command.
type Output struct {
	Stdout string
	Stderr string
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Env, if non-nil, replaces the inherited environment.
	Env    []string
	Logger *slog.Logger
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (Output, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if r.Env != nil {
		cmd.Env = r.Env
	}

	err := cmd.Run()
	out := Output{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}
	if r.Logger != nil {
		r.Logger.Debug("ran command", "cmd", name, "args", args, "dir", dir, "error", err)
	}
	if err != nil {
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// StepError reports a failed pipeline step.
type StepError struct {
	Step    string
	Command []string
	Stderr  string
	Err     error
}

func (e *StepError) Error() string {
	if len(e.Command) > 0 {
		return fmt.Sprintf("%s (%s): %v", e.Step, strings.Join(e.Command, " "), e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
