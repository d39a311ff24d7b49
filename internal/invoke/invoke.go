// Package invoke runs the compiler under test as an opaque subprocess.
package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"time"
)

// Outcome is what one compiler run produced.
type Outcome struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration

	// TimedOut is set when the run was killed after exceeding the timeout.
	// ExitCode is meaningless in that case.
	TimedOut bool
}

// Invoker abstracts compiler execution so the harness can be driven by
// fakes in tests.
type Invoker interface {
	Invoke(ctx context.Context, args []string) (*Outcome, error)
}

// LaunchError means the compiler could not be started at all. It signals a
// misconfigured harness rather than a compiler defect.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("cannot launch compiler %q: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// waitDelay bounds how long Wait keeps draining output once the compiler
// has exited or been killed, for compilers that leave children holding the
// pipes.
const waitDelay = 2 * time.Second

// Command invokes a compiler executable on the host.
type Command struct {
	// Path is the executable, resolved through PATH when it has no slash.
	Path string

	// Args are placed before the per-fixture arguments. They allow wrapping
	// interpreters ("python3 compiler.py") or launcher flags.
	Args []string

	// Env is merged over the inherited environment.
	Env map[string]string

	// Timeout kills runs that take longer. Zero waits indefinitely.
	Timeout time.Duration
}

// Preflight checks that the executable can be resolved. Calling it before
// a run turns a missing compiler into a LaunchError before any fixture is
// evaluated.
func (c *Command) Preflight() error {
	if c.Path == "" {
		return &LaunchError{Path: c.Path, Err: errors.New("empty compiler path")}
	}
	if _, err := exec.LookPath(c.Path); err != nil {
		return &LaunchError{Path: c.Path, Err: err}
	}
	return nil
}

// Invoke runs the compiler with args appended to the prefix arguments and
// waits for it to exit. A non-zero exit status is reported in the Outcome,
// not as an error.
func (c *Command) Invoke(ctx context.Context, args []string) (*Outcome, error) {
	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	argv := make([]string, 0, len(c.Args)+len(args))
	argv = append(argv, c.Args...)
	argv = append(argv, args...)

	// #nosec G204 -- the compiler path is the operator's own choice.
	cmd := exec.CommandContext(runCtx, c.Path, argv...)
	if len(c.Env) != 0 {
		keys := make([]string, 0, len(c.Env))
		for k := range c.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		merged := cmd.Environ()
		for _, k := range keys {
			merged = append(merged, fmt.Sprintf("%s=%s", k, c.Env[k]))
		}
		cmd.Env = merged
	}
	if c.Timeout > 0 {
		cmd.WaitDelay = waitDelay
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	out := &Outcome{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if err == nil {
		return out, nil
	}

	// The caller gave up; nothing about this run is meaningful.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		out.TimedOut = true
		out.ExitCode = -1
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}

	// The compiler exited on its own but a child kept the pipes open.
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
		return out, nil
	}

	return nil, &LaunchError{Path: c.Path, Err: err}
}
