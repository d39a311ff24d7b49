package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/roach88/langcheck/internal/invoke"
)

// Response is a canned compiler reply.
type Response struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool

	// Delay is slept before replying, honouring context cancellation.
	Delay time.Duration

	// Err is returned instead of an outcome.
	Err error
}

// ScriptedInvoker answers each invocation with the response registered for
// its last argument, the fixture path. Unscripted paths compile cleanly.
//
// Thread-safety: safe for concurrent use.
type ScriptedInvoker struct {
	mu        sync.Mutex
	responses map[string]Response
	calls     [][]string
	inFlight  int
	maxFlight int

	// PreflightErr, when set, is returned by Preflight.
	PreflightErr error
}

// NewScriptedInvoker creates an invoker with no scripted responses.
func NewScriptedInvoker() *ScriptedInvoker {
	return &ScriptedInvoker{responses: make(map[string]Response)}
}

// On registers the response for a fixture path.
func (s *ScriptedInvoker) On(path string, resp Response) *ScriptedInvoker {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = resp
	return s
}

// Fail registers a single-diagnostic failure for path.
func (s *ScriptedInvoker) Fail(path, id, loc string) *ScriptedInvoker {
	return s.On(path, Response{
		ExitCode: 1,
		Stderr:   fmt.Sprintf(`[{"id":%q,"loc":%q}]`, id, loc),
	})
}

// Preflight implements the harness preflight hook.
func (s *ScriptedInvoker) Preflight() error {
	return s.PreflightErr
}

// Invoke implements invoke.Invoker.
func (s *ScriptedInvoker) Invoke(ctx context.Context, args []string) (*invoke.Outcome, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string(nil), args...))
	s.inFlight++
	if s.inFlight > s.maxFlight {
		s.maxFlight = s.inFlight
	}
	var resp Response
	if len(args) > 0 {
		resp = s.responses[args[len(args)-1]]
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}

	return &invoke.Outcome{
		ExitCode: resp.ExitCode,
		Stdout:   []byte(resp.Stdout),
		Stderr:   []byte(resp.Stderr),
		Duration: resp.Delay,
		TimedOut: resp.TimedOut,
	}, nil
}

// Calls returns the argument lists received so far, in arrival order.
func (s *ScriptedInvoker) Calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// MaxConcurrent returns the highest number of simultaneous invocations.
func (s *ScriptedInvoker) MaxConcurrent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxFlight
}
