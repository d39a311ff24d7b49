package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/langcheck/internal/fixture"
	"github.com/roach88/langcheck/internal/invoke"
	"github.com/roach88/langcheck/internal/verdict"
)

// ErrorFormatFlag selects structured diagnostics on erroring fixtures.
const ErrorFormatFlag = "--error-format=json"

// Policy decides what a failing fixture does to the rest of the run.
type Policy int

const (
	FailFast Policy = iota
	KeepGoing
)

func (p Policy) String() string {
	if p == KeepGoing {
		return "keep-going"
	}
	return "fail-fast"
}

// Reporter receives results in catalog order as they become available.
type Reporter interface {
	Report(r *verdict.Result)
}

// Options configures a run.
type Options struct {
	// Invoker runs the compiler. If it also implements Preflight() error,
	// that is called once before any fixture.
	Invoker invoke.Invoker

	Policy Policy

	// Concurrency bounds simultaneous compiler processes. Values below 2
	// run fixtures one at a time.
	Concurrency int

	// ErrorFormatArgs precede the fixture path for erroring cases.
	// Defaults to ErrorFormatFlag.
	ErrorFormatArgs []string

	// Reporter may be nil.
	Reporter Reporter

	// Logger defaults to discarding output.
	Logger *slog.Logger
}

type preflighter interface {
	Preflight() error
}

// Run evaluates cases and returns the aggregated report. The returned error
// is non-nil only for harness-level failures (the compiler could not be
// launched, or ctx was cancelled); fixture failures are in the report.
func Run(ctx context.Context, cases []fixture.Case, opts Options) (*Report, error) {
	if opts.Invoker == nil {
		return nil, fmt.Errorf("harness: no invoker configured")
	}
	if opts.ErrorFormatArgs == nil {
		opts.ErrorFormatArgs = []string{ErrorFormatFlag}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if p, ok := opts.Invoker.(preflighter); ok {
		if err := p.Preflight(); err != nil {
			return nil, err
		}
	}

	r := &runner{
		cases:   cases,
		opts:    opts,
		logger:  logger,
		results: make([]*verdict.Result, len(cases)),
	}

	var err error
	if opts.Concurrency > 1 {
		err = r.runParallel(ctx)
	} else {
		err = r.runSequential(ctx)
	}
	if err != nil {
		return nil, err
	}

	r.flush()
	return r.report(), nil
}

type runner struct {
	cases  []fixture.Case
	opts   Options
	logger *slog.Logger

	failed atomic.Bool

	mu       sync.Mutex
	results  []*verdict.Result
	reported int
}

func (r *runner) runSequential(ctx context.Context) error {
	for i := range r.cases {
		if r.stopped() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.evaluate(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) runParallel(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for i := range r.cases {
		if r.stopped() || gctx.Err() != nil {
			break
		}
		// Once handed to the group a fixture always runs, so the reported
		// results stay a contiguous prefix of the catalog.
		g.Go(func() error {
			return r.evaluate(gctx, i)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (r *runner) stopped() bool {
	return r.opts.Policy == FailFast && r.failed.Load()
}

func (r *runner) evaluate(ctx context.Context, i int) error {
	c := &r.cases[i]

	out, err := r.opts.Invoker.Invoke(ctx, r.args(c))
	if err != nil {
		return fmt.Errorf("%s: %w", c.Path, err)
	}

	res := verdict.Compare(c, out)
	r.logger.Debug("fixture evaluated",
		"fixture", c.Path,
		"kind", c.Kind,
		"passed", res.Passed,
		"reason", res.Reason,
		"exit_code", out.ExitCode,
		"duration", out.Duration,
	)

	if !res.Passed && !r.failed.Swap(true) && r.opts.Policy == FailFast {
		r.logger.Info("stopping after first failure", "fixture", c.Path, "reason", res.Reason)
	}

	r.record(i, &res)
	return nil
}

func (r *runner) args(c *fixture.Case) []string {
	if !c.IsErroring() {
		return []string{c.Path}
	}
	args := make([]string, 0, len(r.opts.ErrorFormatArgs)+1)
	args = append(args, r.opts.ErrorFormatArgs...)
	return append(args, c.Path)
}

// record stores a result and forwards every result whose predecessors
// have all been reported.
func (r *runner) record(i int, res *verdict.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results[i] = res
	for r.reported < len(r.results) && r.results[r.reported] != nil {
		r.emit(r.results[r.reported])
		r.reported++
	}
}

// flush forwards results stranded behind fixtures that never ran.
func (r *runner) flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ; r.reported < len(r.results); r.reported++ {
		if res := r.results[r.reported]; res != nil {
			r.emit(res)
		}
	}
}

func (r *runner) emit(res *verdict.Result) {
	if r.opts.Reporter != nil {
		r.opts.Reporter.Report(res)
	}
}

func (r *runner) report() *Report {
	rep := &Report{
		Policy:  r.opts.Policy,
		Results: make([]verdict.Result, 0, len(r.cases)),
	}
	for i, res := range r.results {
		if res == nil {
			rep.NotRun = append(rep.NotRun, r.cases[i])
			continue
		}
		rep.Results = append(rep.Results, *res)
		if res.Passed {
			rep.Passed++
		} else {
			rep.Failed++
		}
	}
	return rep
}
