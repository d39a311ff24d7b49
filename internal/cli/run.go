package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/langcheck/internal/fixture"
	"github.com/roach88/langcheck/internal/harness"
	"github.com/roach88/langcheck/internal/invoke"
	"github.com/roach88/langcheck/internal/store"
	"github.com/roach88/langcheck/internal/verdict"
)

// Run IDs and start times; swapped in tests.
var (
	runIDs store.IDGenerator = store.UUIDv7Generator{}
	now                      = time.Now
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Manifest     string
	Pipeline     string
	KeepGoing    bool
	Jobs         int
	Timeout      time.Duration
	CompilerArgs []string
	Database     string
}

// RunSummary is the JSON payload of the run command.
type RunSummary struct {
	Manifest    string       `json:"manifest"`
	Compiler    string       `json:"compiler"`
	Pipeline    string       `json:"pipeline"`
	Policy      string       `json:"policy"`
	Passed      int          `json:"passed"`
	Failed      int          `json:"failed"`
	NotRun      []string     `json:"not_run"`
	Total       int          `json:"total"`
	Fingerprint string       `json:"fingerprint"`
	Results     []ResultView `json:"results"`
}

// ResultView is one fixture verdict in JSON output.
type ResultView struct {
	Path    string       `json:"path"`
	Kind    fixture.Kind `json:"kind"`
	Message string       `json:"message,omitempty"`
	verdict.Result
	DurationMS int64 `json:"duration_ms"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions, env envConfig) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <compiler>",
		Short: "Run the fixture catalog against a compiler",
		Long: `Run every fixture in the catalog against the compiler executable and
report a verdict per fixture.

The compiler is invoked as "<compiler> [--compiler-arg...] <fixture>" for
valid fixtures and "<compiler> [--compiler-arg...] --error-format=json <fixture>"
for erroring ones. Stdout is ignored.

Exit codes:
  0 - All evaluated fixtures passed
  1 - A fixture failed, or the compiler could not be launched
  2 - Command error (bad flags, unreadable manifest, etc.)

Environment:
  LANGCHECK_MANIFEST, LANGCHECK_JOBS, LANGCHECK_TIMEOUT, LANGCHECK_DB
  supply defaults for the matching flags.

Examples:
  langcheck run ./build/compiler
  langcheck run ./build/compiler --pipeline syn
  langcheck run python3 --compiler-arg compiler.py --keep-going
  langcheck run ./build/compiler -j 8 --timeout 10s --db history.db`,
		Args:          exactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConformance(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Manifest, "manifest", env.Manifest, "fixture manifest (.yaml, .yml or .cue); built-in catalog if empty")
	cmd.Flags().StringVarP(&opts.Pipeline, "pipeline", "p", string(fixture.StageAll), "pipeline stage to test (all|lex|syn|cfa|output)")
	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "evaluate every fixture instead of stopping at the first failure")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", env.Jobs, "number of fixtures to run concurrently")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", env.Timeout, "per-fixture time limit (0 for none)")
	cmd.Flags().StringArrayVar(&opts.CompilerArgs, "compiler-arg", nil, "argument placed before fixture arguments (repeatable)")
	cmd.Flags().StringVar(&opts.Database, "db", env.DB, "record the run in this SQLite database")

	return cmd
}

func runConformance(opts *RunOptions, compiler string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions, formatter.GetErrWriter())

	if opts.Jobs < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --jobs %d: must be at least 1", opts.Jobs))
	}
	if opts.Timeout < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --timeout %s: must not be negative", opts.Timeout))
	}

	manifest, cases, err := loadCatalog(opts.Manifest, opts.Pipeline)
	if err != nil {
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeManifest, err.Error(), nil)
		}
		return err
	}

	policy := harness.FailFast
	if opts.KeepGoing {
		policy = harness.KeepGoing
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reporter *harness.TextReporter
	runOpts := harness.Options{
		Invoker: &invoke.Command{
			Path:    compiler,
			Args:    opts.CompilerArgs,
			Timeout: opts.Timeout,
		},
		Policy:      policy,
		Concurrency: opts.Jobs,
		Logger:      logger,
	}
	if opts.Format != "json" {
		reporter = harness.NewTextReporter(cmd.OutOrStdout())
		runOpts.Reporter = reporter
	}

	started := now()

	logger.Info("run starting",
		"manifest", manifest.Name,
		"compiler", compiler,
		"fixtures", len(cases),
		"policy", policy,
		"jobs", opts.Jobs,
	)

	rep, err := harness.Run(ctx, cases, runOpts)
	if err != nil {
		var launchErr *invoke.LaunchError
		if errors.As(err, &launchErr) {
			if opts.Format == "json" {
				_ = formatter.Error(ErrCodeLaunch, err.Error(), map[string]string{"compiler": compiler})
			}
			return WrapExitError(ExitFailure, "compiler could not be launched", err)
		}
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "run aborted", err)
	}

	fingerprint, err := rep.Fingerprint()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to fingerprint run", err)
	}

	var runID string
	if opts.Database != "" {
		record := buildRunRecord(runIDs.Generate(), manifest.Name, compiler, started, fingerprint, rep)
		if err := recordRun(ctx, opts.Database, record); err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		runID = record.ID
		logger.Info("run recorded", "id", runID, "db", opts.Database)
	}

	if opts.Format == "json" {
		if err := outputRunJSON(cmd, manifest.Name, compiler, opts.Pipeline, fingerprint, runID, rep); err != nil {
			return err
		}
	} else {
		reporter.Summary(rep)
		if runID != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Run recorded as %s\n", runID)
		}
	}

	if !rep.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d fixture(s) failed", rep.Failed))
	}
	return nil
}

func recordRun(ctx context.Context, path string, record store.RunRecord) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.WriteRun(ctx, record)
}

func buildRunRecord(id, manifest, compiler string, started time.Time, fingerprint string, rep *harness.Report) store.RunRecord {
	record := store.RunRecord{
		ID:          id,
		Manifest:    manifest,
		Compiler:    compiler,
		StartedAt:   started,
		Policy:      rep.Policy.String(),
		Fingerprint: fingerprint,
		Passed:      rep.Passed,
		Failed:      rep.Failed,
		NotRun:      len(rep.NotRun),
		ExitCode:    rep.ExitCode(),
		Results:     make([]store.CaseRecord, 0, len(rep.Results)),
	}
	for i, res := range rep.Results {
		record.Results = append(record.Results, store.CaseRecord{
			Seq:      i,
			Path:     res.Case.Path,
			Kind:     string(res.Case.Kind),
			Passed:   res.Passed,
			Reason:   string(res.Reason),
			Expected: res.Expected,
			Actual:   res.Actual,
			Duration: res.Duration,
		})
	}
	return record
}

// outputRunJSON writes the run as a single CLIResponse.
func outputRunJSON(cmd *cobra.Command, manifest, compiler, pipeline, fingerprint, runID string, rep *harness.Report) error {
	summary := RunSummary{
		Manifest:    manifest,
		Compiler:    compiler,
		Pipeline:    pipeline,
		Policy:      rep.Policy.String(),
		Passed:      rep.Passed,
		Failed:      rep.Failed,
		NotRun:      make([]string, 0, len(rep.NotRun)),
		Total:       rep.Total(),
		Fingerprint: fingerprint,
		Results:     make([]ResultView, 0, len(rep.Results)),
	}
	for _, c := range rep.NotRun {
		summary.NotRun = append(summary.NotRun, c.Path)
	}
	for _, res := range rep.Results {
		summary.Results = append(summary.Results, ResultView{
			Path:       res.Case.Path,
			Kind:       res.Case.Kind,
			Message:    res.Message(),
			Result:     res,
			DurationMS: res.Duration.Milliseconds(),
		})
	}

	response := CLIResponse{
		Status: "ok",
		Data:   summary,
		RunID:  runID,
	}
	if !rep.OK() {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeFixturesFailed,
			Message: fmt.Sprintf("%d fixture(s) failed", rep.Failed),
		}
	}
	return writeJSON(cmd.OutOrStdout(), response)
}
