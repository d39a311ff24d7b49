package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/langcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Verify   bool
	Show     string
}

// VerifyResult reports whether the latest two runs of a manifest agree.
type VerifyResult struct {
	Manifest     string `json:"manifest"`
	Reproducible bool   `json:"reproducible"`
	Latest       string `json:"latest"`
	Previous     string `json:"previous"`
	Fingerprint  string `json:"fingerprint"`
	PreviousFP   string `json:"previous_fingerprint"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions, env envConfig) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded runs",
		Long: `List runs recorded with "langcheck run --db", newest first.

With --show, print one run with its per-fixture verdicts. With --verify,
compare the fingerprints of the two most recent runs of the newest run's
manifest: an unchanged compiler against unchanged fixtures must produce
identical results.

Exit codes:
  0 - Success (or fingerprints match)
  1 - Fingerprints differ
  2 - Command error (database not found, unknown run, etc.)

Examples:
  langcheck history --db history.db
  langcheck history --db history.db --limit 5 --format json
  langcheck history --db history.db --show <run-id>
  langcheck history --db history.db --verify`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", env.DB, "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 for all)")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "check the two most recent runs have equal fingerprints")
	cmd.Flags().StringVar(&opts.Show, "show", "", "print one run with its fixture verdicts")
	cmd.MarkFlagsMutuallyExclusive("verify", "show")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format: opts.Format,
		Writer: cmd.OutOrStdout(),
	}

	if opts.Database == "" {
		return NewExitError(ExitCommandError, "--db is required")
	}
	// Open would create a fresh database; an absent one is a usage error here.
	if _, err := os.Stat(opts.Database); err != nil {
		if opts.Format == "json" {
			_ = formatter.Error(ErrCodeStore, fmt.Sprintf("database not found: %s", opts.Database), nil)
		}
		return WrapExitError(ExitCommandError, "database not found", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case opts.Show != "":
		return showRun(ctx, st, opts.Show, formatter)
	case opts.Verify:
		return verifyRuns(ctx, st, formatter)
	default:
		return listRuns(ctx, st, opts.Limit, formatter)
	}
}

func listRuns(ctx context.Context, st *store.Store, limit int, f *OutputFormatter) error {
	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if f.Format == "json" {
		return f.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		status := "✓"
		if r.ExitCode != 0 {
			status = "✗"
		}
		fmt.Fprintf(f.Writer, "%s %s  %s  %s  %s  %d passed, %d failed, %d not run  %s\n",
			status, r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Manifest, r.Compiler,
			r.Passed, r.Failed, r.NotRun, r.Fingerprint)
	}
	return nil
}

func showRun(ctx context.Context, st *store.Store, id string, f *OutputFormatter) error {
	run, err := st.ReadRun(ctx, id)
	if err != nil {
		if f.Format == "json" {
			_ = f.Error(ErrCodeStore, err.Error(), nil)
		}
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	if f.Format == "json" {
		return f.Success(run)
	}

	fmt.Fprintf(f.Writer, "Run %s (%s, %s)\n", run.ID, run.Manifest, run.Policy)
	fmt.Fprintf(f.Writer, "Compiler: %s\n", run.Compiler)
	fmt.Fprintf(f.Writer, "Started: %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(f.Writer, "Fingerprint: %s\n", run.Fingerprint)
	for _, c := range run.Results {
		if c.Passed {
			fmt.Fprintf(f.Writer, "✓ %s\n", c.Path)
			continue
		}
		fmt.Fprintf(f.Writer, "✗ %s  %s", c.Path, c.Reason)
		if c.Expected != "" || c.Actual != "" {
			fmt.Fprintf(f.Writer, " (expected %s, got %s)", c.Expected, c.Actual)
		}
		fmt.Fprintln(f.Writer)
	}
	fmt.Fprintf(f.Writer, "%d passed, %d failed, %d not run\n", run.Passed, run.Failed, run.NotRun)
	return nil
}

func verifyRuns(ctx context.Context, st *store.Store, f *OutputFormatter) error {
	latest, err := st.ListRuns(ctx, 1)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	if len(latest) == 0 {
		return NewExitError(ExitCommandError, "no runs recorded")
	}

	manifest := latest[0].Manifest
	runs, err := st.ListRunsForManifest(ctx, manifest, 2)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	if len(runs) < 2 {
		return NewExitError(ExitCommandError, fmt.Sprintf("need two runs of %s to verify, have %d", manifest, len(runs)))
	}

	result := VerifyResult{
		Manifest:     manifest,
		Reproducible: runs[0].Fingerprint == runs[1].Fingerprint,
		Latest:       runs[0].ID,
		Previous:     runs[1].ID,
		Fingerprint:  runs[0].Fingerprint,
		PreviousFP:   runs[1].Fingerprint,
	}

	if f.Format == "json" {
		if result.Reproducible {
			if err := f.Success(result); err != nil {
				return err
			}
		} else {
			if err := f.Error(ErrCodeFingerprintDiff, "fingerprints differ", result); err != nil {
				return err
			}
		}
	} else if result.Reproducible {
		fmt.Fprintf(f.Writer, "✓ %s and %s agree (%s)\n", result.Latest, result.Previous, result.Fingerprint)
	} else {
		fmt.Fprintf(f.Writer, "✗ %s and %s differ\n", result.Latest, result.Previous)
		fmt.Fprintf(f.Writer, "  %s: %s\n", result.Latest, result.Fingerprint)
		fmt.Fprintf(f.Writer, "  %s: %s\n", result.Previous, result.PreviousFP)
	}

	if !result.Reproducible {
		return NewExitError(ExitFailure, "fingerprints differ")
	}
	return nil
}
