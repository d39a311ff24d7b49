package harness

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/langcheck/internal/digest"
	"github.com/roach88/langcheck/internal/fixture"
	"github.com/roach88/langcheck/internal/verdict"
)

// Report aggregates one run.
type Report struct {
	Policy Policy

	// Results holds every evaluated fixture in catalog order.
	Results []verdict.Result

	// NotRun lists fixtures skipped after a fail-fast stop.
	NotRun []fixture.Case

	Passed int
	Failed int
}

// OK reports whether every evaluated fixture passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// ExitCode is the process exit status for the run.
func (r *Report) ExitCode() int {
	if r.OK() {
		return 0
	}
	return 1
}

// Total counts evaluated and skipped fixtures.
func (r *Report) Total() int {
	return len(r.Results) + len(r.NotRun)
}

// FirstFailure returns the earliest failing result in catalog order.
func (r *Report) FirstFailure() *verdict.Result {
	for i := range r.Results {
		if !r.Results[i].Passed {
			return &r.Results[i]
		}
	}
	return nil
}

// fingerprintEntry is the part of a result that must be reproducible.
// Durations and raw stderr are left out.
type fingerprintEntry struct {
	Path     string         `json:"path"`
	Kind     fixture.Kind   `json:"kind"`
	Passed   bool           `json:"passed"`
	Reason   verdict.Reason `json:"reason"`
	Expected string         `json:"expected"`
	Actual   string         `json:"actual"`
	Count    int            `json:"count"`
	ExitCode int            `json:"exit_code"`
}

// Fingerprint digests the result sequence. Running an unchanged compiler
// against unchanged fixtures yields the same fingerprint.
func (r *Report) Fingerprint() (string, error) {
	entries := make([]fingerprintEntry, 0, len(r.Results))
	for _, res := range r.Results {
		entries = append(entries, fingerprintEntry{
			Path:     res.Case.Path,
			Kind:     res.Case.Kind,
			Passed:   res.Passed,
			Reason:   res.Reason,
			Expected: res.Expected,
			Actual:   res.Actual,
			Count:    res.Count,
			ExitCode: res.ExitCode,
		})
	}
	return digest.Sum(entries)
}

// TextReporter writes one line per fixture as results arrive, with group
// headers and full failure context.
type TextReporter struct {
	w       io.Writer
	kind    fixture.Kind
	started bool
}

// NewTextReporter creates a reporter writing to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

// Report implements Reporter.
func (t *TextReporter) Report(r *verdict.Result) {
	if !t.started || r.Case.Kind != t.kind {
		if t.started {
			fmt.Fprintln(t.w)
		}
		fmt.Fprintf(t.w, "Testing the compiler with the %s files:\n", r.Case.Kind)
		t.kind = r.Case.Kind
		t.started = true
	}

	if r.Passed {
		fmt.Fprintf(t.w, "✓ %s\n", r.Case.Path)
		return
	}

	fmt.Fprintf(t.w, "✗ %s\n", r.Case.Path)
	fmt.Fprintf(t.w, "  %s: %s\n", r.Reason, r.Message())
	if r.ShowsStderr() {
		fmt.Fprintln(t.w, "  stderr:")
		for _, line := range strings.Split(strings.TrimRight(r.Stderr, "\n"), "\n") {
			fmt.Fprintf(t.w, "    %s\n", line)
		}
	}
}

// Summary writes the closing totals for rep.
func (t *TextReporter) Summary(rep *Report) {
	fmt.Fprintln(t.w)
	fmt.Fprintf(t.w, "Test Summary: %d passed, %d failed, %d not run, %d total\n",
		rep.Passed, rep.Failed, len(rep.NotRun), rep.Total())

	if rep.OK() {
		fmt.Fprintln(t.w, "✓ All fixtures passed")
		return
	}
	if len(rep.NotRun) > 0 {
		fmt.Fprintf(t.w, "Stopped at first failure (%s); rerun with --keep-going to evaluate the rest\n", rep.Policy)
	}
}
