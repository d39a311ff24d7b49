package verdict

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/langcheck/internal/diagnostic"
	"github.com/roach88/langcheck/internal/fixture"
	"github.com/roach88/langcheck/internal/invoke"
)

// Result is the verdict for one fixture.
type Result struct {
	Case   *fixture.Case `json:"-"`
	Passed bool          `json:"passed"`

	// Reason is empty when Passed.
	Reason Reason `json:"reason,omitempty"`

	// Expected and Actual carry the compared values for WrongDiagnosticId
	// and WrongDiagnosticLocation. Actual holds the count for
	// WrongDiagnosticCount and the decoder error for MalformedDiagnosticOutput.
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`

	// Count is the number of decoded diagnostics, when decoding succeeded.
	Count int `json:"count,omitempty"`

	ExitCode int           `json:"exit_code"`
	Stderr   string        `json:"stderr,omitempty"`
	Duration time.Duration `json:"-"`
}

// Compare evaluates out against c. Checks short-circuit at the first
// violation so the reason names a single cause.
func Compare(c *fixture.Case, out *invoke.Outcome) Result {
	r := Result{
		Case:     c,
		ExitCode: out.ExitCode,
		Stderr:   string(out.Stderr),
		Duration: out.Duration,
	}

	if out.TimedOut {
		return r.fail(TimeoutFailure, "", "")
	}

	if c.IsErroring() {
		return compareErroring(c, out, r)
	}
	return compareValid(out, r)
}

func compareValid(out *invoke.Outcome, r Result) Result {
	if out.ExitCode != 0 {
		return r.fail(NonZeroExit, "0", fmt.Sprint(out.ExitCode))
	}
	if len(out.Stderr) != 0 {
		return r.fail(UnexpectedStderr, "", "")
	}
	r.Passed = true
	return r
}

func compareErroring(c *fixture.Case, out *invoke.Outcome, r Result) Result {
	if out.ExitCode == 0 {
		return r.fail(ExpectedFailureButSucceeded, "non-zero", "0")
	}
	if len(out.Stderr) == 0 {
		return r.fail(EmptyStderr, "", "")
	}

	diags, err := diagnostic.Decode(out.Stderr)
	if err != nil {
		return r.fail(MalformedDiagnosticOutput, "", err.Error())
	}
	r.Count = len(diags)

	if len(diags) != 1 {
		return r.fail(WrongDiagnosticCount, "1", fmt.Sprint(len(diags)))
	}
	d := diags[0]
	if d.ID != c.ExpectedID {
		return r.fail(WrongDiagnosticID, c.ExpectedID, d.ID)
	}
	if d.Location != c.ExpectedLocation {
		return r.fail(WrongDiagnosticLocation, c.ExpectedLocation, d.Location)
	}

	r.Passed = true
	return r
}

func (r Result) fail(reason Reason, expected, actual string) Result {
	r.Passed = false
	r.Reason = reason
	r.Expected = expected
	r.Actual = actual
	return r
}

// Message explains a failure in one line, naming the fixture and the
// compared values. It is empty for passing results.
func (r *Result) Message() string {
	if r.Passed {
		return ""
	}
	path := r.Case.Path
	switch r.Reason {
	case TimeoutFailure:
		return fmt.Sprintf("%s did not finish within the timeout (ran %s)", path, r.Duration.Round(time.Millisecond))
	case NonZeroExit:
		return fmt.Sprintf("%s did not return successfully: exit code %d", path, r.ExitCode)
	case UnexpectedStderr:
		return fmt.Sprintf("%s has non-empty stderr", path)
	case ExpectedFailureButSucceeded:
		return fmt.Sprintf("%s did not return an error", path)
	case EmptyStderr:
		return fmt.Sprintf("%s has empty stderr", path)
	case MalformedDiagnosticOutput:
		return fmt.Sprintf("%s has invalid diagnostic JSON in stderr: %s", path, r.Actual)
	case WrongDiagnosticCount:
		return fmt.Sprintf("%s reported %s diagnostics, expected exactly 1", path, r.Actual)
	case WrongDiagnosticID:
		return fmt.Sprintf("%s has incorrect error id: got %s, expected %s", path, r.Actual, r.Expected)
	case WrongDiagnosticLocation:
		return fmt.Sprintf("%s has incorrect error location: got %s, expected %s", path, r.Actual, r.Expected)
	default:
		return fmt.Sprintf("%s failed: %s", path, r.Reason)
	}
}

// ShowsStderr reports whether the raw stderr helps diagnose the failure.
func (r *Result) ShowsStderr() bool {
	switch r.Reason {
	case NonZeroExit, UnexpectedStderr, MalformedDiagnosticOutput, WrongDiagnosticCount, TimeoutFailure:
		return strings.TrimSpace(r.Stderr) != ""
	default:
		return false
	}
}
