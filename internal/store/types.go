package store

import "time"

// RunRecord is one stored conformance run.
type RunRecord struct {
	ID          string    `json:"id"`
	Manifest    string    `json:"manifest"`
	Compiler    string    `json:"compiler"`
	StartedAt   time.Time `json:"started_at"`
	Policy      string    `json:"policy"`
	Fingerprint string    `json:"fingerprint"`
	Passed      int       `json:"passed"`
	Failed      int       `json:"failed"`
	NotRun      int       `json:"not_run"`
	ExitCode    int       `json:"exit_code"`

	// Results is populated by ReadRun only.
	Results []CaseRecord `json:"results,omitempty"`
}

// CaseRecord is the stored verdict for one fixture of a run.
type CaseRecord struct {
	Seq      int           `json:"seq"`
	Path     string        `json:"path"`
	Kind     string        `json:"kind"`
	Passed   bool          `json:"passed"`
	Reason   string        `json:"reason,omitempty"`
	Expected string        `json:"expected,omitempty"`
	Actual   string        `json:"actual,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// timeLayout is fixed-width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
