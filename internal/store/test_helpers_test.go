package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/langcheck/internal/testutil"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with n passing valid cases.
func createTestRun(id, manifest string, started time.Time, n int) RunRecord {
	run := RunRecord{
		ID:          id,
		Manifest:    manifest,
		Compiler:    "./build/compiler",
		StartedAt:   started,
		Policy:      "fail-fast",
		Fingerprint: "sha256:" + id,
		Passed:      n,
	}
	for i := 0; i < n; i++ {
		run.Results = append(run.Results, CaseRecord{
			Seq:    i,
			Path:   fmt.Sprintf("samples/valid/%d.lang", i+1),
			Kind:   "valid",
			Passed: true,
		})
	}
	return run
}

var _ IDGenerator = (*testutil.SequentialIDGenerator)(nil)
