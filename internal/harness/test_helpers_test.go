package harness

import (
	"sync"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/langcheck/internal/fixture"
	"github.com/roach88/langcheck/internal/testutil"
	"github.com/roach88/langcheck/internal/verdict"
)

// collectingReporter records the order results were reported in.
type collectingReporter struct {
	mu    sync.Mutex
	paths []string
}

func (c *collectingReporter) Report(r *verdict.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, r.Case.Path)
}

// conformingCompiler scripts correct answers for every erroring case.
func conformingCompiler(cases []fixture.Case) *testutil.ScriptedInvoker {
	inv := testutil.NewScriptedInvoker()
	for _, c := range cases {
		if c.IsErroring() {
			inv.Fail(c.Path, c.ExpectedID, c.ExpectedLocation)
		}
	}
	return inv
}

func casePaths(cases []fixture.Case) []string {
	paths := make([]string, len(cases))
	for i, c := range cases {
		paths[i] = c.Path
	}
	return paths
}

// assertGolden compares console output against testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func assertGolden(t *testing.T, name string, got []byte) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, got)
}
