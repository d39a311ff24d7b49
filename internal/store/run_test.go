package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/langcheck/internal/testutil"
)

func TestWriteRun_ReadRunRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	clock := testutil.NewDeterministicClock(time.Minute)

	run := createTestRun("run-1", "lang-samples", clock.Now(), 2)
	run.Failed = 1
	run.ExitCode = 1
	run.Results = append(run.Results, CaseRecord{
		Seq:      2,
		Path:     "samples/error/01.lang",
		Kind:     "error",
		Reason:   "WrongDiagnosticId",
		Expected: "lex-invalid-char",
		Actual:   "lex-other",
		Duration: 12 * time.Millisecond,
	})

	require.NoError(t, s.WriteRun(ctx, run))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.True(t, run.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, run.Fingerprint, got.Fingerprint)
	assert.Equal(t, 1, got.ExitCode)
	require.Len(t, got.Results, 3)
	assert.Equal(t, run.Results, got.Results)
}

func TestWriteRun_DuplicateIDRejected(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1", "m", testutil.Epoch, 1)
	require.NoError(t, s.WriteRun(ctx, run))
	assert.Error(t, s.WriteRun(ctx, run))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestWriteRun_FailedCaseRollsBackRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1", "m", testutil.Epoch, 2)
	run.Results[1].Seq = 0 // duplicate primary key

	require.Error(t, s.WriteRun(ctx, run))

	_, err := s.ReadRun(ctx, "run-1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestWriteRun_RequiresID(t *testing.T) {
	s := createTestStore(t)
	assert.Error(t, s.WriteRun(context.Background(), RunRecord{}))
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRuns_NewestFirstWithLimit(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	clock := testutil.NewDeterministicClock(time.Hour)
	ids := testutil.NewSequentialIDGenerator("")

	var written []string
	for i := 0; i < 4; i++ {
		id := ids.Generate()
		written = append(written, id)
		require.NoError(t, s.WriteRun(ctx, createTestRun(id, "m", clock.Now(), 1)))
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, written[3], runs[0].ID)
	assert.Equal(t, written[2], runs[1].ID)
	assert.Nil(t, runs[0].Results)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestListRunsForManifest(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	clock := testutil.NewDeterministicClock(time.Second)

	require.NoError(t, s.WriteRun(ctx, createTestRun("a1", "alpha", clock.Now(), 1)))
	require.NoError(t, s.WriteRun(ctx, createTestRun("b1", "beta", clock.Now(), 1)))
	require.NoError(t, s.WriteRun(ctx, createTestRun("a2", "alpha", clock.Now(), 1)))

	runs, err := s.ListRunsForManifest(ctx, "alpha", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "a2", runs[0].ID)
	assert.Equal(t, "a1", runs[1].ID)

	none, err := s.ListRunsForManifest(ctx, "gamma", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUUIDv7Generator(t *testing.T) {
	var g UUIDv7Generator

	a, b := g.Generate(), g.Generate()
	assert.NotEqual(t, a, b)

	id, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}
