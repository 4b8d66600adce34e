package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtsim/internal/progress"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestProgressCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	created, err := s.CreateProgress(ctx, progress.Record{
		StartedAt:       started,
		FinishedAt:      started.Add(12 * time.Minute),
		VerdictCategory: "security-input",
		Notes:           "Negligence: data breach via input validation flaw.",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	got, err := s.GetProgress(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.StartedAt.Equal(started))
	assert.Equal(t, "security-input", got.VerdictCategory)

	got.Notes = "appealed"
	updated, err := s.UpdateProgress(ctx, created.ID, got)
	require.NoError(t, err)
	assert.Equal(t, "appealed", updated.Notes)

	require.NoError(t, s.DeleteProgress(ctx, created.ID))
	_, err = s.GetProgress(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProgress_UnsetTimesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	created, err := s.CreateProgress(ctx, progress.Record{VerdictCategory: "win"})
	require.NoError(t, err)

	got, err := s.GetProgress(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.StartedAt.IsZero())
	assert.True(t, got.FinishedAt.IsZero())
}

func TestProgress_ListNewestFirstCapped(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	for i := 0; i < 55; i++ {
		_, err := s.CreateProgress(ctx, progress.Record{Notes: fmt.Sprintf("run-%d", i)})
		require.NoError(t, err)
		// created_at granularity must separate rows for a stable order.
		time.Sleep(time.Millisecond)
	}

	recs, err := s.ListProgress(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 50)
	assert.Equal(t, "run-54", recs[0].Notes)
	assert.Equal(t, "run-5", recs[49].Notes)
}

func TestProgress_MissingRows(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	_, err := s.GetProgress(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdateProgress(ctx, "nope", progress.Record{})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteProgress(ctx, "nope"), ErrNotFound)
}

func TestOutputCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := t.Context()

	created, err := s.CreateOutput(ctx, Output{
		HTML:        `<img id="img1" src="x.png" alt="fixed">`,
		SummaryJSON: `{"stages":3,"won":true}`,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.GetOutput(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.HTML, got.HTML)

	got.SummaryJSON = `{"stages":3,"won":true,"reviewed":true}`
	updated, err := s.UpdateOutput(ctx, created.ID, got)
	require.NoError(t, err)
	assert.Contains(t, updated.SummaryJSON, "reviewed")

	list, err := s.ListOutput(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.DeleteOutput(ctx, created.ID))
	_, err = s.GetOutput(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
