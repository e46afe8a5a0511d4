package progress

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flashdeck/internal/catalog"
	"github.com/roach88/flashdeck/internal/store"
	"github.com/roach88/flashdeck/internal/testutil"
)

func newTestStore(t *testing.T) (*Store, *store.Memory, *testutil.ManualClock) {
	t.Helper()
	backend := store.NewMemory()
	clock := testutil.NewManualClock(t0)
	s := New(backend, WithClock(clock))
	return s, backend, clock
}

func TestInit_FreshBackend(t *testing.T) {
	s, backend, _ := newTestStore(t)
	ctx := context.Background()

	report, err := s.Init(ctx, testCards())
	require.NoError(t, err)
	assert.False(t, report.Found)
	assert.True(t, report.Dirty)
	assert.Equal(t, 3, report.Cards)
	assert.Empty(t, report.Warnings)
	assert.NoError(t, report.Err())

	assert.Equal(t, 1, backend.Writes(), "defaults are persisted")
	assert.False(t, s.Dirty())

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	for _, c := range testCards() {
		assert.Equal(t, DefaultRecord(), snap[c.ID])
	}
	assert.Equal(t, []int{1, 2, 3}, catalog.IDs(s.DueCards()))
}

func TestInit_CleanSnapshotDoesNotWrite(t *testing.T) {
	s, backend, _ := newTestStore(t)
	backend.Put(DefaultKey, []byte(`{"1":{"box":2,"lastReviewed":10},"2":{"box":1,"lastReviewed":0},"3":{"box":1,"lastReviewed":0}}`))

	report, err := s.Init(context.Background(), testCards())
	require.NoError(t, err)
	assert.True(t, report.Found)
	assert.False(t, report.Dirty)
	assert.Equal(t, 0, backend.Writes())

	rec, ok := s.Record(1)
	require.True(t, ok)
	assert.Equal(t, Record{Box: 2, LastReviewed: 10}, rec)
}

func TestInit_MalformedSnapshotIsAWarning(t *testing.T) {
	s, backend, _ := newTestStore(t)
	backend.Put(DefaultKey, []byte(`not json`))

	report, err := s.Init(context.Background(), testCards())
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, ErrCodeSnapshotRead, CodeOf(report.Warnings[0]))

	assert.Len(t, s.DueCards(), 3)
	raw, _ := backend.Get(DefaultKey)
	assert.JSONEq(t, `{"1":{"box":1,"lastReviewed":0},"2":{"box":1,"lastReviewed":0},"3":{"box":1,"lastReviewed":0}}`, string(raw))
}

func TestInit_ReadFailureIsAWarning(t *testing.T) {
	s, backend, _ := newTestStore(t)
	backend.FailReads(errors.New("permission denied"))

	report, err := s.Init(context.Background(), testCards())
	require.NoError(t, err)
	require.NotEmpty(t, report.Warnings)
	assert.Equal(t, ErrCodeSnapshotRead, CodeOf(report.Warnings[0]))
	assert.Len(t, s.DueCards(), 3)
}

func TestInit_ReadFailureDoesNotClobber(t *testing.T) {
	s, backend, _ := newTestStore(t)
	ctx := context.Background()
	saved := `{"1":{"box":4,"lastReviewed":10},"2":{"box":1,"lastReviewed":0},"3":{"box":1,"lastReviewed":0}}`
	backend.Put(DefaultKey, []byte(saved))
	backend.FailReads(errors.New("database is locked"))

	report, err := s.Init(ctx, testCards())
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, ErrCodeSnapshotRead, CodeOf(report.Warnings[0]))
	assert.True(t, report.Dirty)
	assert.True(t, s.Dirty())
	assert.Equal(t, 0, backend.Writes())

	require.NoError(t, s.Close(ctx))
	assert.Equal(t, 0, backend.Writes(), "close must not write defaults over saved progress")
	raw, _ := backend.Get(DefaultKey)
	assert.JSONEq(t, saved, string(raw))
}

func TestInit_ReadFailureThenFeedbackPersists(t *testing.T) {
	s, backend, _ := newTestStore(t)
	ctx := context.Background()
	backend.FailReads(errors.New("database is locked"))

	_, err := s.Init(ctx, testCards())
	require.NoError(t, err)
	assert.Equal(t, 0, backend.Writes())

	_, err = s.Feedback(ctx, 2, true)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.Writes())
	assert.False(t, s.Dirty())
}

func TestInit_InvalidCatalogIsFatal(t *testing.T) {
	s, backend, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Init(ctx, nil)
	require.Error(t, err)
	assert.True(t, IsCatalogError(err))
	assert.Equal(t, 0, backend.Writes())

	_, err = s.Feedback(ctx, 1, true)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, s.ResetAll(ctx), ErrNotReady)
	assert.Empty(t, s.DueCards())
}

func TestFeedback_EndToEnd(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()
	_, err := s.Init(ctx, testCards())
	require.NoError(t, err)

	rec, err := s.Feedback(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Box)

	clock.AdvanceDays(3)
	rec, err = s.Feedback(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Box)

	last := clock.Advance(5 * time.Minute)
	rec, err = s.Feedback(ctx, 1, false)
	require.NoError(t, err)
	assert.Equal(t, Record{Box: 1, LastReviewed: last.UnixMilli()}, rec)

	stored, _ := s.Record(1)
	assert.Equal(t, rec, stored)
}

func TestFeedback_ReviewedCardLeavesDueListUntilInterval(t *testing.T) {
	s, _, clock := newTestStore(t)
	ctx := context.Background()
	_, err := s.Init(ctx, testCards())
	require.NoError(t, err)

	_, err = s.Feedback(ctx, 2, true)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, catalog.IDs(s.DueCards()))

	clock.AdvanceDays(2)
	assert.Equal(t, []int{1, 3}, catalog.IDs(s.DueCards()))

	clock.AdvanceDays(1)
	assert.Equal(t, []int{1, 2, 3}, catalog.IDs(s.DueCards()))
}

func TestFeedback_GraduationAndRelapse(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.Init(ctx, testCards())
	require.NoError(t, err)

	var rec Record
	for i := 0; i < 7; i++ {
		rec, err = s.Feedback(ctx, 3, true)
		require.NoError(t, err)
	}
	assert.Equal(t, GraduatedBox, rec.Box)
	assert.Equal(t, 1, s.Summary().Mastered)

	rec, err = s.Feedback(ctx, 3, false)
	require.NoError(t, err)
	assert.Equal(t, MinBox, rec.Box)
}

func TestFeedback_InvalidArguments(t *testing.T) {
	s, backend, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.Init(ctx, testCards())
	require.NoError(t, err)
	before := s.Snapshot()
	writes := backend.Writes()

	for _, id := range []int{0, -1, 99} {
		_, err := s.Feedback(ctx, id, true)
		require.Error(t, err, "card %d", id)
		assert.True(t, IsInvalidArgument(err))
	}

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, writes, backend.Writes())
}

func TestFeedback_WriteFailureKeepsMemory(t *testing.T) {
	s, backend, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.Init(ctx, testCards())
	require.NoError(t, err)

	backend.FailWrites(errors.New("quota exceeded"))
	rec, err := s.Feedback(ctx, 1, true)
	require.Error(t, err)
	assert.Equal(t, ErrCodePersistWrite, CodeOf(err))
	assert.True(t, IsRecoverable(err))
	assert.Equal(t, 2, rec.Box)

	stored, _ := s.Record(1)
	assert.Equal(t, 2, stored.Box, "memory stays authoritative")
	assert.True(t, s.Dirty())

	backend.FailWrites(nil)
	require.NoError(t, s.Flush(ctx))
	assert.False(t, s.Dirty())

	raw, _ := backend.Get(DefaultKey)
	assert.Contains(t, string(raw), `"1":{"box":2`)
}

func TestResetAll(t *testing.T) {
	s, backend, _ := newTestStore(t)
	backend.Put(DefaultKey, []byte(`{"1":{"box":4,"lastReviewed":10},"2":{"box":6,"lastReviewed":10},"3":{"box":1,"lastReviewed":0},"9":{"box":2,"lastReviewed":3}}`))
	ctx := context.Background()
	_, err := s.Init(ctx, testCards())
	require.NoError(t, err)
	require.Contains(t, s.Snapshot(), 9)

	require.NoError(t, s.ResetAll(ctx))

	snap := s.Snapshot()
	assert.Len(t, snap, 3)
	for _, rec := range snap {
		assert.Equal(t, DefaultRecord(), rec)
	}
	assert.Len(t, s.DueCards(), 3)
}

func TestClose(t *testing.T) {
	s, backend, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.Init(ctx, testCards())
	require.NoError(t, err)

	backend.FailWrites(errors.New("offline"))
	_, _ = s.Feedback(ctx, 1, true)
	backend.FailWrites(nil)

	require.NoError(t, s.Close(ctx), "close flushes pending changes")
	raw, _ := backend.Get(DefaultKey)
	assert.Contains(t, string(raw), `"1":{"box":2`)

	require.NoError(t, s.Close(ctx), "second close is a no-op")

	_, err = s.Feedback(ctx, 1, true)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Init(ctx, testCards())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Flush(ctx), ErrClosed)
}

func TestStore_SQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.db")
	ctx := context.Background()
	clock := testutil.NewManualClock(t0)

	db, err := store.Open(path)
	require.NoError(t, err)
	s := New(db, WithClock(clock))
	_, err = s.Init(ctx, testCards())
	require.NoError(t, err)
	_, err = s.Feedback(ctx, 2, true)
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))
	require.NoError(t, db.Close())

	db, err = store.Open(path)
	require.NoError(t, err)
	defer db.Close()

	s = New(db, WithClock(clock))
	report, err := s.Init(ctx, testCards())
	require.NoError(t, err)
	assert.True(t, report.Found)
	assert.False(t, report.Dirty)

	rec, ok := s.Record(2)
	require.True(t, ok)
	assert.Equal(t, Record{Box: 2, LastReviewed: t0.UnixMilli()}, rec)
}

func TestWithKey(t *testing.T) {
	backend := store.NewMemory()
	s := New(backend, WithKey("deck-a"), WithClock(testutil.NewManualClock(t0)))

	_, err := s.Init(context.Background(), testCards())
	require.NoError(t, err)

	_, ok := backend.Get("deck-a")
	assert.True(t, ok)
	_, ok = backend.Get(DefaultKey)
	assert.False(t, ok)
}
