package scores

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordsearch/assets"
	"github.com/robalobadob/wordsearch/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "scores.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db, assets.Migrations()))

	st := NewStore(db)
	st.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return st
}

func TestBestWithoutScore(t *testing.T) {
	_, err := newTestStore(t).Best(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNoScore)
}

func TestRecordKeepsFastest(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	improved, err := st.Record(ctx, Result{PlayerID: "p1", ElapsedMs: 90_000, HintsUsed: 2, Words: 8})
	require.NoError(t, err)
	assert.True(t, improved)

	improved, err = st.Record(ctx, Result{PlayerID: "p1", ElapsedMs: 120_000, Words: 8})
	require.NoError(t, err)
	assert.False(t, improved)

	improved, err = st.Record(ctx, Result{PlayerID: "p1", ElapsedMs: 60_000, HintsUsed: 1, Words: 7, Daily: "2026-03-01"})
	require.NoError(t, err)
	assert.True(t, improved)

	best, err := st.Best(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(60_000), best.ElapsedMs)
	assert.Equal(t, 1, best.HintsUsed)
	assert.Equal(t, 7, best.Words)
	assert.Equal(t, "2026-03-01", best.Daily)
	assert.Equal(t, 3, best.Solves)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), best.AchievedAt)
}

func TestRecordTieBreaksOnHints(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Record(ctx, Result{PlayerID: "p", ElapsedMs: 5000, HintsUsed: 3})
	require.NoError(t, err)
	improved, err := st.Record(ctx, Result{PlayerID: "p", ElapsedMs: 5000, HintsUsed: 1})
	require.NoError(t, err)
	assert.True(t, improved)

	improved, err = st.Record(ctx, Result{PlayerID: "p", ElapsedMs: 5000, HintsUsed: 1})
	require.NoError(t, err)
	assert.False(t, improved)
}

func TestRecordRejectsEmptyPlayer(t *testing.T) {
	_, err := newTestStore(t).Record(context.Background(), Result{ElapsedMs: 1})
	assert.Error(t, err)
}

func TestClaimMovesGuestScore(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Record(ctx, Result{PlayerID: "anon", ElapsedMs: 40_000})
	require.NoError(t, err)
	require.NoError(t, st.Claim(ctx, "anon", "user"))

	best, err := st.Best(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, int64(40_000), best.ElapsedMs)
	assert.Equal(t, 1, best.Solves)

	_, err = st.Best(ctx, "anon")
	assert.ErrorIs(t, err, ErrNoScore)
}

func TestClaimKeepsBetterOfBoth(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Record(ctx, Result{PlayerID: "user", ElapsedMs: 30_000})
	require.NoError(t, err)
	_, err = st.Record(ctx, Result{PlayerID: "anon", ElapsedMs: 45_000})
	require.NoError(t, err)
	_, err = st.Record(ctx, Result{PlayerID: "anon", ElapsedMs: 50_000})
	require.NoError(t, err)

	require.NoError(t, st.Claim(ctx, "anon", "user"))
	best, err := st.Best(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, int64(30_000), best.ElapsedMs)
	assert.Equal(t, 3, best.Solves)

	_, err = st.Record(ctx, Result{PlayerID: "anon2", ElapsedMs: 10_000, HintsUsed: 1})
	require.NoError(t, err)
	require.NoError(t, st.Claim(ctx, "anon2", "user"))
	best, err = st.Best(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), best.ElapsedMs)
	assert.Equal(t, 1, best.HintsUsed)
	assert.Equal(t, 4, best.Solves)
}

func TestClaimWithoutGuestScoreIsNoop(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	require.NoError(t, st.Claim(ctx, "anon", "user"))
	require.NoError(t, st.Claim(ctx, "", "user"))
	_, err := st.Best(ctx, "user")
	assert.ErrorIs(t, err, ErrNoScore)
}
