package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordsearch/internal/game"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	g := game.New(nil)

	require.NoError(t, st.Save(ctx, g))
	got, err := st.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Same(t, g, got)
	assert.Equal(t, 1, st.Len())

	require.NoError(t, st.Delete(ctx, g.ID))
	_, err = st.Get(ctx, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, st.Len())
}

func TestMemoryStoreRejectsNil(t *testing.T) {
	assert.Error(t, NewMemoryStore().Save(context.Background(), nil))
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	var wg sync.WaitGroup
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g := game.New(nil)
			_ = st.Save(ctx, g)
			ids <- g.ID
		}()
	}
	wg.Wait()
	close(ids)

	for id := range ids {
		_, err := st.Get(ctx, id)
		assert.NoError(t, err)
	}
	assert.Equal(t, 50, st.Len())
}

func TestMemoryStoreIdleTracksLastAccess(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	st := NewMemoryStore(WithNow(func() time.Time { return now }))

	old, fresh := game.New(nil), game.New(nil)
	require.NoError(t, st.Save(ctx, old))
	now = now.Add(time.Hour)
	require.NoError(t, st.Save(ctx, fresh))

	ids, err := st.Idle(ctx, now.Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{old.ID}, ids)

	// A fetch counts as activity.
	_, err = st.Get(ctx, old.ID)
	require.NoError(t, err)
	ids, err = st.Idle(ctx, now.Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = st.Idle(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{old.ID, fresh.ID}, ids)
}
