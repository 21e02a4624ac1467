// internal/store/memory.go
//
// In-memory registry of live word-search games.
//
// Characteristics:
//   - Stores *game.Game objects keyed by Game.ID.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Save and Get stamp the game as seen; Idle lists games not seen since
//     a cutoff so the server can evict them.
//   - State is lost when the process restarts; only best scores are durable.

package store

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robalobadob/wordsearch/internal/game"
)

// ErrNotFound is returned by Get for an unknown game ID.
var ErrNotFound = errors.New("store: game not found")

// Store holds the live games served by the API.
type Store interface {
	// Save adds or replaces a game.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a game by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Delete forgets a game. Unknown IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Idle lists the IDs of games last saved or fetched before cutoff.
	Idle(ctx context.Context, cutoff time.Time) ([]string, error)

	// Len reports how many games are held.
	Len() int
}

type entry struct {
	game *game.Game
	seen atomic.Int64 // unix nanoseconds
}

type memory struct {
	mu    sync.RWMutex
	games map[string]*entry
	now   func() time.Time
}

// Option configures a memory store.
type Option func(*memory)

// WithNow replaces the clock used to stamp access times.
func WithNow(now func() time.Time) Option { return func(m *memory) { m.now = now } }

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore(opts ...Option) Store {
	m := &memory{games: make(map[string]*entry), now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *memory) Save(ctx context.Context, g *game.Game) error {
	if g == nil {
		return errors.New("store: nil game")
	}
	e := &entry{game: g}
	e.seen.Store(m.now().UnixNano())
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = e
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.games[id]; ok {
		e.seen.Store(m.now().UnixNano())
		return e.game, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

func (m *memory) Idle(ctx context.Context, cutoff time.Time) ([]string, error) {
	limit := cutoff.UnixNano()
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, e := range m.games {
		if e.seen.Load() < limit {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
