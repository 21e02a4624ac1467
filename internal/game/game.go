// internal/game/game.go
//
// Orchestrator for a word-search game.
// Responsibilities:
//   - Start sessions: pick words, generate the grid, replace the old session.
//   - Drive the selection state machine: Idle → Selecting → Idle.
//   - Match finished selections, track found words, reveal Solved once.
//   - Hints (timed reveal of a first letter) and auto-solve.
//   - Publish events and display snapshots.
//
// Notes:
//   - One mutex serializes every operation; timer callbacks and HTTP
//     handlers run on their own goroutines.
//   - The word fetch runs outside the lock. A generation counter makes a
//     slow fetch lose to any newer NewGame call.
//   - Timer callbacks check that their session is still current.
//   - Events are numbered under the lock and delivered outside it by a
//     single drainer, so listeners see them in state-change order.
package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/zyedidia/generic/mapset"

	"github.com/robalobadob/wordsearch/internal/puzzle"
	"github.com/robalobadob/wordsearch/internal/words"
)

var (
	// ErrNoSession is returned by operations that need a running session.
	ErrNoSession = errors.New("game: no session")
	// ErrSuperseded is returned by NewGame when a newer NewGame call won.
	ErrSuperseded = errors.New("game: superseded by a newer game")
)

// WordPicker chooses the words for a new session.
type WordPicker interface {
	Pick(ctx context.Context, rng words.Shuffler) ([]string, bool)
}

// Game owns the current Session of one player.
type Game struct {
	ID string

	mu        sync.Mutex
	picker    WordPicker
	clock     Clock
	size      int
	newRand   func() *mrand.Rand
	gen       uint64
	session   *Session
	listeners map[int]func(Event)
	nextSub   int

	seq      uint64
	pending  []Event
	draining bool
}

// Option configures a Game.
type Option func(*Game)

// WithClock replaces the wall clock (tests use a manual clock).
func WithClock(c Clock) Option { return func(g *Game) { g.clock = c } }

// WithSize sets the grid side length.
func WithSize(n int) Option {
	return func(g *Game) {
		if n > 0 {
			g.size = n
		}
	}
}

// WithRand sets the factory for per-session random sources.
func WithRand(f func() *mrand.Rand) Option { return func(g *Game) { g.newRand = f } }

// New constructs a Game without a session; call NewGame to start one.
func New(picker WordPicker, opts ...Option) *Game {
	g := &Game{
		ID:        randomID(),
		picker:    picker,
		clock:     SystemClock,
		size:      puzzle.DefaultSize,
		listeners: make(map[int]func(Event)),
		newRand: func() *mrand.Rand {
			return mrand.New(mrand.NewSource(time.Now().UnixNano()))
		},
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Subscribe registers fn for every future event and returns a function
// that removes it. fn must be safe to call from any goroutine.
func (g *Game) Subscribe(fn func(Event)) (unsubscribe func()) {
	g.mu.Lock()
	id := g.nextSub
	g.nextSub++
	g.listeners[id] = fn
	g.mu.Unlock()
	return func() {
		g.mu.Lock()
		delete(g.listeners, id)
		g.mu.Unlock()
	}
}

// NewGame picks words, builds a fresh puzzle and replaces the current
// session. If another NewGame (or Load) started while the words were being
// fetched, the result is discarded and ErrSuperseded returned.
func (g *Game) NewGame(ctx context.Context) (*Session, error) {
	g.mu.Lock()
	g.gen++
	token := g.gen
	g.mu.Unlock()

	rng := g.newRand()
	list, fromFallback := g.picker.Pick(ctx, rng)
	if fromFallback {
		log.Info().Str("gameId", g.ID).Msg("using fallback word list")
	}
	return g.build(token, list, rng, fromFallback, "")
}

// NewSeededGame builds a reproducible puzzle from pool using seed. label
// tags the session (the daily date key).
func (g *Game) NewSeededGame(seed int64, pool []string, label string) (*Session, error) {
	g.mu.Lock()
	g.gen++
	token := g.gen
	g.mu.Unlock()

	rng := mrand.New(mrand.NewSource(seed))
	list := words.Sample(words.Clean(pool), words.DefaultCount, rng)
	return g.build(token, list, rng, false, label)
}

// Load installs a prebuilt puzzle as the current session.
func (g *Game) Load(grid *puzzle.Grid, entries []puzzle.WordEntry) *Session {
	g.mu.Lock()
	g.gen++
	s := g.newSession(grid, entries, nil, g.newRand())
	g.queue(g.install(s)...)
	g.mu.Unlock()

	g.flush()
	return s
}

func (g *Game) build(token uint64, list []string, rng *mrand.Rand, fromFallback bool, label string) (*Session, error) {
	grid, entries, dropped := puzzle.Generate(list, g.size, rng)
	if len(dropped) > 0 {
		log.Debug().Strs("dropped", dropped).Str("gameId", g.ID).Msg("words left out of puzzle")
	}

	g.mu.Lock()
	if token != g.gen {
		g.mu.Unlock()
		log.Debug().Str("gameId", g.ID).Msg("discarding stale puzzle")
		return nil, ErrSuperseded
	}
	s := g.newSession(grid, entries, dropped, rng)
	s.FromFallback = fromFallback
	s.Daily = label
	g.queue(g.install(s)...)
	g.mu.Unlock()

	g.flush()
	return s, nil
}

// newSession keeps the first entry of each word so the winnable set has no
// repeats. Caller holds g.mu.
func (g *Game) newSession(grid *puzzle.Grid, entries []puzzle.WordEntry, dropped []string, rng *mrand.Rand) *Session {
	entries = lo.UniqBy(entries, func(e puzzle.WordEntry) string { return e.Word })
	if len(entries) == 0 {
		log.Warn().Str("gameId", g.ID).Strs("dropped", dropped).Msg("puzzle has no words and cannot be solved")
	}
	return &Session{
		ID:         randomID(),
		Grid:       grid,
		Entries:    entries,
		Words:      lo.Map(entries, func(e puzzle.WordEntry, _ int) string { return e.Word }),
		Dropped:    dropped,
		StartedAt:  g.clock.Now(),
		rng:        rng,
		found:      mapset.New[string](),
		foundCells: mapset.New[puzzle.Cell](),
	}
}

// install replaces the session. Caller holds g.mu.
func (g *Game) install(s *Session) []Event {
	if old := g.session; old != nil {
		stopTimer(old.hintTimer)
		stopTimer(old.revealTimer)
	}
	g.session = s
	return []Event{g.event(s, EventSessionStarted)}
}

// SelectionStart begins a drag at cell.
func (g *Game) SelectionStart(cell puzzle.Cell) error {
	return g.update(func(s *Session) []Event {
		s.selecting = true
		s.start = cell
		s.selected, _ = puzzle.ResolveLine(cell, cell, s.Grid.Size)
		return []Event{g.event(s, EventSelectionChanged)}
	})
}

// SelectionMove recomputes the selected line from the drag start to cell.
// A crooked gesture leaves only the start cell selected.
func (g *Game) SelectionMove(cell puzzle.Cell) error {
	return g.update(func(s *Session) []Event {
		if !s.selecting {
			return nil
		}
		cells, ok := puzzle.ResolveLine(s.start, cell, s.Grid.Size)
		if !ok {
			cells, _ = puzzle.ResolveLine(s.start, s.start, s.Grid.Size)
		}
		s.selected = cells
		return []Event{g.event(s, EventSelectionChanged)}
	})
}

// SelectionEnd finishes the drag, returning the word it found (if any).
// The transient selection is always cleared.
func (g *Game) SelectionEnd() (string, error) {
	var word string
	err := g.update(func(s *Session) []Event {
		if !s.selecting {
			return nil
		}
		cells := s.selected
		s.selecting = false
		s.selected = nil
		events := []Event{g.event(s, EventSelectionChanged)}

		if len(cells) <= 1 {
			return events
		}
		entry, ok := puzzle.MatchWord(cells, s.Grid, s.Entries, s.found.Has)
		if !ok {
			return events
		}
		word = entry.Word
		return append(events, g.markFound(s, entry)...)
	})
	return word, err
}

// markFound records entry as found. Caller holds g.mu.
func (g *Game) markFound(s *Session, entry puzzle.WordEntry) []Event {
	s.found.Put(entry.Word)
	for _, p := range entry.Positions {
		s.foundCells.Put(p)
	}
	ev := g.event(s, EventWordFound)
	ev.Word = entry.Word
	events := []Event{ev}

	if s.hint != nil && s.hint.word == entry.Word {
		s.hint = nil
		stopTimer(s.hintTimer)
		events = append(events, g.event(s, EventHintCleared))
	}
	if s.found.Size() == len(s.Words) {
		g.scheduleReveal(s)
	}
	return events
}

// scheduleReveal arms the Solved transition once per session. Caller holds g.mu.
func (g *Game) scheduleReveal(s *Session) {
	if s.revealPending || s.solved {
		return
	}
	s.revealPending = true
	s.revealTimer = g.clock.AfterFunc(RevealDelay, func() { g.reveal(s) })
}

func (g *Game) reveal(s *Session) {
	g.mu.Lock()
	if g.session != s || s.solved {
		g.mu.Unlock()
		return
	}
	s.solved = true
	s.solvedAt = g.clock.Now()
	ev := g.event(s, EventSolved)
	ev.AutoSolved = s.autoSolved
	ev.HintsUsed = s.HintsUsed
	g.queue(ev)
	g.mu.Unlock()

	log.Info().Str("gameId", g.ID).Str("session", s.ID).Dur("elapsed", ev.Elapsed).Msg("puzzle solved")
	g.flush()
}

// Hint reveals the first letter of a random unfound word for HintDuration.
// It returns the hinted word, or "" when every word is already found.
func (g *Game) Hint() (string, error) {
	var word string
	err := g.update(func(s *Session) []Event {
		unfound := lo.Filter(s.Words, func(w string, _ int) bool { return !s.found.Has(w) })
		if len(unfound) == 0 {
			return nil
		}
		word = unfound[s.rng.Intn(len(unfound))]
		entry, ok := lo.Find(s.Entries, func(e puzzle.WordEntry) bool { return e.Word == word })
		if !ok {
			word = ""
			return nil
		}

		s.hintSeq++
		seq := s.hintSeq
		s.hint = &hintState{word: word, cell: entry.Positions[0], seq: seq}
		s.HintsUsed++
		stopTimer(s.hintTimer)
		s.hintTimer = g.clock.AfterFunc(HintDuration, func() { g.clearHint(s, seq) })

		ev := g.event(s, EventHintShown)
		ev.Word = word
		cell := entry.Positions[0]
		ev.Cell = &cell
		ev.HintsUsed = s.HintsUsed
		return []Event{ev}
	})
	return word, err
}

// clearHint removes hint seq unless a newer hint replaced it.
func (g *Game) clearHint(s *Session, seq int) {
	g.mu.Lock()
	if g.session != s || s.hint == nil || s.hint.seq != seq {
		g.mu.Unlock()
		return
	}
	s.hint = nil
	g.queue(g.event(s, EventHintCleared))
	g.mu.Unlock()

	g.flush()
}

// AutoSolve marks every word found and schedules the Solved transition.
func (g *Game) AutoSolve() error {
	return g.update(func(s *Session) []Event {
		if !s.solved && s.found.Size() < len(s.Words) {
			s.autoSolved = true
		}
		for _, e := range s.Entries {
			s.found.Put(e.Word)
			for _, p := range e.Positions {
				s.foundCells.Put(p)
			}
		}
		s.selecting = false
		s.selected = nil
		if s.hint != nil {
			s.hint = nil
			stopTimer(s.hintTimer)
		}
		g.scheduleReveal(s)
		return []Event{g.event(s, EventAutoSolved)}
	})
}

// Entries returns the current answer key.
func (g *Game) Entries() []puzzle.WordEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return nil
	}
	return append([]puzzle.WordEntry(nil), g.session.Entries...)
}

// update runs fn on the current session under the lock and delivers the
// events it returns once the lock is released.
func (g *Game) update(fn func(s *Session) []Event) error {
	g.mu.Lock()
	s := g.session
	if s == nil {
		g.mu.Unlock()
		return ErrNoSession
	}
	g.queue(fn(s)...)
	g.mu.Unlock()

	g.flush()
	return nil
}

// event builds an Event carrying the session's progress. Caller holds g.mu.
func (g *Game) event(s *Session, kind EventKind) Event {
	elapsed := g.elapsed(s)
	return Event{
		Kind:      kind,
		GameID:    g.ID,
		SessionID: s.ID,
		Found:     s.found.Size(),
		Total:     len(s.Words),
		Elapsed:   elapsed,
		ElapsedMs: elapsed.Milliseconds(),
		Daily:     s.Daily,
	}
}

func (g *Game) elapsed(s *Session) time.Duration {
	if s.solved {
		return s.solvedAt.Sub(s.StartedAt)
	}
	return g.clock.Now().Sub(s.StartedAt)
}

// queue stamps events with the next sequence numbers and appends them to
// the delivery queue. Caller holds g.mu.
func (g *Game) queue(events ...Event) {
	for _, ev := range events {
		g.seq++
		ev.Seq = g.seq
		g.pending = append(g.pending, ev)
	}
}

// flush delivers queued events in sequence order without holding g.mu.
// Only one goroutine drains at a time; a caller that finds a drain in
// progress leaves its events to that goroutine. Listeners may call back
// into the Game.
func (g *Game) flush() {
	g.mu.Lock()
	if g.draining {
		g.mu.Unlock()
		return
	}
	g.draining = true
	for len(g.pending) > 0 {
		batch := g.pending
		g.pending = nil
		listeners := lo.Values(g.listeners)
		g.mu.Unlock()

		for _, ev := range batch {
			for _, fn := range listeners {
				fn(ev)
			}
		}

		g.mu.Lock()
	}
	g.draining = false
	g.mu.Unlock()
}

func stopTimer(t Timer) {
	if t != nil {
		t.Stop()
	}
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
