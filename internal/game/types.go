// internal/game/types.go
//
// Core type definitions for a word-search game.
// Defines:
//   - EventKind / Event: observable side effects of game actions.
//   - Session: the state of one puzzle, replaced wholesale on new game.
//   - View / WordView: read-only display snapshot for renderers.

package game

import (
	"math/rand"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/robalobadob/wordsearch/internal/puzzle"
)

const (
	// HintDuration is how long a hint stays revealed.
	HintDuration = 3 * time.Second
	// RevealDelay separates the last found word from the Solved transition.
	RevealDelay = 500 * time.Millisecond
)

// EventKind names a game event.
type EventKind string

const (
	EventSessionStarted   EventKind = "session_started"
	EventSelectionChanged EventKind = "selection_changed"
	EventWordFound        EventKind = "word_found"
	EventHintShown        EventKind = "hint_shown"
	EventHintCleared      EventKind = "hint_cleared"
	EventAutoSolved       EventKind = "auto_solved"
	EventSolved           EventKind = "solved"
)

// Event is delivered to subscribers after the state change it describes.
// Seq increases by one per event of a Game, in delivery order.
type Event struct {
	Seq        uint64        `json:"seq"`
	Kind       EventKind     `json:"kind"`
	GameID     string        `json:"gameId"`
	SessionID  string        `json:"sessionId"`
	Word       string        `json:"word,omitempty"`
	Cell       *puzzle.Cell  `json:"cell,omitempty"`
	Found      int           `json:"found"`
	Total      int           `json:"total"`
	Elapsed    time.Duration `json:"-"`
	ElapsedMs  int64         `json:"elapsedMs,omitempty"`
	AutoSolved bool          `json:"autoSolved,omitempty"`
	HintsUsed  int           `json:"hintsUsed,omitempty"`
	Daily      string        `json:"daily,omitempty"`
}

// Session is one puzzle: its grid, its winnable words and the player's
// progress. A new game replaces the whole Session.
type Session struct {
	ID           string
	Grid         *puzzle.Grid
	Entries      []puzzle.WordEntry
	Words        []string // winnable set, in placement order
	Dropped      []string // words the placer could not fit
	Daily        string   // date key for the daily puzzle, empty otherwise
	FromFallback bool
	StartedAt    time.Time
	HintsUsed    int

	rng        *rand.Rand
	found      mapset.Set[string]
	foundCells mapset.Set[puzzle.Cell]

	selecting bool
	start     puzzle.Cell
	selected  []puzzle.Cell

	hint      *hintState
	hintSeq   int
	hintTimer Timer

	revealPending bool
	revealTimer   Timer
	solved        bool
	autoSolved    bool
	solvedAt      time.Time
}

type hintState struct {
	word string
	cell puzzle.Cell
	seq  int
}

// WordView is one line of the word list.
type WordView struct {
	Word   string `json:"word"`
	Found  bool   `json:"found"`
	Hinted bool   `json:"hinted"`
}

// View is a read-only snapshot of a game for renderers.
type View struct {
	GameID     string        `json:"gameId"`
	SessionID  string        `json:"sessionId"`
	Size       int           `json:"size"`
	Rows       []string      `json:"rows"`
	Selected   []puzzle.Cell `json:"selected"`
	Found      []puzzle.Cell `json:"found"`
	Hinted     []puzzle.Cell `json:"hinted"`
	Words      []WordView    `json:"words"`
	FoundCount int           `json:"foundCount"`
	Total      int           `json:"total"`
	Selecting  bool          `json:"selecting"`
	Solved     bool          `json:"solved"`
	AutoSolved bool          `json:"autoSolved"`
	HintsUsed  int           `json:"hintsUsed"`
	Daily      string        `json:"daily,omitempty"`
	Elapsed    time.Duration `json:"-"`
	ElapsedMs  int64         `json:"elapsedMs"`
}
