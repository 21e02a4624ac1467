// Package tui is a terminal client for the word-search game.
//
// Drawing is a pure function of game.View. Mouse drags map to the
// SelectionStart/Move/End operations; keys drive new game, hint, solve,
// daily puzzle, mute and quit.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/internal/daily"
	"github.com/robalobadob/wordsearch/internal/game"
	"github.com/robalobadob/wordsearch/internal/puzzle"
	"github.com/robalobadob/wordsearch/internal/sound"
	"github.com/robalobadob/wordsearch/internal/words"
)

const helpLine = "[n]ew  [d]aily  [h]int  [s]olve  [m]ute  [q]uit"

var (
	styleDefault  = tcell.StyleDefault
	styleTitle    = tcell.StyleDefault.Bold(true)
	styleSelected = tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
	styleFound    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleHinted   = tcell.StyleDefault.Background(tcell.ColorFuchsia).Foreground(tcell.ColorWhite).Bold(true)
	styleDone     = tcell.StyleDefault.Foreground(tcell.ColorGreen).StrikeThrough(true)
	styleBanner   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen).Bold(true)
)

// App owns the screen and drives one Game.
type App struct {
	screen    tcell.Screen
	game      *game.Game
	sound     *sound.Player
	dailySalt string
	now       func() time.Time

	redraw chan struct{}

	mu     sync.Mutex
	status string

	dragging bool
	last     puzzle.Cell
}

// New wires an App to g. player may be silent but not nil.
func New(screen tcell.Screen, g *game.Game, player *sound.Player, dailySalt string) *App {
	a := &App{
		screen:    screen,
		game:      g,
		sound:     player,
		dailySalt: dailySalt,
		now:       time.Now,
		redraw:    make(chan struct{}, 1),
	}
	g.Subscribe(player.OnEvent)
	g.Subscribe(func(game.Event) { a.requestRedraw() })
	return a
}

func (a *App) setStatus(msg string) {
	a.mu.Lock()
	a.status = msg
	a.mu.Unlock()
}

// Status is the message line under the grid.
func (a *App) Status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *App) requestRedraw() {
	select {
	case a.redraw <- struct{}{}:
	default:
	}
}

// Run starts a first game in the background and processes input until
// quit or ctx ends. The screen must already be initialised; Run does not
// Fini it.
func (a *App) Run(ctx context.Context) error {
	a.screen.EnableMouse()
	go a.newGame(ctx)

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		a.Draw()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !a.handle(ctx, ev) {
				return nil
			}
		case <-a.redraw:
		case <-ticker.C:
		}
	}
}

func (a *App) handle(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.HandleKey(ctx, ev.Key(), ev.Rune())
	case *tcell.EventMouse:
		x, y := ev.Position()
		a.HandleMouse(x, y, ev.Buttons())
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

// HandleKey applies a key press; it returns false when the user quits.
func (a *App) HandleKey(ctx context.Context, key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	switch r {
	case 'q', 'Q':
		return false
	case 'n', 'N':
		a.sound.Play(sound.CueClick)
		go a.newGame(ctx)
	case 'd', 'D':
		a.sound.Play(sound.CueClick)
		a.dailyGame()
	case 'h', 'H':
		word, err := a.game.Hint()
		if err == nil && word != "" {
			a.setStatus(fmt.Sprintf("Hint: look for %s", word))
		}
	case 's', 'S':
		a.sound.Play(sound.CueClick)
		if err := a.game.AutoSolve(); err == nil {
			a.setStatus("Solved for you")
		}
	case 'm', 'M':
		if a.sound.Toggle() {
			a.setStatus("Sound on")
		} else {
			a.setStatus("Sound off")
		}
	}
	a.requestRedraw()
	return true
}

// HandleMouse turns press, drag and release into a selection gesture.
func (a *App) HandleMouse(x, y int, buttons tcell.ButtonMask) {
	v, err := a.game.View()
	if err != nil {
		return
	}
	pressed := buttons&tcell.Button1 != 0

	switch {
	case pressed && !a.dragging:
		c, ok := cellAt(x, y, v.Size)
		if !ok {
			return
		}
		a.dragging = true
		a.last = c
		_ = a.game.SelectionStart(c)
	case pressed && a.dragging:
		c, ok := cellAt(x, y, v.Size)
		if !ok || c == a.last {
			return
		}
		a.last = c
		_ = a.game.SelectionMove(c)
	case !pressed && a.dragging:
		a.dragging = false
		word, err := a.game.SelectionEnd()
		if err == nil && word != "" {
			a.setStatus(fmt.Sprintf("Found %s!", word))
		}
	}
}

func (a *App) newGame(ctx context.Context) {
	a.setStatus("Loading words...")
	a.requestRedraw()
	s, err := a.game.NewGame(ctx)
	switch {
	case errors.Is(err, game.ErrSuperseded):
		return
	case err != nil:
		log.Error().Err(err).Msg("new game")
		a.setStatus("Could not start a game")
	case s.FromFallback:
		a.setStatus("Offline words")
	default:
		a.setStatus("")
	}
	a.requestRedraw()
}

func (a *App) dailyGame() {
	now := a.now()
	if _, err := a.game.NewSeededGame(daily.Seed(now, a.dailySalt), words.Fallback(), daily.DateKey(now)); err != nil {
		log.Error().Err(err).Msg("daily game")
		return
	}
	a.setStatus("Daily puzzle " + daily.DateKey(now))
}

// Draw renders the current view.
func (a *App) Draw() {
	a.screen.Clear()
	v, err := a.game.View()
	if err != nil {
		a.text(gridX, 0, styleTitle, "WORD SEARCH")
		a.text(gridX, gridY, styleDefault, a.Status())
		a.screen.Show()
		return
	}

	title := "WORD SEARCH"
	if v.Daily != "" {
		title += "  daily " + v.Daily
	}
	a.text(gridX, 0, styleTitle, title)

	for r, row := range v.Rows {
		for c := range row {
			cell := puzzle.Cell{Row: r, Col: c}
			x, y := screenPos(cell)
			a.screen.SetContent(x, y, rune(row[c]), nil, cellStyle(v, cell))
		}
	}

	lx := listX(v.Size)
	a.text(lx, gridY-1, styleTitle, fmt.Sprintf("Words %d/%d", v.FoundCount, v.Total))
	for i, w := range v.Words {
		st := styleDefault
		switch {
		case w.Found:
			st = styleDone
		case w.Hinted:
			st = styleHinted
		}
		a.text(lx, gridY+i, st, w.Word)
	}

	info := fmt.Sprintf("Time %s  Hints %d", formatElapsed(v.Elapsed), v.HintsUsed)
	a.text(lx, gridY+len(v.Words)+1, styleDefault, info)

	bottom := gridY + v.Size + 1
	if v.Solved {
		msg := fmt.Sprintf(" Congratulations! Solved in %s ", formatElapsed(v.Elapsed))
		if v.AutoSolved {
			msg = " Puzzle solved automatically "
		}
		a.text(gridX, bottom, styleBanner, msg)
	} else if msg := a.Status(); msg != "" {
		a.text(gridX, bottom, styleDefault, msg)
	}
	a.text(gridX, bottom+1, styleDefault, helpLine)
	a.screen.Show()
}

func cellStyle(v game.View, c puzzle.Cell) tcell.Style {
	switch {
	case v.IsSelected(c):
		return styleSelected
	case v.IsHinted(c):
		return styleHinted
	case v.IsFound(c):
		return styleFound
	}
	return styleDefault
}

func (a *App) text(x, y int, st tcell.Style, s string) {
	for i, r := range s {
		a.screen.SetContent(x+i, y, r, nil, st)
	}
}
