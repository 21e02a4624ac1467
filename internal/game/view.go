package game

import (
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/robalobadob/wordsearch/internal/puzzle"
)

// View returns a snapshot of the current session for rendering.
func (g *Game) View() (View, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.session
	if s == nil {
		return View{}, ErrNoSession
	}

	v := View{
		GameID:     g.ID,
		SessionID:  s.ID,
		Size:       s.Grid.Size,
		Rows:       s.Grid.Rows(),
		Selected:   append([]puzzle.Cell{}, s.selected...),
		Found:      sortedCells(s.foundCells),
		Hinted:     []puzzle.Cell{},
		Words:      make([]WordView, 0, len(s.Words)),
		FoundCount: s.found.Size(),
		Total:      len(s.Words),
		Selecting:  s.selecting,
		Solved:     s.solved,
		AutoSolved: s.autoSolved,
		HintsUsed:  s.HintsUsed,
		Daily:      s.Daily,
		Elapsed:    g.elapsed(s),
	}
	v.ElapsedMs = v.Elapsed.Milliseconds()

	if s.hint != nil {
		v.Hinted = append(v.Hinted, s.hint.cell)
	}
	for _, w := range s.Words {
		v.Words = append(v.Words, WordView{
			Word:   w,
			Found:  s.found.Has(w),
			Hinted: s.hint != nil && s.hint.word == w,
		})
	}
	return v, nil
}

// sortedCells lists a cell set in row-major order.
func sortedCells(set mapset.Set[puzzle.Cell]) []puzzle.Cell {
	out := make([]puzzle.Cell, 0, set.Size())
	set.Each(func(c puzzle.Cell) { out = append(out, c) })
	slices.SortFunc(out, func(a, b puzzle.Cell) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
	return out
}

// IsSelected reports whether cell is part of the transient selection.
func (v View) IsSelected(c puzzle.Cell) bool { return slices.Contains(v.Selected, c) }

// IsFound reports whether cell belongs to a found word.
func (v View) IsFound(c puzzle.Cell) bool { return slices.Contains(v.Found, c) }

// IsHinted reports whether cell is the revealed hint letter.
func (v View) IsHinted(c puzzle.Cell) bool { return slices.Contains(v.Hinted, c) }
