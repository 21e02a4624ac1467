package tui

import (
	"fmt"
	"time"

	"github.com/robalobadob/wordsearch/internal/puzzle"
)

const (
	gridX     = 2 // left margin
	gridY     = 2 // title + blank line
	cellWidth = 2 // letter + gap
	listGap   = 4
)

// cellAt maps a screen position to a grid cell.
func cellAt(x, y, size int) (puzzle.Cell, bool) {
	if x < gridX || y < gridY {
		return puzzle.Cell{}, false
	}
	c := puzzle.Cell{Row: y - gridY, Col: (x - gridX) / cellWidth}
	if c.Row >= size || c.Col >= size {
		return puzzle.Cell{}, false
	}
	return c, true
}

// screenPos is the inverse of cellAt: where c's letter is drawn.
func screenPos(c puzzle.Cell) (int, int) {
	return gridX + c.Col*cellWidth, gridY + c.Row
}

func listX(size int) int {
	return gridX + size*cellWidth + listGap
}

// formatElapsed renders d as mm:ss.
func formatElapsed(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
