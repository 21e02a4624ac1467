// internal/puzzle/types.go
//
// Core type definitions for the word-search engine.
// Defines:
//   - Cell: a (row, col) coordinate on the grid.
//   - Direction: one of the 8 compass unit steps a word may run along.
//   - Grid: the square letter matrix a puzzle is solved on.
//   - WordEntry: a placed word plus its ordered cell positions.

package puzzle

import "strings"

const (
	// DefaultSize is the side length of a standard puzzle grid.
	DefaultSize = 12

	// MinWordLen and MaxWordLen bound the words a puzzle accepts.
	MinWordLen = 3
	MaxWordLen = 10
)

// Cell identifies a single grid position.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Direction is a unit step (DRow, DCol) with each component in {-1, 0, 1}
// and never both zero.
type Direction struct {
	DRow int
	DCol int
}

// Directions lists the 4 axis directions followed by the 4 diagonals.
var Directions = [8]Direction{
	{0, 1}, {0, -1}, {1, 0}, {-1, 0},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// Grid is a Size×Size matrix of uppercase letters. A zero byte marks an
// empty cell and only exists while a grid is being generated.
type Grid struct {
	Size    int
	Letters [][]byte
}

// NewGrid returns an empty grid of the given size.
func NewGrid(size int) *Grid {
	letters := make([][]byte, size)
	for r := range letters {
		letters[r] = make([]byte, size)
	}
	return &Grid{Size: size, Letters: letters}
}

// InBounds reports whether c lies on the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.Size && c.Col >= 0 && c.Col < g.Size
}

// At returns the letter at c, or 0 if c is off the grid.
func (g *Grid) At(c Cell) byte {
	if !g.InBounds(c) {
		return 0
	}
	return g.Letters[c.Row][c.Col]
}

// Rows renders each grid row as a string.
func (g *Grid) Rows() []string {
	out := make([]string, g.Size)
	for r, row := range g.Letters {
		out[r] = string(row)
	}
	return out
}

// Read concatenates the letters found at cells, in order.
func (g *Grid) Read(cells []Cell) string {
	var b strings.Builder
	b.Grow(len(cells))
	for _, c := range cells {
		if l := g.At(c); l != 0 {
			b.WriteByte(l)
		}
	}
	return b.String()
}

// WordEntry is a word placed on the grid. len(Positions) == len(Word) and
// the positions advance by one constant Direction.
type WordEntry struct {
	Word      string `json:"word"`
	Positions []Cell `json:"positions"`
}
