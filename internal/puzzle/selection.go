// internal/puzzle/selection.go
//
// Selection resolution: turning a drag gesture into grid cells and
// checking those cells against the placed words.

package puzzle

// ResolveLine converts a gesture from start to end into the ordered cells
// it covers. The gesture must be horizontal, vertical or diagonal; any
// other shape returns (nil, false). Points that fall outside a size×size
// grid are dropped, so a drag that starts off the board yields a shorter
// line rather than an error.
func ResolveLine(start, end Cell, size int) ([]Cell, bool) {
	rowDiff := end.Row - start.Row
	colDiff := end.Col - start.Col
	if rowDiff != 0 && colDiff != 0 && abs(rowDiff) != abs(colDiff) {
		return nil, false
	}

	steps := max(abs(rowDiff), abs(colDiff))
	rowStep, colStep := 0, 0
	if steps > 0 {
		rowStep = rowDiff / steps
		colStep = colDiff / steps
	}

	cells := make([]Cell, 0, steps+1)
	for i := 0; i <= steps; i++ {
		c := Cell{Row: start.Row + i*rowStep, Col: start.Col + i*colStep}
		if c.Row >= 0 && c.Row < size && c.Col >= 0 && c.Col < size {
			cells = append(cells, c)
		}
	}
	return cells, true
}

// MatchWord reads the letters under cells and returns the first entry
// whose word equals them forward or reversed and is not already found.
// Selections shorter than two cells never match.
func MatchWord(cells []Cell, g *Grid, entries []WordEntry, found func(word string) bool) (WordEntry, bool) {
	if len(cells) < 2 {
		return WordEntry{}, false
	}
	selected := g.Read(cells)
	reversed := reverse(selected)

	for _, e := range entries {
		if e.Word != selected && e.Word != reversed {
			continue
		}
		if found != nil && found(e.Word) {
			continue
		}
		return e, true
	}
	return WordEntry{}, false
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
