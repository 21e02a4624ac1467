// internal/puzzle/placer.go
//
// Grid generation for a single puzzle.
// Responsibilities:
//   - Place each word at a random start cell and direction, allowing
//     crossings only where letters agree.
//   - Give up on a word after MaxPlacementAttempts and report it as dropped.
//   - Fill every remaining empty cell with a random letter A–Z.
//
// Randomness comes from an injected Rand so generation is reproducible
// under a fixed seed (tests, daily puzzle).

package puzzle

// MaxPlacementAttempts is the retry budget for placing one word.
const MaxPlacementAttempts = 100

// Rand is the random source used for placement and filler letters.
// *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Generate builds a size×size grid holding as many of words as fit.
// Words are expected uppercase A–Z. It returns the filled grid, the
// placement table in placement order, and the words that could not be
// placed within the retry budget.
func Generate(words []string, size int, rng Rand) (*Grid, []WordEntry, []string) {
	g := NewGrid(size)
	entries := make([]WordEntry, 0, len(words))
	var dropped []string

	for _, w := range words {
		if len(w) == 0 || len(w) > size {
			dropped = append(dropped, w)
			continue
		}
		e, ok := g.place(w, rng)
		if !ok {
			dropped = append(dropped, w)
			continue
		}
		entries = append(entries, e)
	}

	g.fill(rng)
	return g, entries, dropped
}

// place tries up to MaxPlacementAttempts random start/direction pairs.
func (g *Grid) place(word string, rng Rand) (WordEntry, bool) {
	for attempt := 0; attempt < MaxPlacementAttempts; attempt++ {
		dir := Directions[rng.Intn(len(Directions))]
		start := Cell{Row: rng.Intn(g.Size), Col: rng.Intn(g.Size)}
		if g.canPlace(word, start, dir) {
			return g.write(word, start, dir), true
		}
	}
	return WordEntry{}, false
}

// canPlace checks bounds and letter conflicts along the path.
func (g *Grid) canPlace(word string, start Cell, dir Direction) bool {
	for i := 0; i < len(word); i++ {
		c := Cell{Row: start.Row + i*dir.DRow, Col: start.Col + i*dir.DCol}
		if !g.InBounds(c) {
			return false
		}
		if cur := g.Letters[c.Row][c.Col]; cur != 0 && cur != word[i] {
			return false
		}
	}
	return true
}

func (g *Grid) write(word string, start Cell, dir Direction) WordEntry {
	positions := make([]Cell, len(word))
	for i := 0; i < len(word); i++ {
		c := Cell{Row: start.Row + i*dir.DRow, Col: start.Col + i*dir.DCol}
		g.Letters[c.Row][c.Col] = word[i]
		positions[i] = c
	}
	return WordEntry{Word: word, Positions: positions}
}

// fill replaces every empty cell with a uniform random letter.
func (g *Grid) fill(rng Rand) {
	for r := range g.Letters {
		for c := range g.Letters[r] {
			if g.Letters[r][c] == 0 {
				g.Letters[r][c] = byte('A' + rng.Intn(26))
			}
		}
	}
}
