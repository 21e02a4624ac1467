// internal/words/words.go
//
// Provides puzzle word lists for the game engine.
//
// Responsibilities:
//   - Hold the embedded fallback list used whenever no source answers.
//   - Normalize candidate words (uppercase A–Z, 3–10 letters, no repeats).
//   - Define the Source capability and its failure kinds.
//   - Load a local word file (FileSource), one word per line.
//
// Word rules:
//   • Words are uppercase Latin letters only.
//   • Length between puzzle.MinWordLen and puzzle.MaxWordLen.
//   • The fallback list is parsed once (sync.Once) and always has ≥ 8 words.

package words

import (
	"bufio"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/robalobadob/wordsearch/internal/puzzle"
)

//go:embed fallback.txt
var embeddedFallback string

var (
	fallbackOnce sync.Once
	fallback     []string
)

// Failure kinds reported by a Source.
var (
	ErrNetwork      = errors.New("words: network error")
	ErrParse        = errors.New("words: malformed response")
	ErrInsufficient = errors.New("words: not enough usable words")
)

// Source supplies candidate puzzle words.
type Source interface {
	Fetch(ctx context.Context) ([]string, error)
}

// Fallback returns a copy of the built-in word list.
func Fallback() []string {
	fallbackOnce.Do(func() {
		fallback = normalizeLines(embeddedFallback)
	})
	return append([]string(nil), fallback...)
}

// Stats returns the number of built-in fallback words.
func Stats() int {
	return len(Fallback())
}

// Normalize upper-cases w and reports whether it is a usable puzzle word.
func Normalize(w string) (string, bool) {
	w = strings.ToUpper(strings.TrimSpace(w))
	if len(w) < puzzle.MinWordLen || len(w) > puzzle.MaxWordLen || !isAlpha(w) {
		return "", false
	}
	return w, true
}

// Clean normalizes list, dropping unusable words and repeats while keeping order.
func Clean(list []string) []string {
	out := lo.FilterMap(list, func(w string, _ int) (string, bool) {
		return Normalize(w)
	})
	return lo.Uniq(out)
}

// normalizeLines turns a multiline string into cleaned words,
// skipping blank lines and # comments.
func normalizeLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return Clean(lines)
}

// isAlpha reports whether s is all uppercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// FileSource reads words from a local file, one per line.
type FileSource struct {
	Path string
}

// Fetch loads and cleans the file. The context is only checked up front;
// reading a local file is not interruptible.
func (f FileSource) Fetch(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list, err := readWordFile(f.Path)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s has no usable words", ErrInsufficient, f.Path)
	}
	return list, nil
}

// readWordFile loads one word per line from a file and keeps only usable words.
func readWordFile(path string) ([]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var out []string
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Clean(out), nil
}
