package words

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultCount is how many words a puzzle asks for.
	DefaultCount = 8
	// DefaultMinimum is the fewest usable words a source may return.
	DefaultMinimum = 6
	// DefaultTimeout bounds a single source's fetch.
	DefaultTimeout = 3 * time.Second
)

// Shuffler is the randomness a Picker needs. *math/rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Picker chooses the word set for one puzzle. Sources are tried in order;
// the first one returning at least Minimum usable words wins. When every
// source fails the fallback list is used, so Pick never fails.
type Picker struct {
	Sources []Source
	Count   int
	Minimum int
	Timeout time.Duration
}

// NewPicker returns a Picker with the default count, minimum and timeout.
func NewPicker(sources ...Source) *Picker {
	return &Picker{
		Sources: sources,
		Count:   DefaultCount,
		Minimum: DefaultMinimum,
		Timeout: DefaultTimeout,
	}
}

// Pick returns up to Count words. The second result reports whether the
// words came from the fallback list.
func (p *Picker) Pick(ctx context.Context, rng Shuffler) ([]string, bool) {
	for _, src := range p.Sources {
		list, err := p.fetch(ctx, src)
		if err != nil {
			log.Warn().Err(err).Msg("word source failed, trying next")
			continue
		}
		return p.take(list, rng), false
	}
	return p.take(Fallback(), rng), true
}

func (p *Picker) fetch(ctx context.Context, src Source) ([]string, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	list, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	list = Clean(list)
	if len(list) < p.minimum() {
		return nil, ErrInsufficient
	}
	return list, nil
}

func (p *Picker) take(list []string, rng Shuffler) []string {
	count := p.Count
	if count <= 0 {
		count = DefaultCount
	}
	return Sample(list, count, rng)
}

// Sample shuffles a copy of list with rng (if non-nil) and keeps the first n words.
func Sample(list []string, n int, rng Shuffler) []string {
	out := append([]string(nil), list...)
	if rng != nil {
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func (p *Picker) minimum() int {
	if p.Minimum <= 0 {
		return DefaultMinimum
	}
	return p.Minimum
}
