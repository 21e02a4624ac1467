package words

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource returns fixed words or a fixed error.
type stubSource struct {
	list []string
	err  error
}

func (s stubSource) Fetch(ctx context.Context) ([]string, error) { return s.list, s.err }

// blockingSource waits for its context to end.
type blockingSource struct{}

func (blockingSource) Fetch(ctx context.Context) ([]string, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFallbackList(t *testing.T) {
	list := Fallback()
	require.GreaterOrEqual(t, len(list), 8)
	assert.Contains(t, list, "PUZZLE")
	assert.Equal(t, len(list), Stats())

	list[0] = "MUTATED"
	assert.NotEqual(t, "MUTATED", Fallback()[0])
}

func TestNormalize(t *testing.T) {
	cases := map[string]struct {
		want string
		ok   bool
	}{
		"  puzzle ":   {"PUZZLE", true},
		"Cat":         {"CAT", true},
		"go":          {"", false},
		"abcdefghijk": {"", false},
		"ice-cream":   {"", false},
		"café":        {"", false},
		"r2d2":        {"", false},
	}
	for in, tc := range cases {
		got, ok := Normalize(in)
		assert.Equal(t, tc.ok, ok, in)
		assert.Equal(t, tc.want, got, in)
	}
}

func TestCleanDropsRepeatsAndKeepsOrder(t *testing.T) {
	assert.Equal(t, []string{"GRID", "FIND"}, Clean([]string{"grid", "x", "FIND", "Grid"}))
}

func TestPickUsesFirstHealthySource(t *testing.T) {
	p := NewPicker(
		stubSource{err: ErrNetwork},
		stubSource{list: []string{"apple", "river", "stone", "cloud", "tiger", "piano", "lemon", "maple", "quilt"}},
	)
	list, fromFallback := p.Pick(context.Background(), rand.New(rand.NewSource(1)))
	assert.False(t, fromFallback)
	assert.Len(t, list, DefaultCount)
	for _, w := range list {
		assert.Equal(t, strings.ToUpper(w), w)
	}
}

func TestPickFallsBackForEveryFailureKind(t *testing.T) {
	sources := map[string]Source{
		"network":      stubSource{err: ErrNetwork},
		"parse":        stubSource{err: ErrParse},
		"insufficient": stubSource{list: []string{"apple", "river", "stone"}},
		"unusable":     stubSource{list: []string{"a", "b-c", "12345", "xy", "zz", "no way"}},
	}
	fallback := Fallback()
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			list, fromFallback := NewPicker(src).Pick(context.Background(), rand.New(rand.NewSource(2)))
			assert.True(t, fromFallback)
			assert.Len(t, list, DefaultCount)
			assert.Subset(t, fallback, list)
		})
	}
}

func TestPickBoundsSlowSources(t *testing.T) {
	p := NewPicker(blockingSource{})
	p.Timeout = 20 * time.Millisecond

	start := time.Now()
	list, fromFallback := p.Pick(context.Background(), nil)
	assert.True(t, fromFallback)
	assert.NotEmpty(t, list)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nbanana\n\nkiwi\nno\nbanana\n"), 0o644))

	list, err := FileSource{Path: path}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BANANA", "KIWI"}, list)

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.txt")}.Fetch(context.Background())
	assert.Error(t, err)
}

func TestHTTPSourceCollectsWords(t *testing.T) {
	pool := []string{"apple", "river", "stone", "cloud", "tiger", "piano", "lemon", "maple", "quilt", "zebra"}
	var n atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := int(n.Add(1)-1) % len(pool)
		_, _ = w.Write([]byte(`[{"word":"` + pool[i] + `","definition":"x"}]`))
	}))
	defer ts.Close()

	src := NewHTTPSource(ts.URL)
	list, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, len(pool))
	assert.EqualValues(t, defaultLookups, n.Load())
}

func TestHTTPSourceFailures(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer ts.Close()
		_, err := NewHTTPSource(ts.URL).Fetch(context.Background())
		assert.True(t, errors.Is(err, ErrNetwork), "got %v", err)
	})

	t.Run("malformed body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"oops":`))
		}))
		defer ts.Close()
		_, err := NewHTTPSource(ts.URL).Fetch(context.Background())
		assert.True(t, errors.Is(err, ErrParse), "got %v", err)
	})

	t.Run("too few usable", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"word":"ox"}]`))
		}))
		defer ts.Close()
		_, err := NewHTTPSource(ts.URL).Fetch(context.Background())
		assert.True(t, errors.Is(err, ErrInsufficient), "got %v", err)
	})

	t.Run("unreachable", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := ts.URL
		ts.Close()
		_, err := NewHTTPSource(url).Fetch(context.Background())
		assert.True(t, errors.Is(err, ErrNetwork), "got %v", err)
	})
}

func TestPickerFallsBackWhenHTTPSourceFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	list, fromFallback := NewPicker(NewHTTPSource(ts.URL)).Pick(context.Background(), rand.New(rand.NewSource(3)))
	assert.True(t, fromFallback)
	assert.Subset(t, Fallback(), list)
}

func TestParseModelWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
		err  error
	}{
		{"fenced array", "```json\n[\"apple\", \"Kiwi\", \"x\"]\n```", []string{"APPLE", "KIWI"}, nil},
		{"repeats and phrases dropped", `["planet", "Orbit", "x", "planet", "rocket ship"]`, []string{"PLANET", "ORBIT"}, nil},
		{"empty", "", nil, ErrParse},
		{"blank", "  ", nil, ErrParse},
		{"not json", "not json", nil, ErrParse},
		{"comma list", "planet, orbit", nil, ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := parseModelWords(tt.text)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, list)
		})
	}
}

func TestGeminiSource(t *testing.T) {
	projectID := os.Getenv("GCP_PROJECT_ID")
	if projectID == "" {
		t.Skip("GCP_PROJECT_ID not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	src, err := NewGeminiSource(ctx, projectID, "")
	require.NoError(t, err)

	list, err := src.Fetch(ctx)
	require.NoError(t, err)
	t.Logf("model words: %v", list)
	assert.NotEmpty(t, list)
}
