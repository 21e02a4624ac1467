// internal/words/http.go
//
// Random-word HTTP source.
// Fires Lookups requests in parallel against a random-word endpoint that
// answers `[{"word": "..."}]`, waits for all of them (each bounded by the
// caller's context), and keeps the usable words.

package words

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// DefaultWordsAPI is the public random-word endpoint.
const DefaultWordsAPI = "https://random-words-api.vercel.app/word"

const defaultLookups = 10

// HTTPSource races several single-word lookups.
type HTTPSource struct {
	URL     string
	Client  *http.Client
	Lookups int
	Minimum int
}

// NewHTTPSource returns a source for url (DefaultWordsAPI if empty).
func NewHTTPSource(url string) *HTTPSource {
	if url == "" {
		url = DefaultWordsAPI
	}
	return &HTTPSource{
		URL:     url,
		Client:  http.DefaultClient,
		Lookups: defaultLookups,
		Minimum: DefaultMinimum,
	}
}

type wordResult struct {
	word string
	err  error
}

// Fetch runs the lookups and returns the distinct usable words.
func (s *HTTPSource) Fetch(ctx context.Context) ([]string, error) {
	n := s.Lookups
	if n <= 0 {
		n = defaultLookups
	}
	results := make([]wordResult, n)

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, err := s.lookup(ctx)
			results[i] = wordResult{word: w, err: err}
		}(i)
	}
	wg.Wait()

	var raw []string
	var lastErr error
	for _, r := range results {
		if r.err != nil {
			lastErr = r.err
			continue
		}
		raw = append(raw, r.word)
	}

	list := Clean(raw)
	need := s.Minimum
	if need <= 0 {
		need = DefaultMinimum
	}
	if len(list) >= need {
		return list, nil
	}
	if len(raw) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%w: %d of %d lookups usable", ErrInsufficient, len(list), n)
}

// lookup performs one request and extracts the first word.
func (s *HTTPSource) lookup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
	}

	var body []struct {
		Word string `json:"word"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(body) == 0 || body[0].Word == "" {
		return "", errors.Join(ErrParse, errors.New("empty word"))
	}
	return body[0].Word, nil
}
