package config

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/internal/words"
)

// WordPicker assembles the word sources in priority order: a local file
// (WORDS_FILE), the random-words API, then Gemini when GCP_PROJECT_ID is
// set. The fallback list covers the rest.
func (c Config) WordPicker(ctx context.Context) *words.Picker {
	var sources []words.Source
	if c.WordsFile != "" {
		sources = append(sources, words.FileSource{Path: c.WordsFile})
	}
	if c.WordsAPIURL != "off" {
		sources = append(sources, words.NewHTTPSource(c.WordsAPIURL))
	}
	if c.GCPProjectID != "" {
		gs, err := words.NewGeminiSource(ctx, c.GCPProjectID, c.GCPRegion)
		if err != nil {
			log.Warn().Err(err).Msg("gemini word source disabled")
		} else {
			sources = append(sources, gs)
		}
	}

	p := words.NewPicker(sources...)
	p.Timeout = c.FetchTimeout
	return p
}
