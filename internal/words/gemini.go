package words

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultRegion = "europe-west1"
	defaultModel  = "gemini-2.5-flash"
)

const wordsPrompt = `Give me %d distinct common English words for a word-search puzzle.

Rules:
- Each word has between 3 and 10 letters.
- Letters A to Z only: no spaces, hyphens, accents or digits.
- Reply ONLY with a JSON array of uppercase strings, no commentary and no markdown.`

// GeminiSource asks a Gemini model for a fresh word list.
type GeminiSource struct {
	client    *genai.Client
	modelName string
	count     int
}

// NewGeminiSource creates a Vertex AI backed source using Application
// Default Credentials.
func NewGeminiSource(ctx context.Context, projectID, region string) (*GeminiSource, error) {
	if region == "" {
		region = defaultRegion
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: region,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiSource{client: client, modelName: defaultModel, count: DefaultCount + 4}, nil
}

// Fetch asks the model for words and parses its JSON reply.
func (g *GeminiSource) Fetch(ctx context.Context) ([]string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName,
		[]*genai.Content{{
			Role:  "user",
			Parts: []*genai.Part{{Text: fmt.Sprintf(wordsPrompt, g.count)}},
		}},
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(float32(1.0)),
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini generate: %v", ErrNetwork, err)
	}
	return parseModelWords(resp.Text())
}

// parseModelWords decodes a JSON array of words, tolerating a fenced code block.
func parseModelWords(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty gemini response", ErrParse)
	}

	var list []string
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return nil, fmt.Errorf("%w: %v\nraw response: %s", ErrParse, err, text)
	}
	return Clean(list), nil
}
