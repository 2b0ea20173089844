package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/teledigest/internal/ranking"
)

const (
	DefaultModel    = "gemini-2.0-flash"
	DefaultMaxPicks = 15
)

var errNoCandidates = errors.New("no response from Gemini")

// Ranker asks a Gemini model to choose the most important headlines.
type Ranker struct {
	client   *genai.Client
	model    string
	maxPicks int
}

var _ ranking.Ranker = (*Ranker)(nil)

func NewRanker(ctx context.Context, apiKey, model string, maxPicks int) (*Ranker, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	if maxPicks <= 0 {
		maxPicks = DefaultMaxPicks
	}
	return &Ranker{client: client, model: model, maxPicks: maxPicks}, nil
}

func (r *Ranker) Close() {
	if r.client != nil {
		r.client.Close()
	}
}

// Rank sends the candidate lines and parses the chosen indices.
func (r *Ranker) Rank(ctx context.Context, lines string, n int) ([]int, error) {
	model := r.client.GenerativeModel(r.model)
	model.SetTemperature(0.2)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(lines, n, r.maxPicks)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return ranking.ParseIndices(text), nil
}

func buildPrompt(lines string, n, maxPicks int) string {
	if maxPicks > n {
		maxPicks = n
	}
	return fmt.Sprintf(`You are a telecom industry analyst preparing a daily digest.
Below are %d headlines, one per line, as "index: title".
Pick at most %d of the most important ones for telecom professionals
(Ericsson, Taiwan market, RAN, 5G core, new network technology, major deals first).
Reply with only a JSON array of the chosen indices, most important first, e.g. [3, 0, 7].

%s
`, n, maxPicks, lines)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errNoCandidates
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errNoCandidates
	}
	return b.String(), nil
}
