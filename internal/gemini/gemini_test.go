package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt("0: Ericsson wins\n1: Open RAN", 2, 15)

	assert.Contains(t, p, "Below are 2 headlines")
	assert.Contains(t, p, "at most 2 of")
	assert.Contains(t, p, "0: Ericsson wins\n1: Open RAN")
	assert.Contains(t, p, "JSON array")
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("[2, "), genai.Text("0]")}},
		}},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "[2, 0]", text)
}

func TestResponseTextEmpty(t *testing.T) {
	tests := []*genai.GenerateContentResponse{
		nil,
		{},
		{Candidates: []*genai.Candidate{{}}},
		{Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text("  ")}}}}},
	}

	for _, resp := range tests {
		_, err := responseText(resp)
		assert.ErrorIs(t, err, errNoCandidates)
	}
}

func TestNewRankerRequiresKey(t *testing.T) {
	_, err := NewRanker(context.Background(), "", "", 0)
	assert.Error(t, err)
}
