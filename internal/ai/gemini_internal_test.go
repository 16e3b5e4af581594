package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGenerateConfig(t *testing.T) {
	cfg := generateConfig(Request{
		Prompt:            "p",
		SystemInstruction: "be JSON",
		Temperature:       0.9,
		MaxOutputTokens:   2048,
		ExpectJSON:        true,
	})
	require.Equal(t, "application/json", cfg.ResponseMIMEType)
	require.InDelta(t, 0.9, *cfg.Temperature, 0.0001)
	require.Equal(t, int32(2048), cfg.MaxOutputTokens)
	require.Len(t, cfg.SafetySettings, 4)
	for _, s := range cfg.SafetySettings {
		require.Equal(t, genai.HarmBlockThresholdBlockMediumAndAbove, s.Threshold)
	}
	require.Equal(t, "be JSON", cfg.SystemInstruction.Parts[0].Text)

	plain := generateConfig(Request{Prompt: "p"})
	require.Empty(t, plain.ResponseMIMEType)
	require.Nil(t, plain.SystemInstruction)
}

func TestGeminiCompletion(t *testing.T) {
	blocked := geminiCompletion(&genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	})
	require.Equal(t, string(genai.BlockedReasonSafety), blocked.BlockReason)

	parts := geminiCompletion(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: `{"a":`},
				{Text: ` 1}`},
			}},
		}},
	})
	require.Equal(t, []string{`{"a":`, ` 1}`}, parts.Parts)

	require.Empty(t, geminiCompletion(nil).Parts)
	require.Empty(t, geminiCompletion(&genai.GenerateContentResponse{}).Parts)
}
