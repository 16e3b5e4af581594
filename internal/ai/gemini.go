package ai

import (
	"context"
	"log/slog"

	"github.com/myrjola/plottwist/internal/errors"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// safetyCategories are blocked at medium probability and above.
var safetyCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

// GeminiBackend talks to the Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates the process-wide Gemini client. The client is safe for concurrent use.
func NewGeminiBackend(ctx context.Context, apiKey string, model string) (*GeminiBackend, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{ //nolint:exhaustruct // defaults are fine
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client", slog.String("model", model))
	}
	return &GeminiBackend{client: client, model: model}, nil
}

func (b *GeminiBackend) Name() string {
	return "gemini"
}

// Generate sends req as a single user turn.
func (b *GeminiBackend) Generate(ctx context.Context, req Request) (Completion, error) {
	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(req.Prompt), generateConfig(req))
	if err != nil {
		return Completion{}, errors.Wrap(err, "gemini generate content", slog.String("model", b.model))
	}
	return geminiCompletion(resp), nil
}

func generateConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{ //nolint:exhaustruct // only the relevant knobs
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: int32(req.MaxOutputTokens), //nolint:gosec // small configured values
		SafetySettings:  make([]*genai.SafetySetting, 0, len(safetyCategories)),
	}
	for _, category := range safetyCategories {
		cfg.SafetySettings = append(cfg.SafetySettings, &genai.SafetySetting{ //nolint:exhaustruct // method unset
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.ExpectJSON {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func geminiCompletion(resp *genai.GenerateContentResponse) Completion {
	var c Completion
	if resp == nil {
		return c
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		c.BlockReason = string(resp.PromptFeedback.BlockReason)
		return c
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return c
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		c.Parts = append(c.Parts, part.Text)
	}
	return c
}
