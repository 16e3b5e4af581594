package ai

import (
	"context"
	"log/slog"

	"github.com/myrjola/plottwist/internal/errors"
	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = openai.GPT4oMini

const contentFilterReason = "content_filter"

// OpenAIBackend talks to an OpenAI compatible chat completions API.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend creates a backend against the public OpenAI API.
func NewOpenAIBackend(apiKey string, model string) *OpenAIBackend {
	return NewOpenAIBackendWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewOpenAIBackendWithConfig allows pointing the backend to another base URL.
func NewOpenAIBackendWithConfig(cfg openai.ClientConfig, model string) *OpenAIBackend {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (b *OpenAIBackend) Name() string {
	return "openai"
}

// Generate sends the system instruction and prompt as a single chat completion.
func (b *OpenAIBackend) Generate(ctx context.Context, req Request) (Completion, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2) //nolint:mnd // system and user
	if req.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{ //nolint:exhaustruct // text only
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{ //nolint:exhaustruct // text only
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
		Model:       b.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxOutputTokens,
	}
	if req.ExpectJSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{ //nolint:exhaustruct // no schema
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := b.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == contentFilterReason {
			return Completion{}, errors.Wrap(ErrContentBlocked, "create chat completion",
				slog.String("block_reason", apiErr.Message))
		}
		return Completion{}, errors.Wrap(err, "create chat completion", slog.String("model", b.model))
	}
	if len(resp.Choices) == 0 {
		return Completion{}, nil
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return Completion{BlockReason: contentFilterReason}, nil //nolint:exhaustruct // blocked
	}
	c := Completion{Text: choice.Message.Content} //nolint:exhaustruct // parts appended below
	for _, part := range choice.Message.MultiContent {
		if part.Type == openai.ChatMessagePartTypeText {
			c.Parts = append(c.Parts, part.Text)
		}
	}
	return c, nil
}
