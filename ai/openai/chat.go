package openai

import (
	"context"

	"github.com/poiesic/larder/ai"
	"github.com/tmc/langchaingo/llms"
)

// generateJSON sends a system/user prompt pair in JSON mode and returns the
// first choice's text. Transport errors propagate unchanged.
func generateJSON(ctx context.Context, client llms.Model, model, system, user string) (string, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(system)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(user)},
		},
	}

	response, err := client.GenerateContent(ctx, content, llms.WithModel(model), llms.WithJSONMode())
	if err != nil {
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", ai.ErrEmptyResponse
	}
	return response.Choices[0].Content, nil
}
