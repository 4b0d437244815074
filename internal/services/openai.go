package services

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// openAIService is the secondary model in the fallback cascade. It receives
// the same prompt as the primary and is subject to the same JSON extraction.
type openAIService struct {
	client    *openai.Client
	modelName string
}

func NewOpenAIService(apiKey, modelName string) TextGenerator {
	return &openAIService{
		client:    openai.NewClient(apiKey),
		modelName: modelName,
	}
}

func (o *openAIService) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.modelName,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return content, nil
}

func (o *openAIService) Model() string {
	return o.modelName
}
