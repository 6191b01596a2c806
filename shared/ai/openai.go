package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// OpenAIModel talks to any OpenAI-compatible chat completion endpoint.
type OpenAIModel struct {
	chatModel model.BaseChatModel
}

func NewOpenAIModel(ctx context.Context, baseURL, apiKey, modelName string) (*OpenAIModel, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI chat model: %w", err)
	}
	return &OpenAIModel{chatModel: chatModel}, nil
}

func (o *OpenAIModel) Generate(ctx context.Context, system, prompt string) (string, error) {
	var messages []*schema.Message
	if system != "" {
		messages = append(messages, schema.SystemMessage(system))
	}
	messages = append(messages, schema.UserMessage(prompt))

	resp, err := o.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	return resp.Content, nil
}
