package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/codetree-dev/codetree/internal/config"
)

// openAIReasoner talks to the OpenAI chat completions API or any endpoint
// compatible with it, such as Ollama.
type openAIReasoner struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      logrus.FieldLogger
}

func newOpenAIReasoner(apiKey, baseURL string, cfg config.LLMConfig, logger logrus.FieldLogger) *openAIReasoner {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &openAIReasoner{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}
}

func (r *openAIReasoner) Chat(ctx context.Context, messages []Message) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Messages:    toOpenAIMessages(messages),
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}

	text := resp.Choices[0].Message.Content
	r.logger.WithFields(logrus.Fields{
		"prompt_tokens":   resp.Usage.PromptTokens,
		"response_length": len(text),
	}).Debug("openai completion")
	return text, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}
