package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"

	"github.com/codetree-dev/codetree/internal/config"
)

// anthropicReasoner talks to the Anthropic Messages API.
type anthropicReasoner struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int64
	logger      logrus.FieldLogger
}

func newAnthropicReasoner(apiKey string, cfg config.LLMConfig, logger logrus.FieldLogger) *anthropicReasoner {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &anthropicReasoner{
		client:      anthropic.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   int64(cfg.MaxTokens),
		logger:      logger,
	}
}

func (r *anthropicReasoner) Chat(ctx context.Context, messages []Message) (string, error) {
	system, turns := splitSystem(messages)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(r.model),
		MaxTokens:   r.maxTokens,
		Messages:    toAnthropicMessages(turns),
		Temperature: anthropic.Float(r.temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := r.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic completion failed: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic: %w", ErrEmptyResponse)
	}

	r.logger.WithFields(logrus.Fields{
		"input_tokens":  msg.Usage.InputTokens,
		"output_tokens": msg.Usage.OutputTokens,
	}).Debug("anthropic completion")
	return b.String(), nil
}

func toAnthropicMessages(turns []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(turns))
	for _, m := range turns {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
			continue
		}
		out = append(out, anthropic.NewUserMessage(block))
	}
	return out
}
