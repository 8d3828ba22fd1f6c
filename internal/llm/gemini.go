package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/codetree-dev/codetree/internal/config"
)

// geminiReasoner wraps Google's Generative AI SDK.
type geminiReasoner struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	logger      logrus.FieldLogger
}

func newGeminiReasoner(ctx context.Context, apiKey string, cfg config.LLMConfig, logger logrus.FieldLogger) (*geminiReasoner, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiReasoner{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.MaxTokens),
		logger:      logger,
	}, nil
}

func (r *geminiReasoner) Chat(ctx context.Context, messages []Message) (string, error) {
	system, turns := splitSystem(messages)

	genConfig := &genai.GenerateContentConfig{
		Temperature:     &r.temperature,
		MaxOutputTokens: r.maxTokens,
	}
	if system != "" {
		genConfig.SystemInstruction = genai.Text(system)[0]
	}

	resp, err := r.client.Models.GenerateContent(ctx, r.model, toGeminiContents(turns), genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	text := b.String()

	r.logger.WithField("response_length", len(text)).Debug("gemini completion")
	return text, nil
}

func toGeminiContents(turns []Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}
