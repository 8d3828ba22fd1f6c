package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/codetree-dev/codetree/internal/config"
)

var (
	// ErrUnknownProvider is returned for a provider name NewReasoner does not know.
	ErrUnknownProvider = errors.New("unknown llm provider")

	// ErrMissingAPIKey is returned when a hosted provider has no API key.
	ErrMissingAPIKey = errors.New("missing llm api key")

	// ErrEmptyResponse is returned when the provider answers with no text.
	ErrEmptyResponse = errors.New("empty llm response")
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    Role
	Content string
}

// Reasoner turns a conversation into a single text reply.
type Reasoner interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

const defaultOllamaURL = "http://localhost:11434/v1"

// NewReasoner builds the reasoner selected by cfg.Provider.
func NewReasoner(ctx context.Context, cfg config.LLMConfig, logger logrus.FieldLogger) (Reasoner, error) {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	logger = logger.WithFields(logrus.Fields{"provider": provider, "model": cfg.Model})

	switch provider {
	case "openai":
		key := cfg.ResolveAPIKey()
		if key == "" {
			return nil, fmt.Errorf("%w: set OPENAI_API_KEY or llm.api_key", ErrMissingAPIKey)
		}
		return newOpenAIReasoner(key, cfg.BaseURL, cfg, logger), nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
		key := cfg.ResolveAPIKey()
		if key == "" {
			key = "ollama"
		}
		return newOpenAIReasoner(key, baseURL, cfg, logger), nil
	case "gemini":
		key := cfg.ResolveAPIKey()
		if key == "" {
			return nil, fmt.Errorf("%w: set GEMINI_API_KEY or llm.api_key", ErrMissingAPIKey)
		}
		return newGeminiReasoner(ctx, key, cfg, logger)
	case "anthropic":
		key := cfg.ResolveAPIKey()
		if key == "" {
			return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or llm.api_key", ErrMissingAPIKey)
		}
		return newAnthropicReasoner(key, cfg, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownProvider, cfg.Provider, strings.Join(config.Providers, ", "))
	}
}

// splitSystem separates system messages, joined by blank lines, from the
// conversation turns.
func splitSystem(messages []Message) (string, []Message) {
	var system []string
	turns := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return strings.Join(system, "\n\n"), turns
}
