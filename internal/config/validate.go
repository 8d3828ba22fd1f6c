package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrInvalidConfig is wrapped by every validation failure.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidProvider indicates an unsupported LLM provider
	ErrInvalidProvider = fmt.Errorf("%w: invalid llm provider", ErrInvalidConfig)

	// ErrEmptyModel indicates a missing LLM model
	ErrEmptyModel = fmt.Errorf("%w: empty llm model", ErrInvalidConfig)

	// ErrInvalidLanguage indicates an unknown language in index.languages
	ErrInvalidLanguage = fmt.Errorf("%w: invalid language", ErrInvalidConfig)

	// ErrInvalidLimit indicates a non-positive size or count limit
	ErrInvalidLimit = fmt.Errorf("%w: invalid limit", ErrInvalidConfig)
)

// Providers lists the supported LLM providers.
var Providers = []string{"openai", "ollama", "gemini", "anthropic"}

// KnownLanguages lists the language names index.languages may contain.
var KnownLanguages = []string{"python", "javascript", "typescript", "go", "rust", "java", "c", "cpp"}

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateLLM(&cfg.LLM); err != nil {
		errs = append(errs, err)
	}
	if err := validateIndex(&cfg.Index); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateLLM(cfg *LLMConfig) error {
	var errs []error

	provider := strings.ToLower(cfg.Provider)
	if !contains(Providers, provider) {
		errs = append(errs, fmt.Errorf("%w: must be one of %s, got '%s'", ErrInvalidProvider, strings.Join(Providers, ", "), cfg.Provider))
	}
	if strings.TrimSpace(cfg.Model) == "" {
		errs = append(errs, fmt.Errorf("%w: model is required", ErrEmptyModel))
	}
	if cfg.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_tokens must be positive, got %d", ErrInvalidLimit, cfg.MaxTokens))
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, fmt.Errorf("%w: temperature must be between 0 and 2, got %v", ErrInvalidLimit, cfg.Temperature))
	}

	return errors.Join(errs...)
}

func validateIndex(cfg *IndexConfig) error {
	var errs []error

	if len(cfg.Languages) == 0 {
		errs = append(errs, fmt.Errorf("%w: languages must list at least one language", ErrInvalidLanguage))
	}
	for _, lang := range cfg.Languages {
		if !contains(KnownLanguages, lang) {
			errs = append(errs, fmt.Errorf("%w: '%s'", ErrInvalidLanguage, lang))
		}
	}
	if cfg.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_size must be positive, got %d", ErrInvalidLimit, cfg.MaxFileSize))
	}
	if cfg.MaxFiles <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_files must be positive, got %d", ErrInvalidLimit, cfg.MaxFiles))
	}
	if cfg.MaxSelectedFiles <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_selected_files must be positive, got %d", ErrInvalidLimit, cfg.MaxSelectedFiles))
	}

	return errors.Join(errs...)
}

// ResolveAPIKey returns the API key to use: the configured value with
// ${NAME} references expanded, falling back to the provider's conventional
// environment variable.
func (c LLMConfig) ResolveAPIKey() string {
	if key := strings.TrimSpace(os.ExpandEnv(c.APIKey)); key != "" {
		return key
	}
	if env, ok := defaultKeyEnv[strings.ToLower(c.Provider)]; ok {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}

func contains(items []string, item string) bool {
	for _, it := range items {
		if it == item {
			return true
		}
	}
	return false
}
