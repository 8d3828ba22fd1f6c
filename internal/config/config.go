package config

import "strings"

// Config is the complete codetree configuration.
type Config struct {
	LLM   LLMConfig   `yaml:"llm" mapstructure:"llm"`
	Index IndexConfig `yaml:"index" mapstructure:"index"`
}

// LLMConfig selects and tunes the reasoning backend.
type LLMConfig struct {
	// Provider is one of openai, ollama, gemini or anthropic.
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model is the provider-specific model name.
	Model string `yaml:"model" mapstructure:"model"`

	// APIKey may reference an environment variable as ${NAME}. When empty the
	// provider's conventional variable is used.
	APIKey string `yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `yaml:"base_url,omitempty" mapstructure:"base_url"`

	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// IndexConfig controls which files are indexed and how many are selected
// for a query.
type IndexConfig struct {
	Languages        []string `yaml:"languages" mapstructure:"languages"`
	Exclude          []string `yaml:"exclude" mapstructure:"exclude"`
	AllowHidden      []string `yaml:"allow_hidden" mapstructure:"allow_hidden"`
	MaxFileSize      int64    `yaml:"max_file_size" mapstructure:"max_file_size"`
	MaxFiles         int      `yaml:"max_files" mapstructure:"max_files"`
	MaxSelectedFiles int      `yaml:"max_selected_files" mapstructure:"max_selected_files"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			Temperature: 0,
			MaxTokens:   4096,
		},
		Index: IndexConfig{
			Languages: []string{"python", "javascript", "typescript", "go", "rust", "java"},
			Exclude: []string{
				"node_modules",
				"__pycache__",
				".git",
				".venv",
				"venv",
				"dist",
				"build",
				"*.egg-info",
				".tox",
				".pytest_cache",
			},
			AllowHidden:      []string{".github"},
			MaxFileSize:      100000,
			MaxFiles:         10000,
			MaxSelectedFiles: 5,
		},
	}
}

// defaultKeyEnv names the environment variable consulted for each provider
// when no key is configured.
var defaultKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// DefaultAPIKeyEnv returns the conventional API key variable for provider, or
// "" for providers that need none.
func DefaultAPIKeyEnv(provider string) string {
	return defaultKeyEnv[strings.ToLower(provider)]
}
