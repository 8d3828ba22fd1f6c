package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CODETREE_LLM_MODEL.
const EnvPrefix = "CODETREE"

// FileName is the repository-level config file written by `codetree init`.
const FileName = ".codetree.yaml"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
	homeDir    string
}

// NewLoader creates a loader for the repository at rootDir. A non-empty
// configFile is used instead of searching and must exist.
func NewLoader(rootDir, configFile string) Loader {
	home, _ := os.UserHomeDir()
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
		homeDir:    home,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CODETREE_*), including those from <repo>/.env
// 2. The first config file found: --config, <repo>/.codetree.yaml,
//    <repo>/.codetree.yml, ~/.config/codetree/config.yaml
// 3. Default values
func (l *loader) Load() (*Config, error) {
	if err := godotenv.Load(filepath.Join(l.rootDir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"llm.provider",
		"llm.model",
		"llm.api_key",
		"llm.base_url",
		"llm.temperature",
		"llm.max_tokens",
		"index.languages",
		"index.exclude",
		"index.allow_hidden",
		"index.max_file_size",
		"index.max_files",
		"index.max_selected_files",
	} {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	path, err := l.resolveFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// resolveFile returns the config file to read, or "" when none exists.
func (l *loader) resolveFile() (string, error) {
	if l.configFile != "" {
		if _, err := os.Stat(l.configFile); err != nil {
			return "", fmt.Errorf("config file %s: %w", l.configFile, err)
		}
		return l.configFile, nil
	}

	candidates := []string{
		filepath.Join(l.rootDir, FileName),
		filepath.Join(l.rootDir, ".codetree.yml"),
	}
	if l.homeDir != "" {
		candidates = append(candidates, filepath.Join(l.homeDir, ".config", "codetree", "config.yaml"))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("llm.provider", defaults.LLM.Provider)
	v.SetDefault("llm.model", defaults.LLM.Model)
	v.SetDefault("llm.api_key", defaults.LLM.APIKey)
	v.SetDefault("llm.base_url", defaults.LLM.BaseURL)
	v.SetDefault("llm.temperature", defaults.LLM.Temperature)
	v.SetDefault("llm.max_tokens", defaults.LLM.MaxTokens)

	v.SetDefault("index.languages", defaults.Index.Languages)
	v.SetDefault("index.exclude", defaults.Index.Exclude)
	v.SetDefault("index.allow_hidden", defaults.Index.AllowHidden)
	v.SetDefault("index.max_file_size", defaults.Index.MaxFileSize)
	v.SetDefault("index.max_files", defaults.Index.MaxFiles)
	v.SetDefault("index.max_selected_files", defaults.Index.MaxSelectedFiles)
}

// LoadFromDir loads configuration for the repository at rootDir.
func LoadFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir, "").Load()
}
