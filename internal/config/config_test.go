package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(root, configFile string) *loader {
	return &loader{rootDir: root, configFile: configFile}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := newTestLoader(t.TempDir(), "").Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
	assert.Equal(t, int64(100000), cfg.Index.MaxFileSize)
	assert.Equal(t, 5, cfg.Index.MaxSelectedFiles)
	assert.Contains(t, cfg.Index.Exclude, "node_modules")
}

func TestLoadRepositoryFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".codetree.yaml"), `
llm:
  provider: Anthropic
  model: claude-sonnet
index:
  languages: [go, python]
  max_selected_files: 3
`)

	cfg, err := newTestLoader(root, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "claude-sonnet", cfg.LLM.Model)
	assert.Equal(t, []string{"go", "python"}, cfg.Index.Languages)
	assert.Equal(t, 3, cfg.Index.MaxSelectedFiles)
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
}

func TestLoadFallsBackToYmlAndHome(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".codetree.yml"), "llm:\n  model: from-yml\n")

	cfg, err := newTestLoader(root, "").Load()
	require.NoError(t, err)
	assert.Equal(t, "from-yml", cfg.LLM.Model)

	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".config", "codetree", "config.yaml"), "llm:\n  model: from-home\n")
	l := newTestLoader(t.TempDir(), "")
	l.homeDir = home
	cfg, err = l.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-home", cfg.LLM.Model)
}

func TestLoadExplicitFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".codetree.yaml"), "llm:\n  model: ignored\n")
	explicit := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, explicit, "llm:\n  provider: ollama\n  model: llama3\n")

	cfg, err := newTestLoader(root, explicit).Load()
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)

	_, err = newTestLoader(root, filepath.Join(root, "missing.yaml")).Load()
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadEnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".codetree.yaml"), "llm:\n  model: from-file\n")
	t.Setenv("CODETREE_LLM_MODEL", "from-env")
	t.Setenv("CODETREE_INDEX_MAX_FILES", "42")
	t.Setenv("CODETREE_INDEX_LANGUAGES", "go,rust")

	cfg, err := newTestLoader(root, "").Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LLM.Model)
	assert.Equal(t, 42, cfg.Index.MaxFiles)
	assert.Equal(t, []string{"go", "rust"}, cfg.Index.Languages)
}

func TestLoadDotEnvFeedsAPIKey(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".env"), "CODETREE_TEST_DOTENV_KEY=sk-from-dotenv\n")
	writeFile(t, filepath.Join(root, ".codetree.yaml"), "llm:\n  api_key: ${CODETREE_TEST_DOTENV_KEY}\n")
	t.Cleanup(func() { os.Unsetenv("CODETREE_TEST_DOTENV_KEY") })

	cfg, err := newTestLoader(root, "").Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-from-dotenv", cfg.LLM.ResolveAPIKey())
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".codetree.yaml"), `
llm:
  provider: watson
index:
  languages: [cobol]
  max_files: 0
`)

	_, err := newTestLoader(root, "").Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, ErrInvalidProvider)
	assert.ErrorIs(t, err, ErrInvalidLanguage)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestValidateRequiresLanguages(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	cfg.Index.Languages = nil
	assert.ErrorIs(t, Validate(cfg), ErrInvalidLanguage)

	cfg.Index.Languages = []string{}
	assert.ErrorIs(t, Validate(cfg), ErrInvalidLanguage)
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-default")
	t.Setenv("MY_KEY", "sk-custom")

	assert.Equal(t, "sk-default", LLMConfig{Provider: "openai"}.ResolveAPIKey())
	assert.Equal(t, "sk-custom", LLMConfig{Provider: "openai", APIKey: "${MY_KEY}"}.ResolveAPIKey())
	assert.Equal(t, "literal", LLMConfig{Provider: "openai", APIKey: "literal"}.ResolveAPIKey())
	assert.Empty(t, LLMConfig{Provider: "ollama"}.ResolveAPIKey())
}

func TestSaveRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.LLM.Provider = "gemini"
	cfg.LLM.APIKey = "sk-secret"

	require.NoError(t, Save(cfg, filepath.Join(root, ".codetree.yaml")))

	data, err := os.ReadFile(filepath.Join(root, ".codetree.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-secret")

	loaded, err := newTestLoader(root, "").Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini", loaded.LLM.Provider)
	assert.Equal(t, cfg.Index, loaded.Index)

	cfg.LLM.APIKey = "${GEMINI_API_KEY}"
	data, err = Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "${GEMINI_API_KEY}")
}
