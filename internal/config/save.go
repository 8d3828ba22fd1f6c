package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/codetree-dev/codetree/internal/fileutil"
)

// Marshal renders cfg as YAML. Literal API keys are never written.
func Marshal(cfg *Config) ([]byte, error) {
	out := *cfg
	if !isEnvReference(out.LLM.APIKey) {
		out.LLM.APIKey = ""
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := fileutil.WriteIfChanged(path, data); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

func isEnvReference(s string) bool {
	return len(s) > 3 && s[0] == '$' && s[1] == '{' && s[len(s)-1] == '}'
}
