package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codetree-dev/codetree/internal/config"
	"github.com/codetree-dev/codetree/internal/fileutil"
)

func RunInit(cmd *cobra.Command, args []string) error {
	repoPath, err := repoPathArg(cmd, args)
	if err != nil {
		return err
	}
	rootPath, err := resolveRepo(repoPath)
	if err != nil {
		return err
	}
	force, err := OptionalBoolFlag(cmd, "force")
	if err != nil {
		return err
	}

	configPath := filepath.Join(rootPath, config.FileName)
	cfg := config.Default()
	cfg.LLM.APIKey = "${" + config.DefaultAPIKeyEnv(cfg.LLM.Provider) + "}"
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}

	if force {
		if err := fileutil.WriteIfChanged(configPath, data); err != nil {
			return fmt.Errorf("failed to write %s: %w", configPath, err)
		}
	} else {
		created, err := fileutil.WriteIfMissing(configPath, data, 0644)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", configPath, err)
		}
		if !created {
			fmt.Fprintf(out(cmd), "Config already exists at %s (use --force to overwrite)\n", configPath)
			return nil
		}
	}

	fmt.Fprintf(out(cmd), "Wrote %s\n", configPath)
	return nil
}
