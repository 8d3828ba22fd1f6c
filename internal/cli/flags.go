package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func addRepoFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("repo", "r", ".", "Repository path")
}

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return false, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func OptionalIntFlag(cmd *cobra.Command, name string, fallback int) (int, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return fallback, nil
	}
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// repoPathArg returns the repository named by the first positional argument
// or the --repo flag, defaulting to the working directory.
func repoPathArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	repo, err := OptionalStringFlag(cmd, "repo")
	if err != nil {
		return "", err
	}
	if repo == "" {
		return resolveWorkingDirectory()
	}
	return repo, nil
}
