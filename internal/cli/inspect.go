package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codetree-dev/codetree/internal/workspace"
)

func RunTree(cmd *cobra.Command, args []string) error {
	depth, err := OptionalIntFlag(cmd, "depth", 3)
	if err != nil {
		return err
	}
	if depth < 0 {
		return fmt.Errorf("--depth must be >= 0")
	}
	rootPath, err := repoFromFlag(cmd)
	if err != nil {
		return err
	}

	ws, err := ensureIndex(commandContext(cmd), cmd, rootPath)
	if err != nil {
		return err
	}
	tree, err := ws.RenderTree(depth)
	if err != nil {
		return err
	}
	fmt.Fprintln(out(cmd), tree)
	return nil
}

func RunFind(cmd *cobra.Command, args []string) error {
	symbol := strings.TrimSpace(args[0])
	if symbol == "" {
		return fmt.Errorf("symbol must not be empty")
	}
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	rootPath, err := repoFromFlag(cmd)
	if err != nil {
		return err
	}

	ws, err := ensureIndex(commandContext(cmd), cmd, rootPath)
	if err != nil {
		return err
	}
	refs, err := ws.FindSymbol(symbol)
	if err != nil {
		return err
	}
	return PrintReferences(out(cmd), symbol, refs, asJSON)
}

// RunStats never builds an index; it reports ErrNoIndex instead.
func RunStats(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	rootPath, err := repoFromFlag(cmd)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(cmd, rootPath)
	if err != nil {
		return err
	}
	stats, err := ws.Stats()
	if err != nil {
		if errors.Is(err, workspace.ErrNoIndex) {
			return err
		}
		return fmt.Errorf("failed to load index: %w", err)
	}
	return PrintStats(out(cmd), stats, asJSON)
}

func repoFromFlag(cmd *cobra.Command) (string, error) {
	repoPath, err := repoPathArg(cmd, nil)
	if err != nil {
		return "", err
	}
	return resolveRepo(repoPath)
}
