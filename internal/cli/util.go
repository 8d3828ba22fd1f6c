package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codetree-dev/codetree/internal/config"
	"github.com/codetree-dev/codetree/internal/index"
	"github.com/codetree-dev/codetree/internal/workspace"
)

// reasonerFactory overrides the config-driven reasoner when set.
var reasonerFactory workspace.ReasonerFactory

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

// resolveRepo returns the absolute path of an existing repository directory.
func resolveRepo(repoPath string) (string, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", repoPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("repository %s: %w", repoPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("repository %s is not a directory", repoPath)
	}
	return abs, nil
}

func loadConfig(cmd *cobra.Command, rootPath string) (*config.Config, error) {
	configFile, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	return config.NewLoader(rootPath, configFile).Load()
}

func openWorkspace(cmd *cobra.Command, rootPath string, opts ...workspace.Option) (*workspace.Workspace, error) {
	cfg, err := loadConfig(cmd, rootPath)
	if err != nil {
		return nil, err
	}
	opts = append([]workspace.Option{workspace.WithLogger(logger)}, opts...)
	if reasonerFactory != nil {
		opts = append(opts, workspace.WithReasonerFactory(reasonerFactory))
	}
	return workspace.New(rootPath, cfg, opts...)
}

// ensureIndex builds the index when none is persisted, reporting progress on
// stderr.
func ensureIndex(ctx context.Context, cmd *cobra.Command, rootPath string) (*workspace.Workspace, error) {
	progress := newIndexProgressReporter("indexing", false)
	ws, err := openWorkspace(cmd, rootPath, workspace.WithProgress(progress.Update))
	if err != nil {
		return nil, err
	}
	if ws.HasIndex() {
		return ws, nil
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "No index found. Building index first...")
	_, err = ws.BuildIndex(ctx)
	progress.Done()
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

func indexPathFor(rootPath, output string) string {
	if output == "" {
		return index.DefaultPath(rootPath)
	}
	return output
}
