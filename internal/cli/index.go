package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/codetree-dev/codetree/internal/workspace"
)

func RunIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()
	repoPath, err := repoPathArg(cmd, args)
	if err != nil {
		return err
	}
	rootPath, err := resolveRepo(repoPath)
	if err != nil {
		return err
	}
	output, err := OptionalStringFlag(cmd, "output")
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}

	progress := newIndexProgressReporter("indexing", asJSON)
	opts := []workspace.Option{workspace.WithProgress(progress.Update)}
	if output != "" {
		opts = append(opts, workspace.WithIndexPath(output))
	}
	ws, err := openWorkspace(cmd, rootPath, opts...)
	if err != nil {
		return err
	}

	if !asJSON {
		fmt.Fprintf(out(cmd), "Indexing %s\n", rootPath)
	}
	idx, err := ws.BuildIndex(commandContext(cmd))
	progress.Done()
	if err != nil {
		return err
	}

	stats := idx.Stats()
	return PrintIndexSummary(out(cmd), IndexSummary{
		RepoPath:   idx.RepoPath,
		IndexPath:  indexPathFor(rootPath, output),
		Files:      stats.TotalFiles,
		Lines:      stats.TotalLines,
		Languages:  stats.Languages,
		DurationMS: time.Since(start).Milliseconds(),
	}, asJSON)
}
