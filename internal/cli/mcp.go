package cli

import (
	"github.com/spf13/cobra"

	"github.com/codetree-dev/codetree/internal/mcp"
	"github.com/codetree-dev/codetree/internal/workspace"
)

// RunMCP serves codetree tools on stdio. Config is resolved per repository
// when a tool first names it.
func RunMCP(cmd *cobra.Command, args []string) error {
	srv, err := mcp.NewServer(cmd.Root().Version, func(repoPath string) (*workspace.Workspace, error) {
		return openWorkspace(cmd, repoPath)
	}, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	return srv.Serve(commandContext(cmd), cmd.InOrStdin(), cmd.OutOrStdout())
}
