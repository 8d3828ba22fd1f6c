package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codetree-dev/codetree/internal/fileutil"
)

func RunQuery(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(args[0])
	if question == "" {
		return fmt.Errorf("question must not be empty")
	}
	repoPath, err := repoPathArg(cmd, nil)
	if err != nil {
		return err
	}
	rootPath, err := resolveRepo(repoPath)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	ws, err := ensureIndex(ctx, cmd, rootPath)
	if err != nil {
		return err
	}

	logger.WithField("question", question).Debug("answering question")
	answer, err := ws.Query(ctx, question)
	if err != nil {
		return err
	}
	fmt.Fprint(out(cmd), fileutil.EnsureTrailingNewline(answer))
	return nil
}
