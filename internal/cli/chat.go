package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/codetree-dev/codetree/internal/index"
	"github.com/codetree-dev/codetree/internal/workspace"
)

const chatTreeDepth = 3

// chatFindLimit caps /find output in the interactive loop.
const chatFindLimit = 20

func RunChat(cmd *cobra.Command, args []string) error {
	rootPath, err := repoFromFlag(cmd)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	ws, err := ensureIndex(ctx, cmd, rootPath)
	if err != nil {
		return err
	}
	stats, err := ws.Stats()
	if err != nil {
		return err
	}

	w := out(cmd)
	fmt.Fprintf(w, "CodeTree interactive mode\n\nRepository: %s\nFiles indexed: %d\n\n", filepath.Base(rootPath), stats.TotalFiles)
	fmt.Fprintln(w, "Type your questions about the code.")
	fmt.Fprintln(w, "Commands: /tree, /stats, /find <symbol>, /quit")

	in := cmd.InOrStdin()
	session := &chatSession{
		ws:          ws,
		out:         w,
		interactive: in == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())),
	}
	return session.run(ctx, in)
}

type chatSession struct {
	ws          *workspace.Workspace
	out         io.Writer
	interactive bool
}

func (s *chatSession) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if s.interactive {
			fmt.Fprint(s.out, "\nYou: ")
		}
		if !scanner.Scan() {
			break
		}
		quit, err := s.handle(ctx, scanner.Text())
		if err != nil {
			return err
		}
		if quit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	fmt.Fprintln(s.out, "\nGoodbye!")
	return nil
}

// handle processes one input line and reports whether the session should end.
// Query failures are printed rather than returned so the loop keeps going.
func (s *chatSession) handle(ctx context.Context, line string) (bool, error) {
	input := strings.TrimSpace(line)
	if input == "" {
		return false, nil
	}
	command := strings.ToLower(input)

	switch {
	case command == "/quit" || command == "/exit" || command == "/q":
		return true, nil

	case command == "/tree":
		tree, err := s.ws.RenderTree(chatTreeDepth)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "\n%s\n", tree)

	case command == "/stats":
		stats, err := s.ws.Stats()
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "\nFiles: %d\nLines: %s\nLanguages: %s\n",
			stats.TotalFiles, index.FormatCount(stats.TotalLines), stats.LanguageSummary())

	case strings.HasPrefix(command, "/find "):
		symbol := strings.TrimSpace(input[len("/find "):])
		refs, err := s.ws.FindSymbol(symbol)
		if err != nil {
			return false, err
		}
		if len(refs) == 0 {
			fmt.Fprintf(s.out, "\nNo references found for '%s'\n", symbol)
			return false, nil
		}
		fmt.Fprintf(s.out, "\nFound %d references to '%s':\n\n", len(refs), symbol)
		for i, ref := range refs {
			if i == chatFindLimit {
				fmt.Fprintf(s.out, "  ... (+%d more)\n", len(refs)-chatFindLimit)
				break
			}
			fmt.Fprintln(s.out, FormatReference(ref))
		}

	default:
		answer, err := s.ws.Query(ctx, input)
		if err != nil {
			logger.WithError(err).Debug("query failed")
			fmt.Fprintf(s.out, "\nError: %v\n", err)
			return false, nil
		}
		fmt.Fprintf(s.out, "\nCodeTree:\n%s\n", answer)
	}
	return false, nil
}
