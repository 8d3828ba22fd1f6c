package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "codetree",
		Short: "Ask questions about a codebase using its structure",
		Long: `CodeTree indexes a repository into a tree of directories and files,
annotated with the functions, classes and imports each file defines.

Questions are answered in two steps: a language model reads the compact
tree to pick the relevant files, then answers from their contents.

The index is written to .codetree/index.json in the repository.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return fmt.Errorf("failed to read --verbose flag: %w", err)
			}
			logger = newLogger(verbose)
			return nil
		},
	}
	rootCmd.PersistentFlags().String("config", "", "Config file (default: .codetree.yaml in the repository)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	// Setup Commands
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default .codetree.yaml into a repository",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	indexCmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Build the index for a repository",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunIndex,
	}
	indexCmd.Flags().StringP("output", "o", "", "Write the index document to this path")
	indexCmd.Flags().Bool("json", false, "Print machine-readable index statistics")

	// Ask Commands
	queryCmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Answer a natural-language question about the code",
		Args:  cobra.ExactArgs(1),
		RunE:  RunQuery,
	}
	addRepoFlag(queryCmd)

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions interactively",
		Args:  cobra.NoArgs,
		RunE:  RunChat,
	}
	addRepoFlag(chatCmd)

	// Inspect Commands
	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the compact code tree",
		Args:  cobra.NoArgs,
		RunE:  RunTree,
	}
	addRepoFlag(treeCmd)
	treeCmd.Flags().IntP("depth", "d", 3, "Maximum tree depth")

	findCmd := &cobra.Command{
		Use:   "find <symbol>",
		Short: "Find functions, classes and imports matching a symbol",
		Args:  cobra.ExactArgs(1),
		RunE:  RunFind,
	}
	addRepoFlag(findCmd)
	findCmd.Flags().Bool("json", false, "Print machine-readable references")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show statistics for the indexed repository",
		Args:  cobra.NoArgs,
		RunE:  RunStats,
	}
	addRepoFlag(statsCmd)
	statsCmd.Flags().Bool("json", false, "Print machine-readable statistics")

	// Integration Commands
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve codetree tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE:  RunMCP,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "codetree %s\n", version)
		},
	}

	rootCmd.AddCommand(
		initCmd,
		indexCmd,
		queryCmd,
		chatCmd,
		treeCmd,
		findCmd,
		statsCmd,
		mcpCmd,
		versionCmd,
	)

	return rootCmd
}

// logger is replaced by the root command before any subcommand runs.
var logger logrus.FieldLogger = newLogger(false)

func newLogger(verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}
