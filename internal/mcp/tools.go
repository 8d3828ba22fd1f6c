package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codetree-dev/codetree/internal/index"
	"github.com/codetree-dev/codetree/internal/search"
	"github.com/codetree-dev/codetree/internal/workspace"
)

const (
	ToolIndex = "codetree_index"
	ToolQuery = "codetree_query"
	ToolTree  = "codetree_tree"
	ToolFind  = "codetree_find"
	ToolStats = "codetree_stats"

	defaultTreeDepth = 3
)

func repoPathOption() mcp.ToolOption {
	return mcp.WithString("repo_path",
		mcp.Required(),
		mcp.Description("Absolute path to the repository"))
}

// AddIndexTool registers codetree_index.
func AddIndexTool(s *Server) {
	tool := mcp.NewTool(
		ToolIndex,
		mcp.WithDescription("Index a code repository for querying. Must be called before other operations on a new repo."),
		repoPathOption(),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.mcp.AddTool(tool, s.handleIndex)
}

// AddQueryTool registers codetree_query.
func AddQueryTool(s *Server) {
	tool := mcp.NewTool(
		ToolQuery,
		mcp.WithDescription("Ask a natural language question about a code repository. The repository is indexed first if needed."),
		repoPathOption(),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Natural language question about the code")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.mcp.AddTool(tool, s.handleQuery)
}

// AddTreeTool registers codetree_tree.
func AddTreeTool(s *Server) {
	tool := mcp.NewTool(
		ToolTree,
		mcp.WithDescription("Show the hierarchical structure of a code repository."),
		repoPathOption(),
		mcp.WithNumber("max_depth",
			mcp.Description("Maximum depth to display (default: 3)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.mcp.AddTool(tool, s.handleTree)
}

// AddFindTool registers codetree_find.
func AddFindTool(s *Server) {
	tool := mcp.NewTool(
		ToolFind,
		mcp.WithDescription("Find all references to a symbol (function, class or import) in the codebase."),
		repoPathOption(),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Symbol name to search for")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.mcp.AddTool(tool, s.handleFind)
}

// AddStatsTool registers codetree_stats.
func AddStatsTool(s *Server) {
	tool := mcp.NewTool(
		ToolStats,
		mcp.WithDescription("Get statistics about an indexed repository."),
		repoPathOption(),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.mcp.AddTool(tool, s.handleStats)
}

// withWorkspace parses repo_path, opens its workspace and, when build is
// set, makes sure an index exists before calling fn.
func (s *Server) withWorkspace(ctx context.Context, request mcp.CallToolRequest, build bool,
	fn func(ws *workspace.Workspace, args map[string]interface{}) (string, error)) (*mcp.CallToolResult, error) {
	args, err := argumentsOf(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	repoPath, err := parseStringArg(args, "repo_path", true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ws, err := s.getWorkspace(repoPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if build {
		if _, err := ws.EnsureIndex(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("indexing failed: %v", err)), nil
		}
	}

	text, err := fn(ws, args)
	if err != nil {
		s.logger.WithError(err).WithField("tool", request.Params.Name).Debug("tool call failed")
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withWorkspace(ctx, request, false, func(ws *workspace.Workspace, args map[string]interface{}) (string, error) {
		idx, err := ws.BuildIndex(ctx)
		if err != nil {
			return "", fmt.Errorf("indexing failed: %w", err)
		}
		stats := idx.Stats()
		return fmt.Sprintf("Indexed repository: %s\n\n- Files: %d\n- Lines: %s\n- Languages: %s",
			ws.Root(), stats.TotalFiles, index.FormatCount(stats.TotalLines), languageNames(stats)), nil
	})
}

func (s *Server) handleQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withWorkspace(ctx, request, true, func(ws *workspace.Workspace, args map[string]interface{}) (string, error) {
		question, err := parseStringArg(args, "question", true)
		if err != nil {
			return "", err
		}
		return ws.Query(ctx, question)
	})
}

func (s *Server) handleTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withWorkspace(ctx, request, true, func(ws *workspace.Workspace, args map[string]interface{}) (string, error) {
		depth := parseIntArg(args, "max_depth", defaultTreeDepth)
		if depth < 0 {
			return "", fmt.Errorf("max_depth must be >= 0")
		}
		tree, err := ws.RenderTree(depth)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Code Tree: %s\n\n%s", filepath.Base(ws.Root()), tree), nil
	})
}

func (s *Server) handleFind(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withWorkspace(ctx, request, true, func(ws *workspace.Workspace, args map[string]interface{}) (string, error) {
		symbol, err := parseStringArg(args, "symbol", true)
		if err != nil {
			return "", err
		}
		refs, err := ws.FindSymbol(symbol)
		if err != nil {
			return "", err
		}
		return formatReferences(symbol, refs), nil
	})
}

func (s *Server) handleStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.withWorkspace(ctx, request, true, func(ws *workspace.Workspace, args map[string]interface{}) (string, error) {
		stats, err := ws.Stats()
		if err != nil {
			return "", err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Repository Statistics\n\nPath: %s\nFiles: %d\nLines: %s\n\nLanguages:",
			stats.RepoPath, stats.TotalFiles, index.FormatCount(stats.TotalLines))
		for _, lc := range stats.SortedLanguages() {
			fmt.Fprintf(&b, "\n  - %s: %d files", lc.Language, lc.Files)
		}
		return b.String(), nil
	})
}

func formatReferences(symbol string, refs []search.Reference) string {
	if len(refs) == 0 {
		return fmt.Sprintf("No references found for '%s'", symbol)
	}
	lines := []string{fmt.Sprintf("Found %d references to '%s':\n", len(refs), symbol)}
	for _, ref := range refs {
		if ref.Kind == search.KindImport {
			lines = append(lines, fmt.Sprintf("  [import]   %s: %s", ref.File, ref.Statement))
			continue
		}
		location := ref.File
		if ref.Line > 0 {
			location += ":" + strconv.Itoa(ref.Line)
		}
		lines = append(lines, fmt.Sprintf("  [%-8s] %s → %s", ref.Kind, location, ref.Name))
	}
	return strings.Join(lines, "\n")
}

func languageNames(stats index.Stats) string {
	counts := stats.SortedLanguages()
	names := make([]string, 0, len(counts))
	for _, lc := range counts {
		names = append(names, lc.Language)
	}
	return strings.Join(names, ", ")
}
