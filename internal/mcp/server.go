package mcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"github.com/maypok86/otter"
	"github.com/sirupsen/logrus"

	"github.com/codetree-dev/codetree/internal/workspace"
)

const (
	serverName = "codetree-mcp"

	// workspaceCacheSize bounds how many repositories stay loaded at once.
	workspaceCacheSize = 64
)

// WorkspaceFactory opens the workspace for an absolute repository path.
type WorkspaceFactory func(repoPath string) (*workspace.Workspace, error)

// Server exposes codetree operations as MCP tools. Workspaces are created on
// first use per repository and cached.
type Server struct {
	mcp        *server.MCPServer
	workspaces otter.Cache[string, *workspace.Workspace]
	open       WorkspaceFactory
	logger     logrus.FieldLogger

	// mu serializes workspace creation so concurrent calls share one
	// instance per repository.
	mu sync.Mutex
}

// NewServer creates an MCP server with all codetree tools registered.
func NewServer(version string, open WorkspaceFactory, logger logrus.FieldLogger) (*Server, error) {
	if open == nil {
		return nil, fmt.Errorf("workspace factory is required")
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}

	cache, err := otter.MustBuilder[string, *workspace.Workspace](workspaceCacheSize).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace cache: %w", err)
	}

	s := &Server{
		mcp: server.NewMCPServer(
			serverName,
			version,
			server.WithToolCapabilities(true),
		),
		workspaces: cache,
		open:       open,
		logger:     logger,
	}

	AddIndexTool(s)
	AddQueryTool(s)
	AddTreeTool(s)
	AddFindTool(s)
	AddStatsTool(s)

	return s, nil
}

// Serve answers MCP requests read from in until in is closed or ctx is done.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	s.logger.Info("serving MCP on stdio")
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// Close releases cached workspaces.
func (s *Server) Close() {
	s.workspaces.Close()
}

func (s *Server) getWorkspace(repoPath string) (*workspace.Workspace, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", repoPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("repository %s: %w", repoPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository %s is not a directory", repoPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.workspaces.Get(abs); ok {
		return ws, nil
	}
	ws, err := s.open(abs)
	if err != nil {
		return nil, err
	}
	s.workspaces.Set(abs, ws)
	s.logger.WithField("repo", abs).Debug("opened workspace")
	return ws, nil
}
