// Package bridge exposes the Notion workspace and the GitHub repository as
// one MCP tool surface. Every tool replies with a single JSON text item
// carrying a success envelope; upstream failures become failed envelopes,
// never protocol errors, so a caller can keep going after a bad call.
package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/crossref/internal/github"
	"github.com/koopa0/crossref/internal/log"
	"github.com/koopa0/crossref/internal/notion"
)

// serverName identifies the bridge during the MCP handshake.
const serverName = "notion-git-bridge"

// Server wraps the MCP SDK server around the two upstream clients.
type Server struct {
	mcpServer *mcp.Server
	notion    *notion.Client
	github    *github.Client
	logger    log.Logger
}

// Config holds bridge configuration. Both clients are required.
type Config struct {
	Notion  *notion.Client
	GitHub  *github.Client
	Logger  log.Logger
	Version string
}

// NewServer creates the bridge and registers its tools.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Notion == nil {
		return nil, fmt.Errorf("notion client is required")
	}
	if cfg.GitHub == nil {
		return nil, fmt.Errorf("github client is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: cfg.Version,
		}, nil),
		notion: cfg.Notion,
		github: cfg.GitHub,
		logger: cfg.Logger,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Run serves MCP on the given transport until the context ends or the
// transport closes. Blocking.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// Connect binds the server to one transport and returns the session,
// for in-process clients that hold both ends.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcpServer.Connect(ctx, transport, nil)
}

func (s *Server) registerTools() error {
	if err := s.registerGitHubTools(); err != nil {
		return fmt.Errorf("github tools: %w", err)
	}
	if err := s.registerNotionTools(); err != nil {
		return fmt.Errorf("notion tools: %w", err)
	}
	return nil
}
