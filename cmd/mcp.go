package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/crossref/internal/bridge"
	"github.com/koopa0/crossref/internal/config"
	"github.com/koopa0/crossref/internal/github"
	"github.com/koopa0/crossref/internal/log"
	"github.com/koopa0/crossref/internal/notion"
)

// runMCP initializes and starts the bridge MCP server on stdio transport.
// Any MCP client gets the same eight tools the ask command uses.
func runMCP() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateBridge(); err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	// Stdout carries the protocol, so logs must stay on stderr.
	logger := log.New(log.Config{Level: level, JSON: cfg.Log.JSON})
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting bridge server", "version", AppVersion, "repo", cfg.GitHub.Repo)

	notionClient, err := notion.New(notion.Config{
		Token:   cfg.Notion.Token,
		BaseURL: cfg.Notion.BaseURL,
		Version: cfg.Notion.Version,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("creating notion client: %w", err)
	}

	githubClient, err := github.New(github.Config{
		Token:   cfg.GitHub.Token,
		Repo:    cfg.GitHub.Repo,
		BaseURL: cfg.GitHub.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("creating github client: %w", err)
	}

	server, err := bridge.NewServer(bridge.Config{
		Notion:  notionClient,
		GitHub:  githubClient,
		Logger:  logger,
		Version: AppVersion,
	})
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}

	logger.Info("bridge server ready", "transport", "stdio")

	if err := server.Run(ctx, &mcpSdk.StdioTransport{}); err != nil {
		return fmt.Errorf("bridge server error: %w", err)
	}

	logger.Info("bridge server shut down gracefully")
	return nil
}
