package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/crossref/internal/agent"
	"github.com/koopa0/crossref/internal/bridge"
	"github.com/koopa0/crossref/internal/config"
	"github.com/koopa0/crossref/internal/github"
	"github.com/koopa0/crossref/internal/log"
	"github.com/koopa0/crossref/internal/notion"
	"github.com/koopa0/crossref/internal/observability"
)

// traceFlushTimeout bounds the final span flush so a dead collector cannot
// hold the process open.
const traceFlushTimeout = 5 * time.Second

// runAsk answers one question and exits. The agent alternates between the
// completion service and the bridge tools until it has an answer or the
// iteration budget runs out.
func runAsk(args []string) error {
	question, maxIters, err := parseAskArgs(args)
	if err != nil {
		return err
	}
	if question == "" {
		return fmt.Errorf("usage: crossref ask [--max-iters N] <question>")
	}
	if maxIters != 0 && (maxIters < 1 || maxIters > config.MaxAllowedIterations) {
		return fmt.Errorf("--max-iters must be between 1 and %d, got %d",
			config.MaxAllowedIterations, maxIters)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateAsk(); err != nil {
		return err
	}
	budget := cfg.Agent.MaxIterations
	if maxIters != 0 {
		budget = maxIters
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := log.New(log.Config{Level: level, JSON: cfg.Log.JSON})
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Telemetry.Environment,
	})
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), traceFlushTimeout)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("trace flush failed", "error", err)
		}
	}()

	transport, cleanup, err := bridgeTransport(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	tools, registry, err := agent.Dial(ctx, transport, agent.DialOptions{
		Name:    "crossref",
		Version: AppVersion,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("connecting to bridge: %w", err)
	}
	defer func() {
		if closeErr := tools.Close(); closeErr != nil {
			logger.Warn("closing tool connection", "error", closeErr)
		}
	}()

	completer, err := agent.NewOpenAICompleter(agent.CompleterConfig{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		BaseURL:     cfg.OpenAI.BaseURL,
		Temperature: cfg.OpenAI.Temperature,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating completion client: %w", err)
	}

	engine, err := agent.NewEngine(agent.EngineConfig{
		Completer: completer,
		Tools:     tools,
		Registry:  registry,
		Repo:      cfg.GitHub.Repo,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	answer, err := engine.Run(ctx, question, budget)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	fmt.Println(renderMarkdown(answer))
	return nil
}

// parseAskArgs splits the ask arguments into the question and an optional
// iteration override. maxIters is zero when --max-iters is absent; flags must
// come before the question.
func parseAskArgs(args []string) (question string, maxIters int, err error) {
	flags := flag.NewFlagSet("ask", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	iters := flags.Int("max-iters", 0, "cap on reasoning iterations for this run")
	if err := flags.Parse(args); err != nil {
		return "", 0, fmt.Errorf("usage: crossref ask [--max-iters N] <question>: %w", err)
	}
	return strings.TrimSpace(strings.Join(flags.Args(), " ")), *iters, nil
}

// bridgeTransport connects the agent to its tools: a subprocess speaking
// stdio when agent.bridge_command is configured, the in-process bridge
// otherwise. The returned cleanup releases whatever the transport holds.
func bridgeTransport(ctx context.Context, cfg *config.Config, logger log.Logger) (mcpSdk.Transport, func(), error) {
	if command := cfg.Agent.BridgeCommand; command != "" {
		parts := strings.Fields(command)
		proc := exec.CommandContext(ctx, parts[0], parts[1:]...)
		proc.Stderr = os.Stderr // bridge logs stay visible
		logger.Debug("starting bridge subprocess", "command", command)
		return &mcpSdk.CommandTransport{Command: proc}, func() {}, nil
	}

	notionClient, err := notion.New(notion.Config{
		Token:   cfg.Notion.Token,
		BaseURL: cfg.Notion.BaseURL,
		Version: cfg.Notion.Version,
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating notion client: %w", err)
	}

	githubClient, err := github.New(github.Config{
		Token:   cfg.GitHub.Token,
		Repo:    cfg.GitHub.Repo,
		BaseURL: cfg.GitHub.BaseURL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating github client: %w", err)
	}

	server, err := bridge.NewServer(bridge.Config{
		Notion:  notionClient,
		GitHub:  githubClient,
		Logger:  logger,
		Version: AppVersion,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating bridge: %w", err)
	}

	clientTransport, serverTransport := mcpSdk.NewInMemoryTransports()
	session, err := server.Connect(ctx, serverTransport)
	if err != nil {
		return nil, nil, fmt.Errorf("starting in-process bridge: %w", err)
	}

	logger.Debug("bridge running in-process")
	return clientTransport, func() { _ = session.Close() }, nil
}
