// Package agent drives the cross-referencing loop: ask the completion
// service for the next turn, dispatch whatever tools it requests against
// the bridge, feed the results back, and repeat until it answers in plain
// text or the iteration budget runs out. One Engine run owns one
// conversation, one provenance set, and one tool-server session.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/koopa0/crossref/internal/log"
)

var tracer = otel.Tracer("github.com/koopa0/crossref/internal/agent")

const (
	// noResponseSentinel stands in for a final assistant turn with no text.
	noResponseSentinel = "No response generated."

	// exhaustedSentinel is the degraded answer when the budget runs out
	// before the model stops calling tools.
	exhaustedSentinel = "maximum iterations reached, analysis may be incomplete"
)

// Engine alternates completion calls with tool dispatches. Tool-level
// problems are folded back into the conversation so the model can adapt;
// only an unreachable completion service or a dead connection aborts a run.
type Engine struct {
	completer Completer
	tools     Invoker
	registry  *Registry
	repo      string
	logger    log.Logger
}

// EngineConfig wires an Engine. Completer, Tools, and Registry are
// required; Repo names the repository in the system instruction.
type EngineConfig struct {
	Completer Completer
	Tools     Invoker
	Registry  *Registry
	Repo      string
	Logger    log.Logger
}

// NewEngine creates an engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	if cfg.Tools == nil {
		return nil, fmt.Errorf("tool invoker is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Engine{
		completer: cfg.Completer,
		tools:     cfg.Tools,
		registry:  cfg.Registry,
		repo:      cfg.Repo,
		logger:    cfg.Logger,
	}, nil
}

// Run answers one question. It makes at most maxIterations completion
// calls; between them it dispatches the requested tools one at a time, in
// the order the model emitted them. The returned answer already carries the
// citation footer when one applies.
func (e *Engine) Run(ctx context.Context, query string, maxIterations int) (string, error) {
	if maxIterations < 1 {
		return "", fmt.Errorf("max iterations must be positive, got %d", maxIterations)
	}

	runID := uuid.NewString()
	logger := e.logger.With("run_id", runID)

	ctx, span := tracer.Start(ctx, "agent.run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("run.max_iterations", maxIterations),
	))
	defer span.End()

	conv := NewConversation(SystemPrompt(e.repo), query)
	src := newSources()
	tools := e.registry.OpenAITools()

	logger.Info("run started", "tools", e.registry.Len())

	for iteration := 1; iteration <= maxIterations; iteration++ {
		answer, done, err := e.iterate(ctx, iteration, conv, src, tools, logger)
		if err != nil {
			span.RecordError(err)
			return "", err
		}
		if done {
			logger.Info("run finished", "iterations", iteration)
			return answer, nil
		}
	}

	logger.Warn("iteration budget exhausted", "max_iterations", maxIterations)
	return exhaustedSentinel, nil
}

// iterate performs one completion call and, if the model requested tools,
// dispatches them all. done reports that the model answered in plain text.
func (e *Engine) iterate(ctx context.Context, iteration int, conv *Conversation, src *sources, tools []openai.Tool, logger log.Logger) (answer string, done bool, err error) {
	ctx, span := tracer.Start(ctx, "agent.iteration", trace.WithAttributes(
		attribute.Int("iteration", iteration),
	))
	defer span.End()

	msg, err := e.completer.Complete(ctx, conv.Messages(), tools)
	if err != nil {
		return "", false, fmt.Errorf("iteration %d: %w", iteration, err)
	}
	conv.Append(msg)

	if len(msg.ToolCalls) == 0 {
		answer := strings.TrimSpace(msg.Content)
		if answer == "" {
			answer = noResponseSentinel
		}
		return answer + src.footer(answer), true, nil
	}

	for _, call := range msg.ToolCalls {
		payload, err := e.dispatch(ctx, call, src, logger)
		if err != nil {
			return "", false, err
		}
		conv.AppendToolResult(call.ID, payload)
	}

	return "", false, nil
}

// dispatch resolves one tool call into a payload for the transcript.
// Undecodable arguments and unknown names degrade to failed envelopes
// without touching the connection; an invocation error means the connection
// is gone and aborts.
func (e *Engine) dispatch(ctx context.Context, call openai.ToolCall, src *sources, logger log.Logger) (string, error) {
	name := call.Function.Name

	ctx, span := tracer.Start(ctx, "agent.dispatch", trace.WithAttributes(
		attribute.String("tool.name", name),
	))
	defer span.End()

	var env Envelope
	args, decodeErr := decodeArguments(call.Function.Arguments)
	switch {
	case decodeErr != nil:
		logger.Warn("undecodable tool arguments", "tool", name, "error", decodeErr)
		env = failedEnvelope(fmt.Sprintf("invalid tool arguments: %v", decodeErr))
	case !e.known(name):
		logger.Warn("model requested unknown tool", "tool", name)
		env = failedEnvelope("unknown tool: " + name)
	default:
		var err error
		env, err = e.tools.Invoke(ctx, name, args)
		if err != nil {
			span.RecordError(err)
			return "", fmt.Errorf("dispatching %s: %w", name, err)
		}
	}

	src.record(name, args, env)
	logger.Debug("tool dispatched", "tool", name, "success", env.Success)

	return env.Payload(), nil
}

func (e *Engine) known(name string) bool {
	_, ok := e.registry.Lookup(name)
	return ok
}

// decodeArguments parses the model's argument text. An empty string means
// no arguments, not an error.
func decodeArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	return args, nil
}
