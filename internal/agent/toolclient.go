package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/crossref/internal/log"
)

// Envelope is one tool invocation's decoded result. When the tool replied
// with JSON, Raw holds that payload verbatim and is re-injected untouched;
// otherwise the envelope is synthesized from Error or Content.
type Envelope struct {
	Success bool
	Error   string
	Content string
	Raw     json.RawMessage
}

type syntheticEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Content string `json:"content,omitempty"`
}

// failedEnvelope synthesizes a failed result the model can read and adapt
// to.
func failedEnvelope(reason string) Envelope {
	return Envelope{Success: false, Error: reason}
}

// Payload renders the envelope as the tool message content: the verbatim
// JSON when the tool sent JSON, a synthesized envelope otherwise.
func (e Envelope) Payload() string {
	if len(e.Raw) > 0 {
		return string(e.Raw)
	}
	b, _ := json.MarshalIndent(syntheticEnvelope{
		Success: e.Success,
		Error:   e.Error,
		Content: e.Content,
	}, "", "  ")
	return string(b)
}

// Invoker dispatches one named tool call and returns its envelope. An error
// return means the connection itself is gone; everything a tool could get
// wrong comes back inside the envelope instead.
type Invoker interface {
	Invoke(ctx context.Context, name string, args map[string]any) (Envelope, error)
}

// ToolClient owns the MCP session for one run: dialed once before the loop,
// closed once after it.
type ToolClient struct {
	session *mcp.ClientSession
	logger  log.Logger
}

// DialOptions names the client during the MCP handshake.
type DialOptions struct {
	Name    string
	Version string
	Logger  log.Logger
}

// Dial connects to the tool server over the transport, performs the
// handshake, and discovers its tools. Handshake or discovery failure leaves
// nothing open.
func Dial(ctx context.Context, transport mcp.Transport, opts DialOptions) (*ToolClient, *Registry, error) {
	if opts.Name == "" {
		opts.Name = "crossref"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    opts.Name,
		Version: opts.Version,
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to tool server: %w", err)
	}

	list, err := session.ListTools(ctx, nil)
	if err != nil {
		_ = session.Close()
		return nil, nil, fmt.Errorf("listing tools: %w", err)
	}

	descs := make([]Descriptor, 0, len(list.Tools))
	for _, t := range list.Tools {
		descs = append(descs, Descriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}

	registry, err := NewRegistry(descs)
	if err != nil {
		_ = session.Close()
		return nil, nil, fmt.Errorf("building tool registry: %w", err)
	}

	opts.Logger.Info("connected to tool server", "tools", registry.Len())
	return &ToolClient{session: session, logger: opts.Logger}, registry, nil
}

// Invoke calls one remote tool. Tool-level failures of any kind degrade to
// failed envelopes so the run can continue; only a dead context surfaces as
// an error, because then the session is unusable anyway.
func (tc *ToolClient) Invoke(ctx context.Context, name string, args map[string]any) (Envelope, error) {
	result, err := tc.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Envelope{}, fmt.Errorf("calling tool %s: %w", name, err)
		}
		tc.logger.Warn("tool call failed", "tool", name, "error", err)
		return failedEnvelope(err.Error()), nil
	}

	text := firstText(result)
	if text == "" {
		return failedEnvelope("no content returned"), nil
	}

	var probe struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		// Plain-text tools still count as successes.
		return Envelope{Success: true, Content: text}, nil
	}

	return Envelope{
		Success: probe.Success,
		Error:   probe.Error,
		Raw:     json.RawMessage(text),
	}, nil
}

// Close releases the session.
func (tc *ToolClient) Close() error {
	return tc.session.Close()
}

func firstText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if text, ok := result.Content[0].(*mcp.TextContent); ok {
		return text.Text
	}
	return ""
}
