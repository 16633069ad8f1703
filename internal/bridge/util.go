package bridge

import (
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// failureEnvelope is the uniform shape of every failed tool reply.
type failureEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// success wraps a tool's envelope as the single indented-JSON text item of
// a call result. All tool data goes through here: clients parse the text,
// not structured content.
func success(env any) *mcp.CallToolResult {
	return textResult(env, false)
}

// failure builds a failed envelope carrying the reason, mirrored onto the
// protocol-level error flag.
func failure(msg string) *mcp.CallToolResult {
	return textResult(failureEnvelope{Success: false, Error: msg}, true)
}

func textResult(env any, isError bool) *mcp.CallToolResult {
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: "marshal error"}},
			IsError: true,
		}
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
		IsError: isError,
	}
}
