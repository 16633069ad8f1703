package agent

import "github.com/sashabaranov/go-openai"

// Conversation is the append-only transcript of one run: system prompt,
// user query, then alternating assistant turns and tool results. Nothing is
// ever rewritten; the completion service sees the full history each call.
type Conversation struct {
	messages []openai.ChatCompletionMessage
}

// NewConversation seeds a transcript with the system instruction and the
// user's question.
func NewConversation(system, query string) *Conversation {
	return &Conversation{messages: []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: query},
	}}
}

// Append records an assistant message exactly as returned, tool calls and
// all.
func (c *Conversation) Append(msg openai.ChatCompletionMessage) {
	c.messages = append(c.messages, msg)
}

// AppendToolResult records one tool invocation's payload, keyed to the
// assistant tool call that requested it.
func (c *Conversation) AppendToolResult(callID, payload string) {
	c.messages = append(c.messages, openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    payload,
		ToolCallID: callID,
	})
}

// Messages returns a copy of the transcript for a completion request.
func (c *Conversation) Messages() []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len reports the transcript length.
func (c *Conversation) Len() int {
	return len(c.messages)
}
