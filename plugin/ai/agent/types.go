package agent

import (
	"encoding/json"
	"fmt"
)

// Message is one turn of the conversation supplied by the client.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	ID      string `json:"id,omitempty"`
}

// Event is one streamed step of an agent run.
type Event struct {
	Type       string          `json:"type"`
	MessageID  string          `json:"message_id,omitempty"`
	Content    string          `json:"content,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
	ToolName   string          `json:"tool_name,omitempty"`
	Args       json.RawMessage `json:"args,omitempty"`
	Result     string          `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// EventCallback is the callback function type for agent events.
// Returning an error aborts the run.
type EventCallback func(event *Event) error

// Event types, in the order a client sees them.
const (
	EventTypeTextStart     = "text_start"
	EventTypeTextDelta     = "text_delta"
	EventTypeTextEnd       = "text_end"
	EventTypeToolCallStart = "tool_call_start"
	EventTypeToolCallArgs  = "tool_call_args"
	EventTypeToolCallEnd   = "tool_call_end"
	EventTypeToolResult    = "tool_result"
	EventTypeError         = "error"
	EventTypeDone          = "done"
)

// AgentError represents an error from an agent run.
type AgentError struct {
	AgentName string // Name of the agent that produced the error
	Operation string // Operation being performed when error occurred
	Err       error  // Underlying error
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("agent %s: %s failed: %v", e.AgentName, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *AgentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAgentError creates a new AgentError.
func NewAgentError(agentName, operation string, err error) *AgentError {
	return &AgentError{
		AgentName: agentName,
		Operation: operation,
		Err:       err,
	}
}
