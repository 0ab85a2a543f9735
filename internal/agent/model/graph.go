package model

import (
	"github.com/cloudwego/eino/schema"
)

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
type AppState struct {
	ConversationID       string
	History              []*schema.Message // mutated only inside Eino state handlers
	ToolCallCount        int               // tool-executor rounds in this query
	ToolCallLimitReached bool
	ToolCallIDSeq        int // local sequence to synthesize tool_call_id when provider omits

	// Accumulated total LLM cost (USD) across model invocations for this query
	TotalCostUSD float64
}

// QueryInput represents the input for processing user queries.
type QueryInput struct {
	ConversationID string `json:"conversationId"`
	Query          string `json:"message"`
}

// ToolEvent is one rendered tool call or tool result shown alongside a reply.
type ToolEvent struct {
	ToolName string `json:"toolName"`
	Phase    string `json:"phase"`
	Label    string `json:"label"`
	Icon     string `json:"icon"`
	Args     string `json:"args,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

const (
	PhaseCall   = "call"
	PhaseResult = "result"
)

// Reply is the outcome of one user turn.
type Reply struct {
	ConversationID string      `json:"conversationId"`
	Content        string      `json:"content"`
	ToolEvents     []ToolEvent `json:"toolEvents"`
	CostUSD        float64     `json:"costUsd"`
}
