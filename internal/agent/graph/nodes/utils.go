package nodes

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/moneymitra/server/internal/agent/model"
)

const DefaultMaxToolCalls = 6

// normalizeMaxToolCalls returns a sane default when the provided value is invalid.
func normalizeMaxToolCalls(n int) int {
	if n <= 0 {
		return DefaultMaxToolCalls
	}
	return n
}

// checkAndMarkToolLimit evaluates whether another tool round would exceed the
// limit and, if so, marks the state accordingly. Returns true when marked now.
func checkAndMarkToolLimit(state *model.AppState, max int) bool {
	max = normalizeMaxToolCalls(max)
	if !state.ToolCallLimitReached && state.ToolCallCount >= max {
		state.ToolCallLimitReached = true
		return true
	}
	return false
}

// incrementToolCallAndCheck increments the count and marks the state if it
// exceeds the limit after incrementing. Returns true when exceeded.
func incrementToolCallAndCheck(state *model.AppState, max int) bool {
	max = normalizeMaxToolCalls(max)
	state.ToolCallCount++
	if state.ToolCallCount > max {
		state.ToolCallLimitReached = true
		return true
	}
	return false
}

// fillToolCallIDs gives tool results without a tool_call_id the id of the
// matching call from the latest assistant message, in order.
func fillToolCallIDs(in, history []*schema.Message) {
	var calls []schema.ToolCall
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg != nil && msg.Role == schema.Assistant && len(msg.ToolCalls) > 0 {
			calls = msg.ToolCalls
			break
		}
	}
	if len(calls) == 0 {
		return
	}

	next := 0
	for _, m := range in {
		if m == nil || m.Role != schema.Tool {
			continue
		}
		if strings.TrimSpace(m.ToolCallID) == "" && next < len(calls) {
			m.ToolCallID = calls[next].ID
		}
		next++
	}
}
