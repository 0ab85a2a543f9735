package observers

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/moneymitra/server/internal/agent/model"
	"github.com/moneymitra/server/internal/display"
)

// EventCollector records the rendered tool calls and results of one query.
// A nil collector ignores everything.
type EventCollector struct {
	mu     sync.Mutex
	events []model.ToolEvent
}

func NewEventCollector() *EventCollector {
	return &EventCollector{}
}

// Events returns a copy of what has been recorded so far.
func (c *EventCollector) Events() []model.ToolEvent {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ToolEvent, len(c.events))
	copy(out, c.events)
	return out
}

func (c *EventCollector) recordCall(toolName, args string) {
	if c == nil {
		return
	}
	r := display.RenderCall(display.Part{ToolName: toolName, Input: rawJSON(args)})
	c.add(toEvent(r, model.PhaseCall))
}

func (c *EventCollector) recordResult(toolName, args, response string) {
	if c == nil {
		return
	}
	r := display.RenderResult(display.Part{
		ToolName: toolName,
		Input:    rawJSON(args),
		Output:   rawJSON(response),
	})
	c.add(toEvent(r, model.PhaseResult))
}

func (c *EventCollector) add(e model.ToolEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func toEvent(r display.Rendered, phase string) model.ToolEvent {
	return model.ToolEvent{
		ToolName: r.ToolName,
		Phase:    phase,
		Label:    r.Label,
		Icon:     string(r.Icon),
		Args:     r.Args,
		Summary:  r.Summary,
	}
}

// rawJSON hands valid JSON to the display package untouched; anything else is
// treated as absent.
func rawJSON(s string) any {
	s = strings.TrimSpace(s)
	if s == "" || !json.Valid([]byte(s)) {
		return nil
	}
	return json.RawMessage(s)
}
