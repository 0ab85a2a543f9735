package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// NewAllCallbacks aggregates all observer handlers (prompt, tool, model) into one
// callbacks.Handler. Tool events are recorded into collector when it is non-nil.
func NewAllCallbacks(collector *EventCollector) einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		Tool(newToolHandler(collector)).
		ChatModel(newModelHandler()).
		Prompt(newPromptHandler()).
		Handler()
}
