package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// ConversationRepository stores the session transcript of one chat. Only user
// messages and final assistant replies are stored; tool traffic stays in graph state.
type ConversationRepository interface {
	// AddMessage appends to the transcript and refreshes its TTL.
	AddMessage(ctx context.Context, conversationID string, message *schema.Message) error

	// LoadHistory returns the transcript oldest first. Unknown ids yield no messages.
	LoadHistory(ctx context.Context, conversationID string) (*ConversationHistory, error)

	ClearHistory(ctx context.Context, conversationID string) error

	MessageCount(ctx context.Context, conversationID string) (int, error)
}

type ConversationHistory struct {
	ConversationID string
	Messages       []*schema.Message
}
