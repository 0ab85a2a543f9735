package conversations

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/moneymitra/server/internal/agent/model"
)

type MessagesManager struct {
	conversationRepo model.ConversationRepository
	maxTurns         int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		maxTurns:         config.MaxTurns,
	}
}

// BuildResponseContext stores the user's message and returns the system prompt
// followed by the most recent turns of the transcript, ending with that message.
func (cm *MessagesManager) BuildResponseContext(ctx context.Context, conversationID, query, systemPrompt string) ([]*schema.Message, error) {
	if err := cm.conversationRepo.AddMessage(ctx, conversationID, schema.UserMessage(query)); err != nil {
		return nil, err
	}

	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
	}
	messages = append(messages, startAtUser(trimTail(history.Messages, cm.maxTurns))...)

	return messages, nil
}

func (cm *MessagesManager) SaveResponse(ctx context.Context, conversationID string, content string) error {
	assistantMsg := schema.AssistantMessage(content, nil)
	return cm.conversationRepo.AddMessage(ctx, conversationID, assistantMsg)
}

func (cm *MessagesManager) Clear(ctx context.Context, conversationID string) error {
	return cm.conversationRepo.ClearHistory(ctx, conversationID)
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}

// startAtUser drops nil entries and any assistant turns left at the head by trimming.
func startAtUser(messages []*schema.Message) []*schema.Message {
	out := messages[:0]
	for _, m := range messages {
		if m == nil {
			continue
		}
		if len(out) == 0 && m.Role != schema.User {
			continue
		}
		out = append(out, m)
	}
	return out
}
