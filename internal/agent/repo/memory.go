package repo

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/moneymitra/server/internal/agent/model"
)

// MemoryConversationRepository is the in-process store used when no Redis URL is
// configured. Idle conversations expire after ttl, checked lazily on access.
type MemoryConversationRepository struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	convs map[string]*memoryConversation
}

type memoryConversation struct {
	messages []*schema.Message
	touched  time.Time
}

func NewMemoryConversationRepository(ttl time.Duration) *MemoryConversationRepository {
	return &MemoryConversationRepository{
		ttl:   ttl,
		now:   time.Now,
		convs: map[string]*memoryConversation{},
	}
}

// live returns the conversation if present and not expired. Callers hold mu.
func (r *MemoryConversationRepository) live(conversationID string) *memoryConversation {
	c, ok := r.convs[conversationID]
	if !ok {
		return nil
	}
	if r.ttl > 0 && r.now().Sub(c.touched) > r.ttl {
		delete(r.convs, conversationID)
		return nil
	}
	return c
}

func (r *MemoryConversationRepository) AddMessage(_ context.Context, conversationID string, message *schema.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.live(conversationID)
	if c == nil {
		c = &memoryConversation{}
		r.convs[conversationID] = c
	}
	cp := *message
	c.messages = append(c.messages, &cp)
	c.touched = r.now()
	return nil
}

func (r *MemoryConversationRepository) LoadHistory(_ context.Context, conversationID string) (*model.ConversationHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := &model.ConversationHistory{ConversationID: conversationID, Messages: []*schema.Message{}}
	if c := r.live(conversationID); c != nil {
		for _, m := range c.messages {
			cp := *m
			out.Messages = append(out.Messages, &cp)
		}
	}
	return out, nil
}

func (r *MemoryConversationRepository) ClearHistory(_ context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.convs, conversationID)
	return nil
}

func (r *MemoryConversationRepository) MessageCount(_ context.Context, conversationID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c := r.live(conversationID); c != nil {
		return len(c.messages), nil
	}
	return 0, nil
}

var _ model.ConversationRepository = (*MemoryConversationRepository)(nil)
