package repository

import (
	"context"
	"sync"

	"coralbay/estate/internal/models"
)

// memoryMessageRepository keeps chat messages in send order.
type memoryMessageRepository struct {
	mu       sync.Mutex
	messages []models.Message
}

// NewMemoryMessageRepository creates an empty in-memory message store.
func NewMemoryMessageRepository() MessageRepository {
	return &memoryMessageRepository{}
}

func (r *memoryMessageRepository) Insert(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, *msg)
	return nil
}

func (r *memoryMessageRepository) FindByAgent(_ context.Context, agentID string) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []models.Message
	for _, msg := range r.messages {
		if msg.AgentID == agentID {
			result = append(result, msg)
		}
	}
	return result, nil
}
