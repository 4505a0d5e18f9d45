package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coralbay/estate/internal/models"
	"coralbay/estate/internal/repository"
	"coralbay/estate/internal/utils"
)

// IChatService defines the interface for agent/manager conversations.
// Each agent has one thread, keyed by agent ID; all managers share it.
type IChatService interface {
	PostMessage(ctx context.Context, agentID string, author models.Actor, body string) (*models.Message, error)
	PostSystemMessage(ctx context.Context, agentID string, body string) (*models.Message, error)
	ListConversation(ctx context.Context, agentID string) ([]models.Message, error)
}

// chatService implements IChatService.
type chatService struct {
	repo repository.MessageRepository
}

// NewChatService creates a new ChatService.
func NewChatService(repo repository.MessageRepository) IChatService {
	return &chatService{repo: repo}
}

// PostMessage appends a message to an agent's thread. Agents may only write
// to their own thread; managers may write to any.
func (s *chatService) PostMessage(ctx context.Context, agentID string, author models.Actor, body string) (*models.Message, error) {
	if author.Role == models.RoleAgent && author.ID != agentID {
		return nil, ErrNotConversationMember
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &ValidationError{Field: "body", Reason: "must not be empty"}
	}

	msg := &models.Message{
		ID:         utils.NewSixID(),
		AgentID:    agentID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		AuthorRole: author.Role,
		Body:       body,
		SentAt:     time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to post message to thread of agent %s: %w", agentID, err)
	}
	return msg, nil
}

// PostSystemMessage appends a platform-authored notice, used for moderation
// decision updates.
func (s *chatService) PostSystemMessage(ctx context.Context, agentID string, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &ValidationError{Field: "body", Reason: "must not be empty"}
	}

	msg := &models.Message{
		ID:         utils.NewSixID(),
		AgentID:    agentID,
		AuthorID:   "system",
		AuthorName: "CoralBay",
		AuthorRole: models.RoleManager,
		Body:       body,
		System:     true,
		SentAt:     time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to post system message to thread of agent %s: %w", agentID, err)
	}
	return msg, nil
}

// ListConversation returns an agent's thread in send order.
func (s *chatService) ListConversation(ctx context.Context, agentID string) ([]models.Message, error) {
	return s.repo.FindByAgent(ctx, agentID)
}
