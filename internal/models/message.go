package models

import (
	"time"

	"coralbay/estate/internal/utils"
)

// Message is one entry in an agent's conversation thread.
// Threads are keyed by agent ID; managers share the other side.
type Message struct {
	ID         utils.SixID `bson:"_id,omitempty" json:"id,omitempty"`
	AgentID    string      `bson:"agent_id" json:"agent_id"`
	AuthorID   string      `bson:"author_id" json:"author_id"`
	AuthorName string      `bson:"author_name" json:"author_name"`
	AuthorRole Role        `bson:"author_role" json:"author_role"`
	Body       string      `bson:"body" json:"body"`
	System     bool        `bson:"system,omitempty" json:"system,omitempty"`
	SentAt     time.Time   `bson:"sent_at" json:"sent_at"`
}
