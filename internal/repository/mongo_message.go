package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"coralbay/estate/internal/models"
)

const messagesCollection = "messages"

type mongoMessageRepository struct {
	db *mongo.Database
}

// NewMongoMessageRepository creates a message repository over db.
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &mongoMessageRepository{db: db}
}

func (r *mongoMessageRepository) Insert(ctx context.Context, msg *models.Message) error {
	_, err := r.db.Collection(messagesCollection).InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *mongoMessageRepository) FindByAgent(ctx context.Context, agentID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: 1}})

	cursor, err := r.db.Collection(messagesCollection).Find(ctx, bson.M{"agent_id": agentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer cursor.Close(ctx)

	var results []models.Message
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return results, nil
}
