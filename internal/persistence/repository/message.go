package repository

import (
	"context"
	"errors"
	"time"

	"github.com/stardeck/logbook/internal/domain"
	"github.com/stardeck/logbook/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type messageRepository struct {
	db *mongo.Database
}

func NewEntityChangedMessageRepository(database *mongo.Database) domain.EntityChangedMessageRepository {
	return &messageRepository{
		db: database,
	}
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*domain.EntityChangedMessage, error) {
	collection := r.db.Collection(db.EntityChangedMessagesCollection)

	var msg domain.EntityChangedMessage
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}

	return &msg, nil
}

func (r *messageRepository) GetPendingByReceiver(ctx context.Context, receiverUserID string) ([]domain.EntityChangedMessage, error) {
	collection := r.db.Collection(db.EntityChangedMessagesCollection)

	filter := bson.M{
		"receiver_user_id": receiverUserID,
		"status":           domain.MessagePending,
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []domain.EntityChangedMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *messageRepository) CreateAll(ctx context.Context, messages []domain.EntityChangedMessage) error {
	if len(messages) == 0 {
		return nil
	}

	collection := r.db.Collection(db.EntityChangedMessagesCollection)

	docs := make([]any, 0, len(messages))
	for i := range messages {
		docs = append(docs, messages[i])
	}

	_, err := collection.InsertMany(ctx, docs)
	return err
}

// Acknowledge is a single-document update, atomic with respect to its own
// row. It does not filter on status, re-acknowledging succeeds and
// refreshes the timestamp.
func (r *messageRepository) Acknowledge(ctx context.Context, id string, at time.Time) (*domain.EntityChangedMessage, error) {
	collection := r.db.Collection(db.EntityChangedMessagesCollection)

	update := bson.M{"$set": bson.M{
		"status":          domain.MessageAcknowledged,
		"acknowledged_at": at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var msg domain.EntityChangedMessage
	err := collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}

	return &msg, nil
}

func (r *messageRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.EntityChangedMessagesCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "receiver_user_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "entity_id", Value: 1},
				{Key: "entity_type", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "changed_by_user_id", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
