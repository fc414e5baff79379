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

type logEntryRepository struct {
	db *mongo.Database
}

func NewLogEntryRepository(database *mongo.Database) domain.LogEntryRepository {
	return &logEntryRepository{
		db: database,
	}
}

func (r *logEntryRepository) GetByID(ctx context.Context, id string) (*domain.LogEntry, error) {
	collection := r.db.Collection(db.LogEntriesCollection)

	var entry domain.LogEntry
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLogEntryNotFound
		}
		return nil, err
	}

	return &entry, nil
}

func (r *logEntryRepository) GetByIDAndAuthor(ctx context.Context, id, authorID string) (*domain.LogEntry, error) {
	collection := r.db.Collection(db.LogEntriesCollection)

	var entry domain.LogEntry
	err := collection.FindOne(ctx, bson.M{"_id": id, "author_id": authorID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLogEntryNotFound
		}
		return nil, err
	}

	return &entry, nil
}

func (r *logEntryRepository) GetByAuthor(ctx context.Context, q domain.LogEntryQuery) ([]domain.LogEntry, error) {
	collection := r.db.Collection(db.LogEntriesCollection)

	filter := authorFilter(q.AuthorID, q.Search)

	direction := -1
	if q.OrderAscending {
		direction = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: orderField(q.OrderBy), Value: direction}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.LogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *logEntryRepository) CountByAuthor(ctx context.Context, authorID, search string) (int64, error) {
	collection := r.db.Collection(db.LogEntriesCollection)
	return collection.CountDocuments(ctx, authorFilter(authorID, search))
}

func (r *logEntryRepository) Upsert(ctx context.Context, entry *domain.LogEntry) error {
	collection := r.db.Collection(db.LogEntriesCollection)

	opts := options.Replace().SetUpsert(true)
	_, err := collection.ReplaceOne(ctx, bson.M{"_id": entry.ID}, entry, opts)
	return err
}

// ClaimForProcessing is the status guard: a single conditional update so two
// concurrent pipeline triggers cannot both claim the same entry.
func (r *logEntryRepository) ClaimForProcessing(ctx context.Context, id string, expected, next domain.ProcessingStatus) error {
	collection := r.db.Collection(db.LogEntriesCollection)

	res, err := collection.UpdateOne(ctx,
		bson.M{"_id": id, "processing_status": expected},
		claimUpdate(next),
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrStatusConflict
	}

	return nil
}

// claimUpdate stamps updated_at alongside the status so a claimed entry
// reads like every other persisted transition.
func claimUpdate(next domain.ProcessingStatus) bson.M {
	return bson.M{"$set": bson.M{
		"processing_status": next,
		"updated_at":        time.Now().UTC(),
	}}
}

func (r *logEntryRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.LogEntriesCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "author_id", Value: 1},
				{Key: "updated_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "author_id", Value: 1},
				{Key: "processing_status", Value: 1},
			},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func authorFilter(authorID, search string) bson.M {
	filter := bson.M{"author_id": authorID}
	if search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": search, "$options": "i"}},
			{"transcript": bson.M{"$regex": search, "$options": "i"}},
			{"summary_text": bson.M{"$regex": search, "$options": "i"}},
		}
	}
	return filter
}

func orderField(orderBy domain.OrderBy) string {
	switch orderBy {
	case domain.OrderByCreatedAt:
		return "created_at"
	case domain.OrderByTitle:
		return "title"
	default:
		return "updated_at"
	}
}
