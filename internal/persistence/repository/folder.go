package repository

import (
	"context"
	"errors"

	"github.com/stardeck/logbook/internal/domain"
	"github.com/stardeck/logbook/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type folderRepository struct {
	db *mongo.Database
}

func NewFolderRepository(database *mongo.Database) domain.FolderRepository {
	return &folderRepository{
		db: database,
	}
}

func (r *folderRepository) GetByID(ctx context.Context, id string) (*domain.Folder, error) {
	collection := r.db.Collection(db.FoldersCollection)

	var folder domain.Folder
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&folder)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrFolderNotFound
		}
		return nil, err
	}

	return &folder, nil
}

func (r *folderRepository) GetByIDAndUser(ctx context.Context, id, userID string) (*domain.Folder, error) {
	collection := r.db.Collection(db.FoldersCollection)

	var folder domain.Folder
	err := collection.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&folder)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrFolderNotFound
		}
		return nil, err
	}

	return &folder, nil
}

func (r *folderRepository) GetByUser(ctx context.Context, q domain.FolderQuery) ([]domain.Folder, error) {
	collection := r.db.Collection(db.FoldersCollection)

	direction := -1
	if q.OrderAscending {
		direction = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: folderOrderField(q.OrderBy), Value: direction}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))

	cursor, err := collection.Find(ctx, folderFilter(q), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var folders []domain.Folder
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, err
	}

	return folders, nil
}

func (r *folderRepository) CountByUser(ctx context.Context, q domain.FolderQuery) (int64, error) {
	collection := r.db.Collection(db.FoldersCollection)
	return collection.CountDocuments(ctx, folderFilter(q))
}

func (r *folderRepository) Upsert(ctx context.Context, folder *domain.Folder) error {
	collection := r.db.Collection(db.FoldersCollection)

	opts := options.Replace().SetUpsert(true)
	_, err := collection.ReplaceOne(ctx, bson.M{"_id": folder.ID}, folder, opts)
	return err
}

func (r *folderRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.FoldersCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "updated_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "parent_id", Value: 1},
			},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func folderFilter(q domain.FolderQuery) bson.M {
	filter := bson.M{"user_id": q.UserID}
	if q.ParentID != "" {
		filter["parent_id"] = q.ParentID
	}
	if q.Search != "" {
		filter["name"] = bson.M{"$regex": q.Search, "$options": "i"}
	}
	if !q.IncludeArchived {
		filter["archived"] = false
	}
	if !q.IncludeDeleted {
		filter["deleted"] = false
	}
	return filter
}

func folderOrderField(orderBy domain.OrderBy) string {
	switch orderBy {
	case domain.OrderByCreatedAt:
		return "created_at"
	case domain.OrderByTitle:
		return "name"
	default:
		return "updated_at"
	}
}
