package repository

import (
	"context"
	"errors"

	"github.com/stardeck/logbook/internal/domain"
	"github.com/stardeck/logbook/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type fileRepository struct {
	db *mongo.Database
}

func NewFileRepository(database *mongo.Database) domain.FileRepository {
	return &fileRepository{
		db: database,
	}
}

func (r *fileRepository) GetByID(ctx context.Context, id string) (*domain.File, error) {
	collection := r.db.Collection(db.FilesCollection)

	var file domain.File
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&file)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrFileNotFound
		}
		return nil, err
	}

	return &file, nil
}

func (r *fileRepository) Create(ctx context.Context, file *domain.File) error {
	collection := r.db.Collection(db.FilesCollection)

	_, err := collection.InsertOne(ctx, file)
	return err
}

func (r *fileRepository) Delete(ctx context.Context, id string) error {
	collection := r.db.Collection(db.FilesCollection)

	res, err := collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrFileNotFound
	}

	return nil
}

func (r *fileRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.FilesCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
