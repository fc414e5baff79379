package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// File is the metadata row for an uploaded object. The bytes live in object
// storage under StorageKey.
type File struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"user_id" json:"userId"`
	Name        string    `bson:"name" json:"name"`
	ContentType string    `bson:"content_type" json:"contentType"`
	SizeBytes   int64     `bson:"size_bytes" json:"sizeBytes"`
	StorageKey  string    `bson:"storage_key" json:"-"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

func NewFile(userID, name, contentType string, size int64) *File {
	id := uuid.NewString()
	return &File{
		ID:          id,
		UserID:      userID,
		Name:        name,
		ContentType: contentType,
		SizeBytes:   size,
		StorageKey:  userID + "/" + id,
		CreatedAt:   time.Now().UTC(),
	}
}

type FileRepository interface {
	GetByID(ctx context.Context, id string) (*File, error)
	Create(ctx context.Context, file *File) error
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

// FileStorage is the object store holding the raw bytes.
type FileStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
