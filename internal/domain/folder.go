package domain

import (
	"context"
	"errors"
	"time"
)

// Folder mirrors the mobile local-first model. The constructor enforces
// consistency between the deletion/archival flags and their timestamps.
type Folder struct {
	ID         string     `bson:"_id" json:"id"`
	UserID     string     `bson:"user_id" json:"userId"`
	Name       string     `bson:"name" json:"name"`
	ParentID   string     `bson:"parent_id,omitempty" json:"parentId,omitempty"`
	CreatedAt  time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updatedAt"`
	Deleted    bool       `bson:"deleted" json:"isDeleted"`
	DeletedAt  *time.Time `bson:"deleted_at,omitempty" json:"deletedAt,omitempty"`
	Archived   bool       `bson:"archived" json:"isArchived"`
	ArchivedAt *time.Time `bson:"archived_at,omitempty" json:"archivedAt,omitempty"`
}

func (f *Folder) Validate() error {
	if f.Name == "" {
		return errors.New("folder name cannot be blank")
	}
	if f.Deleted != (f.DeletedAt != nil) {
		return errors.New("deletedAt must be set exactly when folder is deleted")
	}
	if f.Archived != (f.ArchivedAt != nil) {
		return errors.New("archivedAt must be set exactly when folder is archived")
	}
	return nil
}

type FolderQuery struct {
	UserID          string
	ParentID        string
	Limit           int
	Offset          int
	Search          string
	IncludeArchived bool
	IncludeDeleted  bool
	OrderBy         OrderBy
	OrderAscending  bool
}

type FolderRepository interface {
	GetByID(ctx context.Context, id string) (*Folder, error)
	GetByIDAndUser(ctx context.Context, id, userID string) (*Folder, error)
	GetByUser(ctx context.Context, q FolderQuery) ([]Folder, error)
	CountByUser(ctx context.Context, q FolderQuery) (int64, error)
	Upsert(ctx context.Context, folder *Folder) error
	EnsureIndexes(ctx context.Context) error
}
