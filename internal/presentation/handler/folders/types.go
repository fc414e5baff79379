package folders

import (
	"time"

	"github.com/stardeck/logbook/internal/domain"
)

type upsertFolderRequest struct {
	Name       string     `json:"name"`
	ParentID   string     `json:"parentId,omitempty"`
	Deleted    bool       `json:"isDeleted,omitempty"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`
	Archived   bool       `json:"isArchived,omitempty"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

func (req *upsertFolderRequest) toDomain(id string) *domain.Folder {
	folder := &domain.Folder{
		ID:         id,
		Name:       req.Name,
		ParentID:   req.ParentID,
		Deleted:    req.Deleted,
		DeletedAt:  req.DeletedAt,
		Archived:   req.Archived,
		ArchivedAt: req.ArchivedAt,
	}
	if req.CreatedAt != nil {
		folder.CreatedAt = req.CreatedAt.UTC()
	}
	return folder
}
