package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stardeck/logbook/internal/domain"
	"github.com/stardeck/logbook/internal/infrastructure/logging"
	"github.com/stardeck/logbook/internal/notify"
)

type FolderService struct {
	folders   domain.FolderRepository
	publisher notify.Publisher
	logger    logging.Logger
}

func NewFolderService(folders domain.FolderRepository, publisher notify.Publisher, logger logging.Logger) *FolderService {
	return &FolderService{
		folders:   folders,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *FolderService) Upsert(ctx context.Context, userID string, folder *domain.Folder) (*domain.Folder, error) {
	if err := folder.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.folders.GetByID(ctx, folder.ID)
	if err != nil && !errors.Is(err, domain.ErrFolderNotFound) {
		return nil, fmt.Errorf("failed to load folder %s: %w", folder.ID, err)
	}
	if existing != nil && existing.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	folder.UserID = userID

	now := time.Now().UTC()
	if existing == nil {
		if folder.CreatedAt.IsZero() {
			folder.CreatedAt = now
		}
	} else {
		folder.CreatedAt = existing.CreatedAt
	}
	folder.UpdatedAt = now

	if err := s.folders.Upsert(ctx, folder); err != nil {
		return nil, fmt.Errorf("failed to upsert folder %s: %w", folder.ID, err)
	}

	event := domain.ChangeEvent{
		EntityID:        folder.ID,
		EntityType:      domain.EntityFolder,
		ChangedByUserID: userID,
		ReceiverUserIDs: []string{folder.UserID, userID},
	}
	if err := s.publisher.PublishEntityChanged(ctx, event); err != nil {
		s.logger.Warn(logging.Messaging, logging.FanOut, "failed to publish change event", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	return folder, nil
}

func (s *FolderService) GetByID(ctx context.Context, userID, id string) (*domain.Folder, error) {
	return s.folders.GetByIDAndUser(ctx, id, userID)
}

func (s *FolderService) List(ctx context.Context, q domain.FolderQuery) (domain.Page[domain.Folder], error) {
	folders, err := s.folders.GetByUser(ctx, q)
	if err != nil {
		return domain.Page[domain.Folder]{}, fmt.Errorf("failed to list folders: %w", err)
	}

	total, err := s.folders.CountByUser(ctx, q)
	if err != nil {
		return domain.Page[domain.Folder]{}, fmt.Errorf("failed to count folders: %w", err)
	}

	return domain.NewPage(folders, q.Limit, q.Offset, total), nil
}
