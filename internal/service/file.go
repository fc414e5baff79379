package service

import (
	"context"
	"fmt"

	"github.com/stardeck/logbook/internal/domain"
	"github.com/stardeck/logbook/internal/infrastructure/logging"
	"github.com/stardeck/logbook/internal/notify"
)

// FileService stores uploaded objects: bytes in object storage, metadata in
// the files collection. It doubles as the pipeline's audio source.
type FileService struct {
	files     domain.FileRepository
	storage   domain.FileStorage
	publisher notify.Publisher
	logger    logging.Logger
}

func NewFileService(files domain.FileRepository, storage domain.FileStorage, publisher notify.Publisher, logger logging.Logger) *FileService {
	return &FileService{
		files:     files,
		storage:   storage,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *FileService) Upload(ctx context.Context, userID, name, contentType string, data []byte) (*domain.File, error) {
	file := domain.NewFile(userID, name, contentType, int64(len(data)))

	if err := s.storage.Put(ctx, file.StorageKey, contentType, data); err != nil {
		return nil, fmt.Errorf("failed to store file %s: %w", file.ID, err)
	}

	if err := s.files.Create(ctx, file); err != nil {
		// best effort cleanup, the bytes are orphaned otherwise
		if derr := s.storage.Delete(ctx, file.StorageKey); derr != nil {
			s.logger.Warn(logging.IO, logging.ExternalService, "failed to clean up stored object", map[logging.ExtraKey]any{
				logging.ErrorMessage: derr.Error(),
			})
		}
		return nil, fmt.Errorf("failed to create file record %s: %w", file.ID, err)
	}

	s.publishChange(ctx, file.ID, userID)
	return file, nil
}

func (s *FileService) GetByID(ctx context.Context, userID, id string) (*domain.File, error) {
	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.UserID != userID {
		return nil, domain.ErrFileNotFound
	}
	return file, nil
}

// Content returns the raw bytes of a file owned by userID. It satisfies the
// pipeline's audio source.
func (s *FileService) Content(ctx context.Context, userID, id string) ([]byte, error) {
	file, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	data, err := s.storage.Get(ctx, file.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s from storage: %w", id, err)
	}
	return data, nil
}

// AudioContent adapts Content to the pipeline capability signature.
func (s *FileService) AudioContent(ctx context.Context, userID, fileID string) ([]byte, error) {
	return s.Content(ctx, userID, fileID)
}

func (s *FileService) Delete(ctx context.Context, userID, id string) error {
	file, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, file.StorageKey); err != nil {
		return fmt.Errorf("failed to delete file %s from storage: %w", id, err)
	}

	if err := s.files.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete file record %s: %w", id, err)
	}

	s.publishChange(ctx, id, userID)
	return nil
}

func (s *FileService) publishChange(ctx context.Context, fileID, userID string) {
	event := domain.ChangeEvent{
		EntityID:        fileID,
		EntityType:      domain.EntityFile,
		ChangedByUserID: userID,
		ReceiverUserIDs: []string{userID},
	}
	if err := s.publisher.PublishEntityChanged(ctx, event); err != nil {
		s.logger.Warn(logging.Messaging, logging.FanOut, "failed to publish change event", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}
