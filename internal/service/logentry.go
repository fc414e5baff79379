package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stardeck/logbook/internal/domain"
	"github.com/stardeck/logbook/internal/infrastructure/logging"
	"github.com/stardeck/logbook/internal/notify"
	"github.com/stardeck/logbook/internal/pipeline"
)

// LogEntryService owns log entry reads and the upsert path that feeds the
// processing pipeline. Clients generate entry IDs and sync via PUT, so
// create and update are the same operation.
type LogEntryService struct {
	entries   domain.LogEntryRepository
	files     domain.FileRepository
	publisher notify.Publisher
	scheduler pipeline.Scheduler
	logger    logging.Logger
}

func NewLogEntryService(
	entries domain.LogEntryRepository,
	files domain.FileRepository,
	publisher notify.Publisher,
	scheduler pipeline.Scheduler,
	logger logging.Logger,
) *LogEntryService {
	return &LogEntryService{
		entries:   entries,
		files:     files,
		publisher: publisher,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Upsert persists the entry on behalf of userID, emits a change event and
// schedules a pipeline run when the persisted entry sits at UPLOADED.
func (s *LogEntryService) Upsert(ctx context.Context, userID string, entry *domain.LogEntry) (*domain.LogEntry, error) {
	existing, err := s.entries.GetByID(ctx, entry.ID)
	if err != nil && !errors.Is(err, domain.ErrLogEntryNotFound) {
		return nil, fmt.Errorf("failed to load log entry %s: %w", entry.ID, err)
	}
	if existing != nil && existing.AuthorID != userID {
		return nil, domain.ErrUnauthorized
	}

	if entry.AudioFileID != "" {
		file, err := s.files.GetByID(ctx, entry.AudioFileID)
		if err != nil {
			if errors.Is(err, domain.ErrFileNotFound) {
				return nil, domain.ErrFileNotFound
			}
			return nil, fmt.Errorf("failed to load audio file %s: %w", entry.AudioFileID, err)
		}
		if file.UserID != userID {
			return nil, domain.ErrUnauthorized
		}
	}

	entry.AuthorID = userID
	if !entry.Category.Valid() {
		entry.Category = domain.CategoryOther
	}
	if !entry.ProcessingStatus.Valid() {
		entry.ProcessingStatus = domain.StatusPending
	}

	now := time.Now().UTC()
	if existing == nil {
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
	} else {
		entry.CreatedAt = existing.CreatedAt
	}
	entry.UpdatedAt = now

	if err := s.entries.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to upsert log entry %s: %w", entry.ID, err)
	}

	s.publishChange(ctx, entry.ID, entry.AuthorID, userID)

	if entry.ProcessingStatus == domain.StatusUploaded {
		s.scheduler.Schedule(entry.ID)
	}

	return entry, nil
}

func (s *LogEntryService) GetByID(ctx context.Context, userID, id string) (*domain.LogEntry, error) {
	return s.entries.GetByIDAndAuthor(ctx, id, userID)
}

func (s *LogEntryService) List(ctx context.Context, q domain.LogEntryQuery) (domain.Page[domain.LogEntry], error) {
	entries, err := s.entries.GetByAuthor(ctx, q)
	if err != nil {
		return domain.Page[domain.LogEntry]{}, fmt.Errorf("failed to list log entries: %w", err)
	}

	total, err := s.entries.CountByAuthor(ctx, q.AuthorID, q.Search)
	if err != nil {
		return domain.Page[domain.LogEntry]{}, fmt.Errorf("failed to count log entries: %w", err)
	}

	return domain.NewPage(entries, q.Limit, q.Offset, total), nil
}

func (s *LogEntryService) publishChange(ctx context.Context, entryID, authorID, changedBy string) {
	event := domain.ChangeEvent{
		EntityID:        entryID,
		EntityType:      domain.EntityLogEntry,
		ChangedByUserID: changedBy,
		ReceiverUserIDs: []string{authorID, changedBy},
	}

	if err := s.publisher.PublishEntityChanged(ctx, event); err != nil {
		s.logger.Warn(logging.Messaging, logging.FanOut, "failed to publish change event", map[logging.ExtraKey]any{
			logging.EntryID:      entryID,
			logging.ErrorMessage: err.Error(),
		})
	}
}
