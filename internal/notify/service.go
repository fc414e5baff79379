package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stardeck/logbook/internal/domain"
)

// Service owns the durable lifecycle of entity changed messages: one
// PENDING row per (change, receiver), later flipped to ACKNOWLEDGED by the
// gateway.
type Service struct {
	messages domain.EntityChangedMessageRepository
}

func NewService(messages domain.EntityChangedMessageRepository) *Service {
	return &Service{
		messages: messages,
	}
}

// CreateMessages fans one change event out into per-receiver messages.
// Receivers are deduplicated within this call only, two publishes for the
// same entity produce two independent message sets.
func (s *Service) CreateMessages(ctx context.Context, event domain.ChangeEvent) ([]domain.EntityChangedMessage, error) {
	seen := make(map[string]struct{}, len(event.ReceiverUserIDs))
	messages := make([]domain.EntityChangedMessage, 0, len(event.ReceiverUserIDs))

	for _, receiverID := range event.ReceiverUserIDs {
		if _, ok := seen[receiverID]; ok {
			continue
		}
		seen[receiverID] = struct{}{}

		messages = append(messages, *domain.NewEntityChangedMessage(
			event.EntityID,
			event.EntityType,
			event.ChangedByUserID,
			receiverID,
		))
	}

	if err := s.messages.CreateAll(ctx, messages); err != nil {
		return nil, fmt.Errorf("failed to persist change messages: %w", err)
	}

	return messages, nil
}

// Acknowledge flips one message to ACKNOWLEDGED on behalf of userID. A
// message that does not exist and a message owned by someone else fail the
// same way, existence is never leaked to a non-owning caller.
// Re-acknowledging succeeds and refreshes the timestamp.
func (s *Service) Acknowledge(ctx context.Context, messageID, userID string) (*domain.EntityChangedMessage, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if msg.ReceiverUserID != userID {
		return nil, domain.ErrMessageNotFound
	}

	acked, err := s.messages.Acknowledge(ctx, messageID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to acknowledge message %s: %w", messageID, err)
	}

	return acked, nil
}

// PendingFor returns the user's PENDING messages, oldest first.
func (s *Service) PendingFor(ctx context.Context, userID string) ([]domain.EntityChangedMessage, error) {
	return s.messages.GetPendingByReceiver(ctx, userID)
}
