package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EntityType string

const (
	EntityLogEntry EntityType = "log_entry"
	EntityFolder   EntityType = "folder"
	EntityFile     EntityType = "file"
	EntityProfile  EntityType = "profile"
)

type MessageStatus string

const (
	MessagePending      MessageStatus = "PENDING"
	MessageAcknowledged MessageStatus = "ACKNOWLEDGED"
)

// ChangeEvent is the ephemeral trigger handed to the fan-out service by an
// entity mutation. It is never persisted.
type ChangeEvent struct {
	EntityID        string
	EntityType      EntityType
	ChangedByUserID string
	ReceiverUserIDs []string
}

// EntityChangedMessage is the durable, per-receiver notification record.
// AcknowledgedAt is non-nil exactly when Status is ACKNOWLEDGED.
type EntityChangedMessage struct {
	ID              string        `bson:"_id" json:"id"`
	EntityID        string        `bson:"entity_id" json:"entityId"`
	EntityType      EntityType    `bson:"entity_type" json:"entityType"`
	ChangedByUserID string        `bson:"changed_by_user_id" json:"changedByUserId"`
	ReceiverUserID  string        `bson:"receiver_user_id" json:"receiverUserId"`
	Status          MessageStatus `bson:"status" json:"status"`
	CreatedAt       time.Time     `bson:"created_at" json:"createdAt"`
	AcknowledgedAt  *time.Time    `bson:"acknowledged_at,omitempty" json:"acknowledgedAt,omitempty"`
}

func NewEntityChangedMessage(entityID string, entityType EntityType, changedByUserID, receiverUserID string) *EntityChangedMessage {
	return &EntityChangedMessage{
		ID:              uuid.NewString(),
		EntityID:        entityID,
		EntityType:      entityType,
		ChangedByUserID: changedByUserID,
		ReceiverUserID:  receiverUserID,
		Status:          MessagePending,
		CreatedAt:       time.Now().UTC(),
	}
}

type EntityChangedMessageRepository interface {
	GetByID(ctx context.Context, id string) (*EntityChangedMessage, error)
	GetPendingByReceiver(ctx context.Context, receiverUserID string) ([]EntityChangedMessage, error)
	CreateAll(ctx context.Context, messages []EntityChangedMessage) error
	// Acknowledge sets status ACKNOWLEDGED and acknowledgedAt in one
	// single-document update. Re-acknowledging refreshes the timestamp.
	Acknowledge(ctx context.Context, id string, at time.Time) (*EntityChangedMessage, error)
	EnsureIndexes(ctx context.Context) error
}
