package ws

import (
	"time"

	"github.com/stardeck/logbook/internal/domain"
)

const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// EntityChangedPayload is the server-to-client push frame.
type EntityChangedPayload struct {
	ID              string `json:"id"`
	EntityID        string `json:"entityId"`
	EntityType      string `json:"entityType"`
	ChangedByUserID string `json:"changedByUserId"`
	CreatedAt       string `json:"createdAt"`
}

// AckFrame is the client-to-server acknowledgment frame.
type AckFrame struct {
	MessageID string `json:"messageId"`
}

// AckResponse answers every client frame.
type AckResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func NewEntityChangedPayload(m *domain.EntityChangedMessage) EntityChangedPayload {
	return EntityChangedPayload{
		ID:              m.ID,
		EntityID:        m.EntityID,
		EntityType:      string(m.EntityType),
		ChangedByUserID: m.ChangedByUserID,
		CreatedAt:       m.CreatedAt.Format(time.RFC3339Nano),
	}
}

func NewAckSuccess() AckResponse {
	return AckResponse{Status: StatusSuccess}
}

func NewAckError(msg string) AckResponse {
	return AckResponse{Status: StatusError, Error: msg}
}
