package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stardeck/logbook/internal/domain"
)

// mockMessageRepository records calls and serves canned messages by ID.
type mockMessageRepository struct {
	byID      map[string]*domain.EntityChangedMessage
	pending   []domain.EntityChangedMessage
	created   [][]domain.EntityChangedMessage
	acked     []string
	createErr error
	ackErr    error
}

func newMockMessageRepository() *mockMessageRepository {
	return &mockMessageRepository{byID: make(map[string]*domain.EntityChangedMessage)}
}

func (m *mockMessageRepository) GetByID(_ context.Context, id string) (*domain.EntityChangedMessage, error) {
	msg, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	copied := *msg
	return &copied, nil
}

func (m *mockMessageRepository) GetPendingByReceiver(_ context.Context, _ string) ([]domain.EntityChangedMessage, error) {
	return m.pending, nil
}

func (m *mockMessageRepository) CreateAll(_ context.Context, messages []domain.EntityChangedMessage) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, messages)
	for i := range messages {
		copied := messages[i]
		m.byID[copied.ID] = &copied
	}
	return nil
}

func (m *mockMessageRepository) Acknowledge(_ context.Context, id string, at time.Time) (*domain.EntityChangedMessage, error) {
	if m.ackErr != nil {
		return nil, m.ackErr
	}
	msg, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	m.acked = append(m.acked, id)
	msg.Status = domain.MessageAcknowledged
	ackedAt := at
	msg.AcknowledgedAt = &ackedAt
	copied := *msg
	return &copied, nil
}

func (m *mockMessageRepository) EnsureIndexes(_ context.Context) error { return nil }

func TestCreateMessagesDeduplicatesReceivers(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewService(repo)

	messages, err := svc.CreateMessages(context.Background(), domain.ChangeEvent{
		EntityID:        "entry-1",
		EntityType:      domain.EntityLogEntry,
		ChangedByUserID: "u1",
		ReceiverUserIDs: []string{"u1", "u2", "u1"},
	})
	require.NoError(t, err)
	require.Len(t, messages, 2)

	receivers := []string{messages[0].ReceiverUserID, messages[1].ReceiverUserID}
	assert.ElementsMatch(t, []string{"u1", "u2"}, receivers)

	for _, msg := range messages {
		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, domain.MessagePending, msg.Status)
		assert.Equal(t, "entry-1", msg.EntityID)
		assert.Equal(t, "u1", msg.ChangedByUserID)
		assert.Nil(t, msg.AcknowledgedAt)
	}

	require.Len(t, repo.created, 1, "all messages persisted in one batch")
}

func TestCreateMessagesDistinctIDsPerReceiver(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewService(repo)

	messages, err := svc.CreateMessages(context.Background(), domain.ChangeEvent{
		EntityID:        "entry-1",
		EntityType:      domain.EntityLogEntry,
		ChangedByUserID: "u1",
		ReceiverUserIDs: []string{"u1", "u2", "u3"},
	})
	require.NoError(t, err)
	require.Len(t, messages, 3)

	ids := map[string]struct{}{}
	for _, msg := range messages {
		ids[msg.ID] = struct{}{}
	}
	assert.Len(t, ids, 3)
}

func TestAcknowledgeFlipsStatus(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewService(repo)

	messages, err := svc.CreateMessages(context.Background(), domain.ChangeEvent{
		EntityID:        "entry-1",
		EntityType:      domain.EntityLogEntry,
		ChangedByUserID: "u1",
		ReceiverUserIDs: []string{"u2"},
	})
	require.NoError(t, err)

	acked, err := svc.Acknowledge(context.Background(), messages[0].ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, domain.MessageAcknowledged, acked.Status)
	require.NotNil(t, acked.AcknowledgedAt)
}

func TestAcknowledgeIsIdempotent(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewService(repo)

	messages, err := svc.CreateMessages(context.Background(), domain.ChangeEvent{
		EntityID:        "entry-1",
		EntityType:      domain.EntityLogEntry,
		ChangedByUserID: "u1",
		ReceiverUserIDs: []string{"u2"},
	})
	require.NoError(t, err)

	_, err = svc.Acknowledge(context.Background(), messages[0].ID, "u2")
	require.NoError(t, err)

	again, err := svc.Acknowledge(context.Background(), messages[0].ID, "u2")
	require.NoError(t, err, "re-acknowledging must succeed")
	assert.Equal(t, domain.MessageAcknowledged, again.Status)
}

func TestAcknowledgeMasksForeignMessages(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewService(repo)

	messages, err := svc.CreateMessages(context.Background(), domain.ChangeEvent{
		EntityID:        "entry-1",
		EntityType:      domain.EntityLogEntry,
		ChangedByUserID: "u1",
		ReceiverUserIDs: []string{"u2"},
	})
	require.NoError(t, err)

	_, err = svc.Acknowledge(context.Background(), messages[0].ID, "u3")
	assert.ErrorIs(t, err, domain.ErrMessageNotFound, "foreign messages must look like missing ones")
	assert.Empty(t, repo.acked, "masked acknowledge must not touch the message")
}

func TestAcknowledgeUnknownMessage(t *testing.T) {
	repo := newMockMessageRepository()
	svc := NewService(repo)

	_, err := svc.Acknowledge(context.Background(), "no-such-id", "u1")
	assert.ErrorIs(t, err, domain.ErrMessageNotFound)
}
