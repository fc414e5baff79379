package notifications

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stardeck/logbook/internal/domain"
	"github.com/stardeck/logbook/internal/infrastructure/auth"
	"github.com/stardeck/logbook/internal/infrastructure/logging"
	"github.com/stardeck/logbook/internal/infrastructure/metrics"
	"github.com/stardeck/logbook/internal/infrastructure/ws"
	"github.com/stardeck/logbook/internal/notify"
)

type memoryMessageRepository struct {
	byID       map[string]*domain.EntityChangedMessage
	order      []string
	pendingErr error
}

func newMemoryMessageRepository() *memoryMessageRepository {
	return &memoryMessageRepository{byID: make(map[string]*domain.EntityChangedMessage)}
}

func (m *memoryMessageRepository) GetByID(_ context.Context, id string) (*domain.EntityChangedMessage, error) {
	msg, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	copied := *msg
	return &copied, nil
}

func (m *memoryMessageRepository) GetPendingByReceiver(_ context.Context, receiverUserID string) ([]domain.EntityChangedMessage, error) {
	if m.pendingErr != nil {
		return nil, m.pendingErr
	}
	var out []domain.EntityChangedMessage
	for _, id := range m.order {
		msg := m.byID[id]
		if msg.ReceiverUserID == receiverUserID && msg.Status == domain.MessagePending {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *memoryMessageRepository) CreateAll(_ context.Context, messages []domain.EntityChangedMessage) error {
	for i := range messages {
		copied := messages[i]
		m.byID[copied.ID] = &copied
		m.order = append(m.order, copied.ID)
	}
	return nil
}

func (m *memoryMessageRepository) Acknowledge(_ context.Context, id string, at time.Time) (*domain.EntityChangedMessage, error) {
	msg, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrMessageNotFound
	}
	msg.Status = domain.MessageAcknowledged
	ackedAt := at
	msg.AcknowledgedAt = &ackedAt
	copied := *msg
	return &copied, nil
}

func (m *memoryMessageRepository) EnsureIndexes(_ context.Context) error { return nil }

type gatewayFixture struct {
	repo     *memoryMessageRepository
	registry *ws.Registry
	server   *httptest.Server
}

// newGatewayFixture serves the handler behind a middleware that injects the
// identity from the "X-Test-User" header, standing in for the JWT edge.
func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	repo := newMemoryMessageRepository()
	registry := ws.NewRegistry()
	handler := NewHandler(
		notify.NewService(repo),
		registry,
		logging.NewNopLogger(),
		metrics.New(prometheus.NewRegistry()),
	)

	mux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-Test-User")
		if userID != "" {
			r = r.WithContext(auth.WithIdentity(r.Context(), &auth.Identity{UserID: userID}))
		}
		handler.SubscribeHandler(w, r)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &gatewayFixture{repo: repo, registry: registry, server: server}
}

func (f *gatewayFixture) dial(t *testing.T, userID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	header := http.Header{}
	if userID != "" {
		header.Set("X-Test-User", userID)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func (f *gatewayFixture) seedMessage(t *testing.T, entityID, receiverID string) *domain.EntityChangedMessage {
	t.Helper()

	msg := domain.NewEntityChangedMessage(entityID, domain.EntityLogEntry, "changer", receiverID)
	require.NoError(t, f.repo.CreateAll(context.Background(), []domain.EntityChangedMessage{*msg}))
	return msg
}

func TestSubscribeRejectsUnauthenticated(t *testing.T) {
	f := newGatewayFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSubscribeReplaysPendingOldestFirst(t *testing.T) {
	f := newGatewayFixture(t)
	first := f.seedMessage(t, "entry-1", "u1")
	second := f.seedMessage(t, "entry-2", "u1")
	f.seedMessage(t, "entry-3", "someone-else")

	conn := f.dial(t, "u1")

	var got ws.EntityChangedPayload
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, first.ID, got.ID)

	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, second.ID, got.ID)
}

func TestAcknowledgeSuccess(t *testing.T) {
	f := newGatewayFixture(t)
	msg := f.seedMessage(t, "entry-1", "u1")

	conn := f.dial(t, "u1")

	var pushed ws.EntityChangedPayload
	require.NoError(t, conn.ReadJSON(&pushed))

	require.NoError(t, conn.WriteJSON(ws.AckFrame{MessageID: msg.ID}))

	var resp ws.AckResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, ws.StatusSuccess, resp.Status)
	assert.Empty(t, resp.Error)

	stored, err := f.repo.GetByID(context.Background(), msg.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MessageAcknowledged, stored.Status)
	assert.NotNil(t, stored.AcknowledgedAt)
}

func TestAcknowledgeForeignMessageMasked(t *testing.T) {
	f := newGatewayFixture(t)
	foreign := f.seedMessage(t, "entry-1", "someone-else")

	conn := f.dial(t, "u1")

	require.NoError(t, conn.WriteJSON(ws.AckFrame{MessageID: foreign.ID}))

	var resp ws.AckResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, ws.StatusError, resp.Status)
	assert.Equal(t, "Message not found", resp.Error)

	stored, err := f.repo.GetByID(context.Background(), foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MessagePending, stored.Status, "foreign ack must not change the message")
}

func TestMalformedFrameKeepsConnectionOpen(t *testing.T) {
	f := newGatewayFixture(t)
	msg := f.seedMessage(t, "entry-1", "u1")

	conn := f.dial(t, "u1")

	var pushed ws.EntityChangedPayload
	require.NoError(t, conn.ReadJSON(&pushed))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	var resp ws.AckResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, ws.StatusError, resp.Status)

	// the connection survives and still accepts a valid ack
	require.NoError(t, conn.WriteJSON(ws.AckFrame{MessageID: msg.ID}))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, ws.StatusSuccess, resp.Status)
}

func TestEmptyMessageIDRejected(t *testing.T) {
	f := newGatewayFixture(t)

	conn := f.dial(t, "u1")

	require.NoError(t, conn.WriteJSON(ws.AckFrame{MessageID: ""}))

	var resp ws.AckResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, ws.StatusError, resp.Status)
}

func TestReplayLoadFailureClosesConnection(t *testing.T) {
	f := newGatewayFixture(t)
	f.repo.pendingErr = errors.New("store unavailable")

	conn := f.dial(t, "u1")

	// The server closes the socket instead of serving a session that would
	// never see its pending messages.
	_, _, err := conn.ReadMessage()
	require.Error(t, err)

	require.Eventually(t, func() bool {
		return !f.registry.HasActiveConnection("u1")
	}, time.Second, 10*time.Millisecond)
}

func TestConnectionRegisteredWhileOpen(t *testing.T) {
	f := newGatewayFixture(t)

	conn := f.dial(t, "u1")

	require.Eventually(t, func() bool {
		return f.registry.HasActiveConnection("u1")
	}, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool {
		return !f.registry.HasActiveConnection("u1")
	}, time.Second, 10*time.Millisecond)
}
