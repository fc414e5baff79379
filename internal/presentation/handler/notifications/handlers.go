package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/stardeck/logbook/internal/domain"
	"github.com/stardeck/logbook/internal/infrastructure/auth"
	"github.com/stardeck/logbook/internal/infrastructure/logging"
	"github.com/stardeck/logbook/internal/infrastructure/metrics"
	"github.com/stardeck/logbook/internal/infrastructure/ws"
	"github.com/stardeck/logbook/internal/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler is the real-time gateway: one socket per user carrying pushed
// change messages downstream and acknowledgment frames upstream.
type Handler struct {
	service  *notify.Service
	registry *ws.Registry
	logger   logging.Logger
	metrics  *metrics.Metrics
}

func NewHandler(service *notify.Service, registry *ws.Registry, logger logging.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		registry: registry,
		logger:   logger,
		metrics:  m,
	}
}

// SubscribeHandler godoc
// @Summary      Subscribe to entity change messages
// @Description  Upgrades to a websocket, replays the caller's pending messages oldest first, then pushes new messages live. The client acknowledges each message with {"messageId": "..."} frames.
// @Tags         notifications
// @Success      101 "Switching protocols"
// @Failure      401 {object} map[string]interface{} "Unauthorized"
// @Security     BearerAuth
// @Router       /ws/entity-changed-messages [get]
func (h *Handler) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFrom(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rawConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(logging.WebSocket, logging.Delivery, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.UserID:       userID,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	conn := ws.NewConn(rawConn)
	h.registry.Register(userID, conn)
	h.metrics.ActiveConnections.Inc()

	h.logger.Info(logging.WebSocket, logging.Delivery, "client connected", map[logging.ExtraKey]any{
		logging.UserID: userID,
	})

	defer func() {
		conn.Close()
		h.registry.Unregister(userID, conn)
		h.metrics.ActiveConnections.Dec()
		h.logger.Info(logging.WebSocket, logging.Delivery, "client disconnected", map[logging.ExtraKey]any{
			logging.UserID: userID,
		})
	}()

	if !h.replayPending(r.Context(), userID, conn) {
		return
	}

	h.readLoop(r, userID, conn)
}

// replayPending pushes every PENDING message for the user, oldest first.
// Returns false when replay cannot complete; the caller then closes the
// connection so the client reconnects and gets a fresh replay.
func (h *Handler) replayPending(ctx context.Context, userID string, conn *ws.Conn) bool {
	pending, err := h.service.PendingFor(ctx, userID)
	if err != nil {
		h.logger.Error(logging.WebSocket, logging.Replay, "failed to load pending messages", map[logging.ExtraKey]any{
			logging.UserID:       userID,
			logging.ErrorMessage: err.Error(),
		})
		return false
	}

	for i := range pending {
		if err := conn.WriteJSON(ws.NewEntityChangedPayload(&pending[i])); err != nil {
			h.logger.Warn(logging.WebSocket, logging.Replay, "replay write failed", map[logging.ExtraKey]any{
				logging.UserID:       userID,
				logging.MessageID:    pending[i].ID,
				logging.ErrorMessage: err.Error(),
			})
			return false
		}
		h.metrics.ReplayedMessages.Inc()
	}

	if len(pending) > 0 {
		h.logger.Info(logging.WebSocket, logging.Replay, "replayed pending messages", map[logging.ExtraKey]any{
			logging.UserID: userID,
			"count":        len(pending),
		})
	}
	return true
}

// readLoop consumes acknowledgment frames until the connection closes.
// Malformed frames and unknown message IDs answer with an ERROR frame and
// keep the connection open.
func (h *Handler) readLoop(r *http.Request, userID string, conn *ws.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn(logging.WebSocket, logging.Ack, "connection closed unexpectedly", map[logging.ExtraKey]any{
					logging.UserID:       userID,
					logging.ErrorMessage: err.Error(),
				})
			}
			return
		}

		var frame ws.AckFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.metrics.Acknowledgments.WithLabelValues("invalid").Inc()
			h.writeResponse(conn, userID, ws.NewAckError("Invalid acknowledgment frame"))
			continue
		}

		if frame.MessageID == "" {
			h.metrics.Acknowledgments.WithLabelValues("invalid").Inc()
			h.writeResponse(conn, userID, ws.NewAckError("messageId is required"))
			continue
		}

		if _, err := h.service.Acknowledge(r.Context(), frame.MessageID, userID); err != nil {
			switch {
			case errors.Is(err, domain.ErrMessageNotFound):
				h.metrics.Acknowledgments.WithLabelValues("not_found").Inc()
				h.writeResponse(conn, userID, ws.NewAckError("Message not found"))
			default:
				h.metrics.Acknowledgments.WithLabelValues("error").Inc()
				h.logger.Error(logging.WebSocket, logging.Ack, "acknowledge failed", map[logging.ExtraKey]any{
					logging.UserID:       userID,
					logging.MessageID:    frame.MessageID,
					logging.ErrorMessage: err.Error(),
				})
				h.writeResponse(conn, userID, ws.NewAckError("Failed to acknowledge message"))
			}
			continue
		}

		h.metrics.Acknowledgments.WithLabelValues("acknowledged").Inc()
		h.writeResponse(conn, userID, ws.NewAckSuccess())
	}
}

func (h *Handler) writeResponse(conn *ws.Conn, userID string, resp ws.AckResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Warn(logging.WebSocket, logging.Ack, "failed to write ack response", map[logging.ExtraKey]any{
			logging.UserID:       userID,
			logging.ErrorMessage: err.Error(),
		})
	}
}
