package notify

import (
	"github.com/stardeck/logbook/internal/domain"
	"github.com/stardeck/logbook/internal/infrastructure/logging"
	"github.com/stardeck/logbook/internal/infrastructure/metrics"
	"github.com/stardeck/logbook/internal/infrastructure/ws"
)

// Deliverer pushes messages to live connections, best effort. A failed or
// impossible push changes nothing: the message stays PENDING and is
// replayed on the receiver's next connect.
type Deliverer struct {
	registry *ws.Registry
	logger   logging.Logger
	metrics  *metrics.Metrics
}

func NewDeliverer(registry *ws.Registry, logger logging.Logger, m *metrics.Metrics) *Deliverer {
	return &Deliverer{
		registry: registry,
		logger:   logger,
		metrics:  m,
	}
}

// Deliver attempts each message in the order supplied by the caller.
func (d *Deliverer) Deliver(messages []domain.EntityChangedMessage) {
	for i := range messages {
		d.deliverOne(&messages[i])
	}
}

func (d *Deliverer) deliverOne(msg *domain.EntityChangedMessage) bool {
	ch, ok := d.registry.Lookup(msg.ReceiverUserID)
	if !ok {
		d.metrics.DeliveryAttempts.WithLabelValues("no_connection").Inc()
		d.logger.Debug(logging.Messaging, logging.Delivery, "no active connection, message stays pending", map[logging.ExtraKey]any{
			logging.MessageID: msg.ID,
			logging.UserID:    msg.ReceiverUserID,
		})
		return false
	}

	if err := ch.WriteJSON(ws.NewEntityChangedPayload(msg)); err != nil {
		d.metrics.DeliveryAttempts.WithLabelValues("error").Inc()
		d.logger.Warn(logging.Messaging, logging.Delivery, "failed to deliver message", map[logging.ExtraKey]any{
			logging.MessageID:    msg.ID,
			logging.UserID:       msg.ReceiverUserID,
			logging.ErrorMessage: err.Error(),
		})
		return false
	}

	d.metrics.DeliveryAttempts.WithLabelValues("delivered").Inc()
	return true
}
