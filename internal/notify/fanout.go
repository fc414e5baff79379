package notify

import (
	"context"

	"github.com/stardeck/logbook/internal/domain"
	"github.com/stardeck/logbook/internal/infrastructure/logging"
	"github.com/stardeck/logbook/internal/infrastructure/metrics"
)

// Publisher is the notification port mutation services call after
// persisting their own change. The event is ephemeral, only the fanned-out
// messages are durable.
type Publisher interface {
	PublishEntityChanged(ctx context.Context, event domain.ChangeEvent) error
}

// Fanout is the production Publisher: it persists one message per unique
// receiver, then hands the batch to the deliverer for an immediate
// best-effort push.
type Fanout struct {
	service   *Service
	deliverer *Deliverer
	logger    logging.Logger
	metrics   *metrics.Metrics
}

func NewFanout(service *Service, deliverer *Deliverer, logger logging.Logger, m *metrics.Metrics) *Fanout {
	return &Fanout{
		service:   service,
		deliverer: deliverer,
		logger:    logger,
		metrics:   m,
	}
}

func (f *Fanout) PublishEntityChanged(ctx context.Context, event domain.ChangeEvent) error {
	messages, err := f.service.CreateMessages(ctx, event)
	if err != nil {
		return err
	}

	f.metrics.MessagesCreated.Add(float64(len(messages)))
	f.logger.Debug(logging.Messaging, logging.FanOut, "change event fanned out", map[logging.ExtraKey]any{
		logging.EntryID: event.EntityID,
		"receivers":     len(messages),
	})

	f.deliverer.Deliver(messages)
	return nil
}
