package events

import (
	"context"
	"encoding/json"

	"github.com/stardeck/logbook/internal/infrastructure/logging"
	"github.com/stardeck/logbook/internal/infrastructure/messaging"
)

// PipelinePublisher is the broker-backed pipeline scheduler: a trigger
// becomes a durable message and a consumer (possibly on another instance)
// runs the pipeline. Satisfies pipeline.Scheduler.
type PipelinePublisher struct {
	rabbitmq *messaging.RabbitMQ
	logger   logging.Logger
}

func NewPipelinePublisher(rabbitmq *messaging.RabbitMQ, logger logging.Logger) *PipelinePublisher {
	return &PipelinePublisher{
		rabbitmq: rabbitmq,
		logger:   logger,
	}
}

func (p *PipelinePublisher) Schedule(entryID string) {
	payload := messaging.PipelineEventData{
		EntryID: entryID,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error(logging.RabbitMQ, logging.ExternalService, "failed to marshal pipeline event", map[logging.ExtraKey]any{
			logging.EntryID:      entryID,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	if err := p.rabbitmq.PublishMessage(context.Background(), messaging.EventLogEntryUploaded, body); err != nil {
		p.logger.Error(logging.RabbitMQ, logging.ExternalService, "failed to publish pipeline event", map[logging.ExtraKey]any{
			logging.EntryID:      entryID,
			logging.ErrorMessage: err.Error(),
		})
	}
}
