package events

import (
	"context"
	"encoding/json"

	"github.com/rabbitmq/amqp091-go"

	"github.com/stardeck/logbook/internal/infrastructure/logging"
	"github.com/stardeck/logbook/internal/infrastructure/messaging"
	"github.com/stardeck/logbook/internal/pipeline"
)

type pipelineConsumer struct {
	rabbitmq  *messaging.RabbitMQ
	scheduler pipeline.Scheduler
	logger    logging.Logger
}

// NewPipelineConsumer bridges broker deliveries back into the local worker
// pool. The in-process scheduler does the actual pipeline run.
func NewPipelineConsumer(rabbitmq *messaging.RabbitMQ, scheduler pipeline.Scheduler, logger logging.Logger) *pipelineConsumer {
	return &pipelineConsumer{
		rabbitmq:  rabbitmq,
		scheduler: scheduler,
		logger:    logger,
	}
}

func (c *pipelineConsumer) Listen(ctx context.Context) error {
	return c.rabbitmq.ConsumeMessages(ctx, messaging.PipelineQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		var payload messaging.PipelineEventData
		if err := json.Unmarshal(msg.Body, &payload); err != nil {
			c.logger.Error(logging.RabbitMQ, logging.ExternalService, "failed to unmarshal pipeline event", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
			return err
		}

		if payload.EntryID == "" {
			c.logger.Warn(logging.RabbitMQ, logging.ExternalService, "pipeline event without entry id", nil)
			return nil
		}

		c.scheduler.Schedule(payload.EntryID)
		return nil
	})
}
