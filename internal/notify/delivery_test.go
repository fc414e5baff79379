package notify

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/stardeck/logbook/internal/domain"
	"github.com/stardeck/logbook/internal/infrastructure/logging"
	"github.com/stardeck/logbook/internal/infrastructure/metrics"
	"github.com/stardeck/logbook/internal/infrastructure/ws"
)

// fakeChannel records what gets written to it.
type fakeChannel struct {
	written  []any
	writeErr error
	open     bool
}

func (f *fakeChannel) WriteJSON(v any) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, v)
	return nil
}

func (f *fakeChannel) IsOpen() bool { return f.open }
func (f *fakeChannel) Close() error { f.open = false; return nil }

func newDelivererForTest() (*Deliverer, *ws.Registry, *metrics.Metrics) {
	registry := ws.NewRegistry()
	m := metrics.New(prometheus.NewRegistry())
	return NewDeliverer(registry, logging.NewNopLogger(), m), registry, m
}

func TestDeliverPushesToConnectedReceiver(t *testing.T) {
	deliverer, registry, m := newDelivererForTest()

	ch := &fakeChannel{open: true}
	registry.Register("u1", ch)

	deliverer.Deliver([]domain.EntityChangedMessage{
		*domain.NewEntityChangedMessage("entry-1", domain.EntityLogEntry, "u2", "u1"),
	})

	assert.Len(t, ch.written, 1)
	payload, ok := ch.written[0].(ws.EntityChangedPayload)
	assert.True(t, ok)
	assert.Equal(t, "entry-1", payload.EntityID)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DeliveryAttempts.WithLabelValues("delivered")))
}

func TestDeliverWithoutConnectionLeavesMessagePending(t *testing.T) {
	deliverer, _, m := newDelivererForTest()

	msg := domain.NewEntityChangedMessage("entry-1", domain.EntityLogEntry, "u2", "u1")
	deliverer.Deliver([]domain.EntityChangedMessage{*msg})

	assert.Equal(t, domain.MessagePending, msg.Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DeliveryAttempts.WithLabelValues("no_connection")))
}

func TestDeliverWriteFailureIsBestEffort(t *testing.T) {
	deliverer, registry, m := newDelivererForTest()

	ch := &fakeChannel{open: true, writeErr: errors.New("broken pipe")}
	registry.Register("u1", ch)

	msg := domain.NewEntityChangedMessage("entry-1", domain.EntityLogEntry, "u2", "u1")
	deliverer.Deliver([]domain.EntityChangedMessage{*msg})

	assert.Equal(t, domain.MessagePending, msg.Status, "failed delivery must not change message state")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DeliveryAttempts.WithLabelValues("error")))
}

func TestDeliverPreservesOrder(t *testing.T) {
	deliverer, registry, _ := newDelivererForTest()

	ch := &fakeChannel{open: true}
	registry.Register("u1", ch)

	first := domain.NewEntityChangedMessage("entry-1", domain.EntityLogEntry, "u2", "u1")
	second := domain.NewEntityChangedMessage("entry-2", domain.EntityLogEntry, "u2", "u1")
	deliverer.Deliver([]domain.EntityChangedMessage{*first, *second})

	assert.Len(t, ch.written, 2)
	assert.Equal(t, "entry-1", ch.written[0].(ws.EntityChangedPayload).EntityID)
	assert.Equal(t, "entry-2", ch.written[1].(ws.EntityChangedPayload).EntityID)
}
