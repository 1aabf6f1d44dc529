package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opas/backend/internal/domain/shared"
)

type registrationEvent struct {
	shared.BaseDomainEvent
	SellerName string `json:"seller_name"`
}

func submittedEvent(eventType string) *registrationEvent {
	return &registrationEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "SellerRegistrationRequest", uuid.New()),
		SellerName:      "Riverside Grains Ltd",
	}
}

// recordingHandler captures every event it receives and can be told to
// fail.
type recordingHandler struct {
	eventTypes []string
	received   []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{
		eventTypes: eventTypes,
		received:   make([]shared.DomainEvent, 0),
	}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *recordingHandler) failWith(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *recordingHandler) events() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.received...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	t.Run("delivers to a subscribed handler", func(t *testing.T) {
		handler := newRecordingHandler("SellerRegistrationSubmitted")
		bus.Subscribe(handler, "SellerRegistrationSubmitted")

		event := submittedEvent("SellerRegistrationSubmitted")
		require.NoError(t, bus.Publish(context.Background(), event))

		received := handler.events()
		require.Len(t, received, 1)
		assert.Equal(t, event, received[0])
	})

	t.Run("delivers a batch in order", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newRecordingHandler("SellerRegistrationSubmitted")
		bus.Subscribe(handler, "SellerRegistrationSubmitted")

		first := submittedEvent("SellerRegistrationSubmitted")
		second := submittedEvent("SellerRegistrationSubmitted")
		require.NoError(t, bus.Publish(context.Background(), first, second))

		received := handler.events()
		require.Len(t, received, 2)
		assert.Equal(t, first.EventID(), received[0].EventID())
		assert.Equal(t, second.EventID(), received[1].EventID())
	})

	t.Run("fans out to every handler of the type", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		notifier := newRecordingHandler("SellerRegistrationApproved")
		auditor := newRecordingHandler("SellerRegistrationApproved")
		bus.Subscribe(notifier, "SellerRegistrationApproved")
		bus.Subscribe(auditor, "SellerRegistrationApproved")

		require.NoError(t, bus.Publish(context.Background(), submittedEvent("SellerRegistrationApproved")))

		assert.Len(t, notifier.events(), 1)
		assert.Len(t, auditor.events(), 1)
	})

	t.Run("skips handlers of other types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := newRecordingHandler("SellerRegistrationRejected")
		bus.Subscribe(handler, "SellerRegistrationRejected")

		require.NoError(t, bus.Publish(context.Background(), submittedEvent("SellerRegistrationSubmitted")))

		assert.Empty(t, handler.events())
	})
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	// An audit-log style handler with no declared types sees everything.
	auditLog := newRecordingHandler()
	bus.Subscribe(auditLog)

	require.NoError(t, bus.Publish(context.Background(), submittedEvent("SellerApproved")))
	require.NoError(t, bus.Publish(context.Background(), submittedEvent("PriceCeilingChanged")))

	assert.Len(t, auditLog.events(), 2)
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newRecordingHandler("SellerRegistrationSubmitted")
	failing.failWith(errors.New("mailer unavailable"))
	healthy := newRecordingHandler("SellerRegistrationSubmitted")
	bus.Subscribe(failing, "SellerRegistrationSubmitted")
	bus.Subscribe(healthy, "SellerRegistrationSubmitted")

	err := bus.Publish(context.Background(), submittedEvent("SellerRegistrationSubmitted"))

	require.NoError(t, err)
	assert.Len(t, failing.events(), 1)
	assert.Len(t, healthy.events(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := newRecordingHandler("SellerRegistrationSubmitted")
	bus.Subscribe(handler, "SellerRegistrationSubmitted")

	_ = bus.Publish(context.Background(), submittedEvent("SellerRegistrationSubmitted"))
	require.Len(t, handler.events(), 1)

	bus.Unsubscribe(handler)

	_ = bus.Publish(context.Background(), submittedEvent("SellerRegistrationSubmitted"))
	assert.Len(t, handler.events(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	require.NoError(t, bus.Start(context.Background()))

	handler := newRecordingHandler("SellerRegistrationSubmitted")
	bus.Subscribe(handler, "SellerRegistrationSubmitted")
	require.NoError(t, bus.Publish(context.Background(), submittedEvent("SellerRegistrationSubmitted")))
	assert.Len(t, handler.events(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
}
