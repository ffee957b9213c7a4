package event

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/erp/realestate/internal/domain/shared"
	"go.uber.org/zap"
)

// anyEvent keys handlers that receive every event type
const anyEvent = "*"

// InMemoryEventBus dispatches events to in-process handlers and then hands
// them to the registered forwarders (the AMQP publisher in production).
// Handler and forwarder failures are logged; the write that raised the event
// has already committed.
type InMemoryEventBus struct {
	logger  *zap.Logger
	running atomic.Bool

	mu         sync.RWMutex
	handlers   map[string][]shared.EventHandler
	forwarders []shared.EventPublisher
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		logger:   logger,
		handlers: make(map[string][]shared.EventHandler),
	}
}

// Forward adds a publisher that receives every event after local dispatch
func (b *InMemoryEventBus) Forward(publisher shared.EventPublisher) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.forwarders = append(b.forwarders, publisher)
}

// Subscribe registers a handler. Without explicit types the handler's own
// EventTypes are used; a handler with no types at all receives everything.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	keys := eventTypes
	if len(keys) == 0 {
		keys = []string{anyEvent}
	}

	b.mu.Lock()
	for _, k := range keys {
		b.handlers[k] = append(b.handlers[k], handler)
	}
	b.mu.Unlock()
	b.logger.Debug("handler subscribed", zap.Strings("event_types", keys))
}

// Unsubscribe removes a handler from every type it was registered for
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, hs := range b.handlers {
		hs = slices.DeleteFunc(hs, func(h shared.EventHandler) bool { return h == handler })
		if len(hs) == 0 {
			delete(b.handlers, k)
			continue
		}
		b.handlers[k] = hs
	}
}

// handlersFor returns the type's handlers followed by the catch-all ones
func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Concat(b.handlers[eventType], b.handlers[anyEvent])
}

// Publish delivers events to matching handlers synchronously, then forwards them
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		for _, handler := range b.handlersFor(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.String("tenant_id", event.TenantID().String()),
					zap.Error(err),
				)
			}
		}
	}

	b.mu.RLock()
	forwarders := slices.Clone(b.forwarders)
	b.mu.RUnlock()
	for _, f := range forwarders {
		if err := f.Publish(ctx, events...); err != nil {
			b.logger.Error("failed to forward events", zap.Int("count", len(events)), zap.Error(err))
		}
	}
	return nil
}

// Start marks the bus as running
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop marks the bus as stopped
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	b.logger.Info("event bus stopped")
	return nil
}

// dispatch runs one handler, logging and swallowing a panic
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
