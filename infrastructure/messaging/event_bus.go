// Package messaging provides the in-process domain event bus.
package messaging

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"taskflow-backend/application/ports"
	"taskflow-backend/domain/events"
)

// InProcessEventBus implements ports.EventBus with synchronous in-process
// delivery. Handler failures are logged and never propagate to the
// publisher: event delivery is advisory to the operation that raised it.
type InProcessEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]ports.EventHandler
	logger   *zap.Logger
}

// NewInProcessEventBus creates an empty event bus
func NewInProcessEventBus(logger *zap.Logger) *InProcessEventBus {
	return &InProcessEventBus{
		handlers: make(map[string][]ports.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type
func (b *InProcessEventBus) Subscribe(eventType string, handler ports.EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// Publish delivers a single event to all subscribed handlers
func (b *InProcessEventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.mu.RLock()
	handlers := b.handlers[event.GetEventType()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		if !handler.CanHandle(event.GetEventType()) {
			continue
		}
		if err := handler.Handle(ctx, event); err != nil {
			b.logger.Warn("event handler failed",
				zap.String("eventType", event.GetEventType()),
				zap.String("aggregateID", event.GetAggregateID()),
				zap.Error(err),
			)
		}
	}
	return nil
}

// PublishBatch delivers multiple events in order
func (b *InProcessEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	for _, event := range batch {
		if err := b.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// LoggingEventHandler logs every event it receives. Subscribed to all task
// event types at startup so mutations leave an audit trail in the logs.
type LoggingEventHandler struct {
	logger *zap.Logger
}

// NewLoggingEventHandler creates a handler that logs events
func NewLoggingEventHandler(logger *zap.Logger) *LoggingEventHandler {
	return &LoggingEventHandler{logger: logger}
}

// Handle logs the event
func (h *LoggingEventHandler) Handle(ctx context.Context, event events.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateID", event.GetAggregateID()),
		zap.Time("timestamp", event.GetTimestamp()),
	)
	return nil
}

// CanHandle accepts every event type
func (h *LoggingEventHandler) CanHandle(eventType string) bool {
	return true
}
