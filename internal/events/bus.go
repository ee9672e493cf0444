package events

import (
	"sync"

	"go.uber.org/zap"
)

// Handler receives a published event. It returns an error only for logging
// purposes; the bus never retries or propagates it to the publisher.
type Handler func(event any) error

// Bus is a synchronous, in-process publish/subscribe dispatcher. Publish
// calls every subscriber for the event's type in registration order, on the
// caller's goroutine. It exists to decouple the import/classification/
// posting pipeline from read-side concerns (logging, future webhooks)
// without reaching for a message broker.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewBus constructs an empty Bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{handlers: make(map[string][]Handler), logger: logger}
}

// Subscribe registers handler to run whenever an event of the same dynamic
// type as sample is published.
func (b *Bus) Subscribe(sample any, handler Handler) {
	key := eventKey(sample)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[key] = append(b.handlers[key], handler)
}

// Publish dispatches event to every handler registered for its type. A
// handler that panics is recovered and logged; it does not stop the
// remaining handlers from running.
func (b *Bus) Publish(event any) {
	key := eventKey(event)
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[key]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.invoke(h, event)
	}
}

func (b *Bus) invoke(h Handler, event any) {
	defer func() {
		if r := recover(); r != nil && b.logger != nil {
			b.logger.Error("event handler panicked", zap.Any("panic", r), zap.String("event", eventKey(event)))
		}
	}()
	if err := h(event); err != nil && b.logger != nil {
		b.logger.Warn("event handler returned error", zap.Error(err), zap.String("event", eventKey(event)))
	}
}

func eventKey(v any) string {
	switch v.(type) {
	case StatementImported, *StatementImported:
		return "StatementImported"
	case StatementImportFailed, *StatementImportFailed:
		return "StatementImportFailed"
	case StatementMatched, *StatementMatched:
		return "StatementMatched"
	case StatementPosted, *StatementPosted:
		return "StatementPosted"
	default:
		return "unknown"
	}
}
