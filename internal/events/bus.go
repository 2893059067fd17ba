// Package events is a small publish/subscribe registry keyed by event name.
// A Bus is created by the caller and passed to whatever needs it.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ResultsImported       = "results.imported"
	ResultsImportFailed   = "results.import_failed"
	ResultsDriversMissing = "results.drivers_missing"
)

type Event struct {
	Name    string
	Payload any
	At      time.Time
}

type Handler func(ctx context.Context, e Event)

type subscription struct {
	id      string
	handler Handler
}

type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	logger *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subs:   make(map[string][]subscription),
		logger: logger,
	}
}

// Subscribe registers handler for name and returns an id for Unsubscribe.
func (b *Bus) Subscribe(name string, handler Handler) string {
	id := uuid.New().String()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[name] = append(b.subs[name], subscription{id: id, handler: handler})
	return id
}

// Unsubscribe reports whether a subscription was removed.
func (b *Bus) Unsubscribe(name, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[name]
	for i, s := range subs {
		if s.id == id {
			b.subs[name] = append(subs[:i:i], subs[i+1:]...)
			if len(b.subs[name]) == 0 {
				delete(b.subs, name)
			}
			return true
		}
	}
	return false
}

// Publish calls every handler subscribed to name in subscription order.
// A panicking handler is logged and does not stop the others.
func (b *Bus) Publish(ctx context.Context, name string, payload any) int {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[name]))
	copy(subs, b.subs[name])
	b.mu.RUnlock()

	e := Event{Name: name, Payload: payload, At: time.Now()}
	for _, s := range subs {
		b.dispatch(ctx, s, e)
	}
	return len(subs)
}

func (b *Bus) dispatch(ctx context.Context, s subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("event", e.Name),
				zap.String("subscription", s.id),
				zap.Any("panic", r))
		}
	}()
	s.handler(ctx, e)
}

func (b *Bus) Clear(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, name)
}

func (b *Bus) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = make(map[string][]subscription)
}

func (b *Bus) SubscriberCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}
