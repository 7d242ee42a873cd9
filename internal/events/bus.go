package events

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HandlerFunc is a function that handles an event.
type HandlerFunc func(ctx context.Context, event Event) error

// EventBus is an in-process publish-subscribe bus keyed by event type.
// Emit fans out to one goroutine per handler. EmitSync runs the handlers
// one after another in subscription order, which the frame archive relies
// on to keep protocol lines in arrival order.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]subscription
	stopCh   chan struct{}
	stopped  bool
	inflight sync.WaitGroup
	logger   zerolog.Logger
}

type subscription struct {
	name string
	fn   HandlerFunc
}

// NewEventBus creates a new EventBus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]subscription),
		stopCh:   make(chan struct{}),
		logger:   log.With().Str("component", "events").Logger(),
	}
}

// Subscribe registers fn under name. Subscribing the same name twice for
// one event type replaces the earlier handler.
func (eb *EventBus) Subscribe(eventType EventType, name string, fn HandlerFunc) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.handlers[eventType]
	if i := slices.IndexFunc(subs, func(s subscription) bool { return s.name == name }); i >= 0 {
		subs[i].fn = fn
		eb.logger.Debug().Str("event", string(eventType)).Str("handler", name).Msg("handler replaced")
		return
	}
	eb.handlers[eventType] = append(subs, subscription{name: name, fn: fn})
	eb.logger.Debug().Str("event", string(eventType)).Str("handler", name).Msg("subscribed to event")
}

// Unsubscribe removes a named handler from a specific event type.
func (eb *EventBus) Unsubscribe(eventType EventType, name string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs, ok := eb.handlers[eventType]
	if !ok {
		return
	}
	eb.handlers[eventType] = slices.DeleteFunc(slices.Clone(subs), func(s subscription) bool {
		return s.name == name
	})
	eb.logger.Debug().Str("event", string(eventType)).Str("handler", name).Msg("unsubscribed from event")
}

// snapshot returns the handlers for an event type, or nil once stopped.
func (eb *EventBus) snapshot(eventType EventType) []subscription {
	if eb.stopped {
		return nil
	}
	return slices.Clone(eb.handlers[eventType])
}

// Emit publishes an event without waiting for its handlers.
func (eb *EventBus) Emit(ctx context.Context, event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	subs := eb.snapshot(event.Type)
	if len(subs) == 0 {
		return
	}
	eb.logger.Trace().
		Str("event", string(event.Type)).
		Str("source", event.Source).
		Int("handlers", len(subs)).
		Msg("emitting event")

	// Add under the read lock so Stop cannot start waiting before these
	// handlers are counted.
	eb.inflight.Add(len(subs))
	for _, sub := range subs {
		sub := sub // per-iteration copy (Go 1.22 loop semantics)
		go func() {
			defer eb.inflight.Done()
			_ = eb.invoke(ctx, event, sub)
		}()
	}
}

// EmitSync publishes an event and runs its handlers in subscription order.
// Every handler runs even when an earlier one fails; the returned error
// joins all handler errors.
func (eb *EventBus) EmitSync(ctx context.Context, event Event) error {
	eb.mu.RLock()
	subs := eb.snapshot(event.Type)
	eb.mu.RUnlock()

	var errs []error
	for _, sub := range subs {
		if err := eb.invoke(ctx, event, sub); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// invoke runs one handler, turning a panic into an error.
func (eb *EventBus) invoke(ctx context.Context, event Event, sub subscription) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %s panicked: %v", sub.name, r)
		}
		if err != nil {
			eb.logger.Error().
				Err(err).
				Str("event", string(event.Type)).
				Str("source", event.Source).
				Str("handler", sub.name).
				Msg("event handler failed")
		}
	}()
	return sub.fn(ctx, event)
}

// Stop rejects further events and waits for in-flight async handlers.
// It is safe to call more than once.
func (eb *EventBus) Stop() {
	eb.mu.Lock()
	if eb.stopped {
		eb.mu.Unlock()
		return
	}
	eb.stopped = true
	close(eb.stopCh)
	eb.mu.Unlock()

	eb.inflight.Wait()
	eb.logger.Info().Msg("event bus stopped")
}

// StopCh returns a channel that is closed when the EventBus is stopped.
func (eb *EventBus) StopCh() <-chan struct{} {
	return eb.stopCh
}

// HandlerCount returns the number of handlers registered for an event type.
func (eb *EventBus) HandlerCount(eventType EventType) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}
