package sequencer

import (
	"context"
	"errors"

	"github.com/AnsonYua/cardGameMobile-sub001/event"
	"github.com/AnsonYua/cardGameMobile-sub001/notification"
)

// Handler animates events of the types it declares within a batch context T
type Handler[T any] interface {
	// Animate runs the visual routine and returns when it completes
	Animate(ctx context.Context, batch T, ev event.AnimationEvent) error

	// EventTypes returns the notification types this handler animates
	EventTypes() []notification.Type
}

// Router dispatches an event to the handlers registered for its type
// Handlers run in registration order
type Router[T any] struct {
	handlers map[notification.Type][]Handler[T]
}

// NewRouter creates an empty router
func NewRouter[T any]() *Router[T] {
	return &Router[T]{handlers: make(map[notification.Type][]Handler[T])}
}

// Register adds a handler for its declared types
func (r *Router[T]) Register(h Handler[T]) {
	for _, t := range h.EventTypes() {
		r.handlers[t] = append(r.handlers[t], h)
	}
}

// Run implements Runner; events without handlers are a no-op
// Every handler runs even when an earlier one fails
func (r *Router[T]) Run(ctx context.Context, batch T, ev event.AnimationEvent) error {
	var errs []error
	for _, h := range r.handlers[ev.Type] {
		if err := h.Animate(ctx, batch, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HasHandlers reports whether any handler is registered for t
func (r *Router[T]) HasHandlers(t notification.Type) bool {
	return len(r.handlers[t]) > 0
}

// HandlerCount returns the number of handlers registered for t
func (r *Router[T]) HandlerCount(t notification.Type) int {
	return len(r.handlers[t])
}
