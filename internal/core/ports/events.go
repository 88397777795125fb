package ports

import (
	"context"

	"github.com/storefront/commerce/internal/core/domain"
)

// EventPublisher delivers a domain event to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// EventSink accepts events for asynchronous delivery without blocking the caller
// beyond queue capacity.
type EventSink interface {
	Emit(event domain.Event)
}
