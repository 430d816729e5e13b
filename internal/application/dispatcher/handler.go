package dispatcher

import (
	"context"

	"github.com/peopleops/hris-core/internal/domain/event"
)

// Handler processes domain events
type Handler func(ctx context.Context, evt *event.Event) error

// handlerInfo carries a registered handler and its name for logging
type handlerInfo struct {
	name    string
	handler Handler
}
