package bus

import (
	"context"

	"github.com/yungbote/journey-backend/internal/realtime"
)

// Bus fans realtime messages out between application instances.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

// Emitter publishes through the bus. Each instance's forwarder delivers the
// message to its local hub, this one included.
type Emitter struct {
	Bus      Bus
	Fallback realtime.Emitter
}

func (e *Emitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e == nil || e.Bus == nil {
		return
	}
	if err := e.Bus.Publish(ctx, msg); err != nil && e.Fallback != nil {
		e.Fallback.Emit(ctx, msg)
	}
}
