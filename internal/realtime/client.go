package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/journey-backend/internal/platform/logger"
)

// outboundBuffer bounds how far a slow client can fall behind before
// messages are dropped for it.
const outboundBuffer = 32

type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	Logger   *logger.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// Done is closed when the client is removed from the hub.
func (c *SSEClient) Done() <-chan struct{} { return c.done }
