package realtime

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/journey-backend/internal/platform/apierr"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

// DefaultRecentToasts is how many toasts Recent keeps per user.
const DefaultRecentToasts = 20

type ToastLevel string

const (
	ToastInfo    ToastLevel = "info"
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
)

// Toast is a transient user-facing notification.
type Toast struct {
	ID        uuid.UUID  `json:"id"`
	Level     ToastLevel `json:"level"`
	Title     string     `json:"title"`
	Message   string     `json:"message,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Center is the notification center of one application instance. It keeps a
// short per-user history of toasts and pushes toasts and domain events to the
// user's realtime channel.
type Center struct {
	log   *logger.Logger
	emit  Emitter
	limit int
	clock func() time.Time

	mu     sync.Mutex
	recent map[uuid.UUID][]Toast

	onNotify func(level ToastLevel)
}

type CenterOption func(*Center)

func WithRecentLimit(n int) CenterOption {
	return func(c *Center) {
		if n > 0 {
			c.limit = n
		}
	}
}

func WithClock(clock func() time.Time) CenterOption {
	return func(c *Center) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithNotifyHook is called once per stored toast.
func WithNotifyHook(fn func(level ToastLevel)) CenterOption {
	return func(c *Center) { c.onNotify = fn }
}

// NewCenter builds a center. A nil emitter keeps toasts in memory only.
func NewCenter(log *logger.Logger, emit Emitter, opts ...CenterOption) *Center {
	c := &Center{
		log:    log.With("component", "NotificationCenter"),
		emit:   emit,
		limit:  DefaultRecentToasts,
		clock:  time.Now,
		recent: make(map[uuid.UUID][]Toast),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify records a toast for the user and pushes it to their channel.
func (c *Center) Notify(ctx context.Context, userID uuid.UUID, t Toast) Toast {
	if c == nil || userID == uuid.Nil {
		return t
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = c.clock().UTC()
	}
	if t.Level == "" {
		t.Level = ToastInfo
	}
	t.Title = strings.TrimSpace(t.Title)

	c.mu.Lock()
	list := append(c.recent[userID], t)
	if len(list) > c.limit {
		list = append([]Toast(nil), list[len(list)-c.limit:]...)
	}
	c.recent[userID] = list
	c.mu.Unlock()

	if c.onNotify != nil {
		c.onNotify(t.Level)
	}
	c.Publish(ctx, userID, SSEEventToast, t)
	return t
}

// NotifyError is the toast pushed after a failed mutation. The message is
// the client-facing one, so internal causes read "internal error".
func (c *Center) NotifyError(ctx context.Context, userID uuid.UUID, title string, err error) {
	if err == nil {
		return
	}
	c.Notify(ctx, userID, Toast{Level: ToastError, Title: title, Message: apierr.FromError(err).Error()})
}

// Recent returns the user's toasts, newest first.
func (c *Center) Recent(userID uuid.UUID) []Toast {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.recent[userID]
	out := make([]Toast, len(list))
	for i := range list {
		out[i] = list[len(list)-1-i]
	}
	return out
}

// Publish pushes a domain event to the user's channel.
func (c *Center) Publish(ctx context.Context, userID uuid.UUID, event SSEEvent, data any) {
	if c == nil || c.emit == nil || userID == uuid.Nil {
		return
	}
	c.emit.Emit(ctx, SSEMessage{Channel: UserChannel(userID), Event: event, Data: data})
}
