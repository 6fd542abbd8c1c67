package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/realtime"
)

const (
	defaultChannel = "journey:sse"
	dialTimeout    = 5 * time.Second
)

type Config struct {
	Addr    string
	Channel string
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisBus connects to cfg.Addr and fails unless Redis answers PING.
func NewRedisBus(log *logger.Logger, cfg Config) (Bus, error) {
	if log == nil {
		return nil, errors.New("redis bus: logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("redis bus: missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, DialTimeout: dialTimeout})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis bus: ping %s: %w", addr, err)
	}
	return NewRedisBusFromClient(log, rdb, cfg.Channel), nil
}

// NewRedisBusFromClient wraps rdb without checking the connection.
func NewRedisBusFromClient(log *logger.Logger, rdb *goredis.Client, channel string) Bus {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = defaultChannel
	}
	return &redisBus{log: log.With("service", "RedisSSEBus", "channel", channel), rdb: rdb, channel: channel}
}

// Client returns the go-redis client behind b, or nil for other Bus kinds.
func Client(b Bus) *goredis.Client {
	rb, ok := b.(*redisBus)
	if !ok || rb == nil {
		return nil
	}
	return rb.rdb
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b == nil || b.rdb == nil {
		return errors.New("redis bus: not initialized")
	}
	if err := validateMessage(msg); err != nil {
		return err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("redis bus: encode: %w", err)
	}
	return b.rdb.Publish(ctx, b.channel, payload).Err()
}

// StartForwarder subscribes and hands every valid message to onMsg until ctx
// ends. It returns once the subscription is confirmed.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if b == nil || b.rdb == nil {
		return errors.New("redis bus: not initialized")
	}
	if onMsg == nil {
		return errors.New("redis bus: onMsg callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis bus: subscribe: %w", err)
	}
	go b.forward(ctx, sub, onMsg)
	return nil
}

func (b *redisBus) forward(ctx context.Context, sub *goredis.PubSub, onMsg func(m realtime.SSEMessage)) {
	defer sub.Close()
	in := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				return
			}
			if m == nil {
				continue
			}
			msg, err := decodeMessage([]byte(m.Payload))
			if err != nil {
				b.log.Warn("dropping bus payload", "error", err)
				continue
			}
			onMsg(msg)
		}
	}
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}

func decodeMessage(payload []byte) (realtime.SSEMessage, error) {
	var msg realtime.SSEMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return realtime.SSEMessage{}, fmt.Errorf("decode: %w", err)
	}
	if err := validateMessage(msg); err != nil {
		return realtime.SSEMessage{}, err
	}
	return msg, nil
}

// validateMessage accepts only per-user messages that name an event.
func validateMessage(msg realtime.SSEMessage) error {
	if !strings.HasPrefix(msg.Channel, realtime.UserChannelPrefix) {
		return fmt.Errorf("redis bus: channel %q is not a user channel", msg.Channel)
	}
	if msg.Event == "" {
		return errors.New("redis bus: message without event")
	}
	return nil
}
