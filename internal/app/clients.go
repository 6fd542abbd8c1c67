package app

import (
	"fmt"

	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/realtime/bus"
)

type Clients struct {
	// SSEBus is nil when REDIS_ADDR is unset; notifications stay local.
	SSEBus bus.Bus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	if cfg.RedisAddr == "" {
		return Clients{}, nil
	}
	b, err := bus.NewRedisBus(log, bus.Config{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel})
	if err != nil {
		return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
	}
	return Clients{SSEBus: b}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
}
