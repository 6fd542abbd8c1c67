package app

import (
	"context"
	"time"

	"github.com/yungbote/journey-backend/internal/data/repos"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

// runTokenJanitor deletes sessions whose refresh window has passed, once per
// interval, until ctx ends.
func runTokenJanitor(ctx context.Context, log *logger.Logger, tokens repos.UserTokenRepo, interval time.Duration, clock func() time.Time) {
	if interval <= 0 {
		return
	}
	log = log.With("worker", "TokenJanitor")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepExpiredTokens(ctx, log, tokens, clock())
		}
	}
}

func sweepExpiredTokens(ctx context.Context, log *logger.Logger, tokens repos.UserTokenRepo, now time.Time) int64 {
	n, err := tokens.DeleteExpired(dbctx.Context{Ctx: ctx}, now)
	if err != nil {
		log.Warn("expired token sweep failed", "error", err)
		return 0
	}
	if n > 0 {
		log.Info("expired tokens removed", "count", n)
	}
	return n
}
