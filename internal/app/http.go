package app

import (
	"gorm.io/gorm"

	apphttp "github.com/yungbote/journey-backend/internal/http"
	httpH "github.com/yungbote/journey-backend/internal/http/handlers"
	httpMW "github.com/yungbote/journey-backend/internal/http/middleware"
	"github.com/yungbote/journey-backend/internal/observability"
	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Auth      *httpH.AuthHandler
	User      *httpH.UserHandler
	Progress  *httpH.ProgressHandler
	SkillTree *httpH.SkillTreeHandler
	Feedback  *httpH.FeedbackHandler
	Realtime  *httpH.RealtimeHandler
	Admin     *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services, hub *realtime.SSEHub, center *realtime.Center) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		Auth:      httpH.NewAuthHandler(services.Identity),
		User:      httpH.NewUserHandler(services.User),
		Progress:  httpH.NewProgressHandler(services.Progress),
		SkillTree: httpH.NewSkillTreeHandler(services.SkillTree),
		Feedback:  httpH.NewFeedbackHandler(services.Feedback),
		Realtime:  httpH.NewRealtimeHandler(log, hub, center),
		Admin:     httpH.NewAdminHandler(services.Admin),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Identity),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, tracing string, handlers Handlers, middleware Middleware) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		AllowedOrigins:   cfg.AllowedOrigins,
		TracingService:   tracing,
		AuthMiddleware:   middleware.Auth,
		HealthHandler:    handlers.Health,
		AuthHandler:      handlers.Auth,
		UserHandler:      handlers.User,
		ProgressHandler:  handlers.Progress,
		SkillTreeHandler: handlers.SkillTree,
		FeedbackHandler:  handlers.Feedback,
		RealtimeHandler:  handlers.Realtime,
		AdminHandler:     handlers.Admin,
	})
}
