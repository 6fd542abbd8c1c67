package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/journey-backend/internal/http/handlers"
	httpMW "github.com/yungbote/journey-backend/internal/http/middleware"
	"github.com/yungbote/journey-backend/internal/observability"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AllowedOrigins []string
	// TracingService names the otelgin spans; empty disables the middleware.
	TracingService string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	AuthHandler      *httpH.AuthHandler
	UserHandler      *httpH.UserHandler
	ProgressHandler  *httpH.ProgressHandler
	SkillTreeHandler *httpH.SkillTreeHandler
	FeedbackHandler  *httpH.FeedbackHandler
	RealtimeHandler  *httpH.RealtimeHandler
	AdminHandler     *httpH.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	if cfg.AuthMiddleware == nil {
		return r
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me/profile", cfg.UserHandler.UpdateProfile)
			protected.PUT("/me/interests", cfg.UserHandler.UpdateInterests)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			protected.GET("/progress", cfg.ProgressHandler.GetProgress)
			protected.POST("/progress/init", cfg.ProgressHandler.InitProgress)
			protected.GET("/progress/summary", cfg.ProgressHandler.GetSummary)
			protected.POST("/progress/days/:day/complete", cfg.ProgressHandler.CompleteDay)
		}

		// Skill trees
		if cfg.SkillTreeHandler != nil {
			protected.GET("/days/:day/skill-trees", cfg.SkillTreeHandler.GetDay)
			protected.POST("/days/:day/skill-trees/:category/tasks/:taskId/toggle", cfg.SkillTreeHandler.ToggleTask)
		}

		if cfg.FeedbackHandler != nil {
			protected.POST("/feedback", cfg.FeedbackHandler.Submit)
		}

		// Realtime (SSE) and toasts
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
			protected.GET("/notifications", cfg.RealtimeHandler.Notifications)
		}
	}

	admin := protected.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAdmin())
	{
		if cfg.AdminHandler != nil {
			admin.GET("/users", cfg.AdminHandler.ListUsers)
			admin.GET("/stats", cfg.AdminHandler.Stats)
		}
		if cfg.FeedbackHandler != nil {
			admin.GET("/feedback", cfg.FeedbackHandler.ListRecent)
		}
	}

	return r
}
