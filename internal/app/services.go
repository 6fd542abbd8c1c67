package app

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/journey-backend/internal/data/aggregates"
	"github.com/yungbote/journey-backend/internal/data/repos"
	modjourney "github.com/yungbote/journey-backend/internal/modules/journey"
	"github.com/yungbote/journey-backend/internal/observability"
	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/realtime"
	"github.com/yungbote/journey-backend/internal/services"
)

type Services struct {
	Identity  services.IdentityGateway
	Progress  services.ProgressService
	SkillTree services.SkillTreeService
	User      services.UserService
	Feedback  services.FeedbackService
	Admin     services.AdminService

	// unsubscribe detaches the lazy progress init from the gateway.
	unsubscribe func()
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, set repos.Set, center *realtime.Center, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	var templates *modjourney.Templates
	if cfg.TemplatesPath != "" {
		tpl, err := modjourney.LoadTemplates(cfg.TemplatesPath)
		if err != nil {
			return Services{}, fmt.Errorf("load journey templates: %w", err)
		}
		templates = tpl
	} else {
		templates = modjourney.DefaultTemplates(log)
	}

	agg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		BaseDeps: aggregates.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: aggregates.NewObservabilityHooks(metrics),
		},
		Progress:  set.Progress,
		SkillTree: set.SkillTree,
		Templates: templates,
		Location:  cfg.Location,
	})

	provider := services.NewIdentityProvider(db, log, set.User, set.UserToken, services.IdentityConfig{
		JWTSecret:   cfg.JWTSecretKey,
		AccessTTL:   cfg.AccessTokenTTL,
		RefreshTTL:  cfg.RefreshTokenTTL,
		AdminEmails: cfg.AdminEmails,
		BcryptCost:  bcrypt.DefaultCost,
	})
	gateway := services.NewIdentityGateway(log, provider, metrics)

	progress := services.NewProgressService(services.ProgressServiceDeps{
		Log:       log,
		Aggregate: agg,
		Progress:  set.Progress,
		Center:    center,
		Metrics:   metrics,
		Location:  cfg.Location,
	})

	return Services{
		Identity: gateway,
		Progress: progress,
		SkillTree: services.NewSkillTreeService(services.SkillTreeServiceDeps{
			Log:        log,
			Aggregate:  agg,
			Users:      set.User,
			Progress:   set.Progress,
			SkillTrees: set.SkillTree,
			Templates:  templates,
			Center:     center,
			Metrics:    metrics,
		}),
		User:        services.NewUserService(log, set.User, center),
		Feedback:    services.NewFeedbackService(log, set.Feedback, center),
		Admin:       services.NewAdminService(log, set),
		unsubscribe: gateway.OnAuthStateChanged(progress.HandleAuthState),
	}, nil
}
