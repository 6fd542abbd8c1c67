package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/journey-backend/internal/data/aggregates"
	"github.com/yungbote/journey-backend/internal/data/repos"
	types "github.com/yungbote/journey-backend/internal/domain"
	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
	modjourney "github.com/yungbote/journey-backend/internal/modules/journey"
	"github.com/yungbote/journey-backend/internal/observability"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/platform/logger"
	"github.com/yungbote/journey-backend/internal/realtime"
)

type ProgressService interface {
	// InitProgress creates the user's record unless it exists.
	InitProgress(ctx context.Context, userID uuid.UUID) (*types.UserProgress, bool, error)
	// GetProgress returns a not_found error when the user has no record yet.
	GetProgress(ctx context.Context, userID uuid.UUID) (*types.UserProgress, error)
	CompleteDay(ctx context.Context, userID uuid.UUID, day int) (*types.UserProgress, error)
	GetSummary(ctx context.Context, userID uuid.UUID) (*modjourney.Summary, error)
	// HandleAuthState lazily initializes progress the first time an identity
	// is seen. It is registered with IdentityGateway.OnAuthStateChanged.
	HandleAuthState(ctx context.Context, id *Identity)
}

type ProgressServiceDeps struct {
	Log       *logger.Logger
	Aggregate aggregates.ProgressAggregate
	Progress  repos.ProgressRepo
	Center    *realtime.Center
	Metrics   *observability.Metrics
	Location  *time.Location
	Clock     func() time.Time
}

type progressService struct {
	log      *logger.Logger
	agg      aggregates.ProgressAggregate
	progress repos.ProgressRepo
	center   *realtime.Center
	metrics  *observability.Metrics
	loc      *time.Location
	clock    func() time.Time

	locks *userLocks
	init  singleflight.Group
	seen  sync.Map
}

func NewProgressService(deps ProgressServiceDeps) ProgressService {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &progressService{
		log:      deps.Log.With("service", "ProgressService"),
		agg:      deps.Aggregate,
		progress: deps.Progress,
		center:   deps.Center,
		metrics:  deps.Metrics,
		loc:      deps.Location,
		clock:    deps.Clock,
		locks:    newUserLocks(),
	}
}

func (s *progressService) InitProgress(ctx context.Context, userID uuid.UUID) (*types.UserProgress, bool, error) {
	p, created, err := s.agg.Init(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	s.seen.Store(userID, true)
	if created {
		s.metrics.IncProgressInit()
		s.log.Info("progress initialized", "user_id", userID)
		s.center.Publish(ctx, userID, realtime.SSEEventProgressUpdated, p)
	}
	return p, created, nil
}

func (s *progressService) GetProgress(ctx context.Context, userID uuid.UUID) (*types.UserProgress, error) {
	const op = "progress.Get"
	p, err := s.progress.GetByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, fmt.Errorf("load progress: %w", err))
	}
	if p == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "no progress for user", nil)
	}
	return p, nil
}

func (s *progressService) CompleteDay(ctx context.Context, userID uuid.UUID, day int) (*types.UserProgress, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	p, err := s.agg.CompleteDay(ctx, userID, day)
	if err != nil {
		s.center.NotifyError(ctx, userID, fmt.Sprintf("Could not complete day %d", day), err)
		return nil, err
	}
	s.metrics.IncDayCompleted()
	s.log.Info("day completed", "user_id", userID, "day", day, "streak", p.Streak)

	title := fmt.Sprintf("Day %d complete", day)
	if p.IsComplete() {
		title = "Journey complete"
	}
	s.center.Notify(ctx, userID, realtime.Toast{
		Level:   realtime.ToastSuccess,
		Title:   title,
		Message: fmt.Sprintf("Streak %d, %d points", p.Streak, p.TotalPoints),
	})
	s.center.Publish(ctx, userID, realtime.SSEEventDayCompleted, map[string]any{"day": day})
	s.center.Publish(ctx, userID, realtime.SSEEventProgressUpdated, p)
	return p, nil
}

func (s *progressService) GetSummary(ctx context.Context, userID uuid.UUID) (*modjourney.Summary, error) {
	p, err := s.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := modjourney.Summarize(p, s.clock(), s.loc)
	return &summary, nil
}

func (s *progressService) HandleAuthState(ctx context.Context, id *Identity) {
	if id == nil || id.UserID == uuid.Nil {
		return
	}
	if _, ok := s.seen.Load(id.UserID); ok {
		return
	}
	// Detached from the request: one caller's cancellation must not fail the
	// init for every caller sharing the flight.
	initCtx := context.WithoutCancel(ctx)
	_, err, _ := s.init.Do(id.UserID.String(), func() (any, error) {
		_, _, err := s.InitProgress(initCtx, id.UserID)
		return nil, err
	})
	if err != nil {
		s.log.Warn("lazy progress init failed", "user_id", id.UserID, "error", err)
	}
}
