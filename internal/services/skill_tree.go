package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

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

type SkillTreeService interface {
	// GenerateSkillTrees builds the day's trees without touching storage.
	GenerateSkillTrees(userID uuid.UUID, day int, interests []string) ([]*types.SkillTree, error)
	CreateSkillTree(ctx context.Context, tree *types.SkillTree) (*types.SkillTree, error)
	// GetDay returns the persisted trees for one of the user's unlocked days,
	// creating any that are missing for the user's current interests.
	GetDay(ctx context.Context, userID uuid.UUID, day int) ([]*types.SkillTree, error)
	ToggleTask(ctx context.Context, key types.SkillTreeKey, taskID string) (*types.SkillTree, error)
}

type SkillTreeServiceDeps struct {
	Log        *logger.Logger
	Aggregate  aggregates.ProgressAggregate
	Users      repos.UserRepo
	Progress   repos.ProgressRepo
	SkillTrees repos.SkillTreeRepo
	Templates  *modjourney.Templates
	Center     *realtime.Center
	Metrics    *observability.Metrics
}

type skillTreeService struct {
	log       *logger.Logger
	agg       aggregates.ProgressAggregate
	users     repos.UserRepo
	progress  repos.ProgressRepo
	trees     repos.SkillTreeRepo
	templates *modjourney.Templates
	center    *realtime.Center
	metrics   *observability.Metrics
}

func NewSkillTreeService(deps SkillTreeServiceDeps) SkillTreeService {
	log := deps.Log.With("service", "SkillTreeService")
	if deps.Templates == nil {
		deps.Templates = modjourney.DefaultTemplates(log)
	}
	return &skillTreeService{
		log:       log,
		agg:       deps.Aggregate,
		users:     deps.Users,
		progress:  deps.Progress,
		trees:     deps.SkillTrees,
		templates: deps.Templates,
		center:    deps.Center,
		metrics:   deps.Metrics,
	}
}

func (s *skillTreeService) GenerateSkillTrees(userID uuid.UUID, day int, interests []string) ([]*types.SkillTree, error) {
	return modjourney.GenerateSkillTrees(userID, day, interests, s.templates)
}

func (s *skillTreeService) CreateSkillTree(ctx context.Context, tree *types.SkillTree) (*types.SkillTree, error) {
	stored, err := s.agg.UpsertSkillTree(ctx, tree)
	if err != nil {
		if tree != nil {
			s.center.NotifyError(ctx, tree.UserID, "Could not save skill tree", err)
		}
		return nil, err
	}
	return stored, nil
}

func (s *skillTreeService) GetDay(ctx context.Context, userID uuid.UUID, day int) ([]*types.SkillTree, error) {
	const op = "skill_tree.GetDay"
	dbc := dbctx.Context{Ctx: ctx}
	if !types.ValidDay(day) {
		return nil, domainagg.NewError(domainagg.CodeInvalidTransition, op, fmt.Sprintf("day %d outside 1..%d", day, types.JourneyLength), nil)
	}
	p, err := s.progress.GetByUserID(dbc, userID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, fmt.Errorf("load progress: %w", err))
	}
	if p == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "no progress for user", nil)
	}
	if day > p.CurrentDay {
		return nil, domainagg.NewError(domainagg.CodeInvalidTransition, op, fmt.Sprintf("day %d is not unlocked yet", day), nil)
	}
	users, err := s.users.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, fmt.Errorf("load user: %w", err))
	}
	if len(users) == 0 {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "user not found", nil)
	}
	if day == p.CurrentDay {
		if trees, ok := s.currentDayTrees(dbc, p, users[0].Interests); ok {
			return trees, nil
		}
	}
	return s.agg.EnsureDayTrees(ctx, userID, day, users[0].Interests)
}

// currentDayTrees reads the current day through the refs stored on progress.
// It reports false when the refs are missing, stale for the user's interests,
// or point at rows that are gone, and the caller regenerates.
func (s *skillTreeService) currentDayTrees(dbc dbctx.Context, p *types.UserProgress, interests []string) ([]*types.SkillTree, bool) {
	if s.trees == nil || len(p.SkillTrees) == 0 {
		return nil, false
	}
	keys, err := modjourney.ParseTreeRefs(p.SkillTrees)
	if err != nil {
		s.log.Warn("stored skill tree refs unreadable", "user_id", p.UserID, "error", err)
		return nil, false
	}
	want, err := modjourney.DayCategories(interests)
	if err != nil {
		return nil, false
	}
	if len(keys) != len(want) {
		return nil, false
	}
	for i, k := range keys {
		if k.UserID != p.UserID || k.Day != p.CurrentDay || k.Category != want[i] {
			return nil, false
		}
	}
	trees, err := s.trees.GetByKeys(dbc, keys)
	if err != nil {
		s.log.Warn("load skill trees by ref failed", "user_id", p.UserID, "error", err)
		return nil, false
	}
	if len(trees) != len(keys) {
		return nil, false
	}
	return trees, true
}

func (s *skillTreeService) ToggleTask(ctx context.Context, key types.SkillTreeKey, taskID string) (*types.SkillTree, error) {
	tree, err := s.agg.ToggleTask(ctx, key, taskID)
	if err != nil {
		s.center.NotifyError(ctx, key.UserID, "Could not update task", err)
		return nil, err
	}
	idx := tree.TaskIndex(taskID)
	done := idx >= 0 && tree.Tasks[idx].Completed
	s.metrics.IncTaskToggled(string(tree.Category), done)
	s.center.Publish(ctx, key.UserID, realtime.SSEEventTaskToggled, tree)
	if done && tree.Completed {
		s.center.Notify(ctx, key.UserID, realtime.Toast{
			Level: realtime.ToastSuccess,
			Title: fmt.Sprintf("%s tree complete", tree.Title),
		})
	}
	return tree, nil
}
