package aggregates

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/journey-backend/internal/data/repos"
	types "github.com/yungbote/journey-backend/internal/domain"
	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
	modjourney "github.com/yungbote/journey-backend/internal/modules/journey"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
)

// ProgressAggregate owns every write to a user's progress record and skill trees.
type ProgressAggregate interface {
	domainagg.Aggregate

	// Init creates the initial record unless one exists. created reports
	// whether this call inserted it.
	Init(ctx context.Context, userID uuid.UUID) (p *types.UserProgress, created bool, err error)
	CompleteDay(ctx context.Context, userID uuid.UUID, day int) (*types.UserProgress, error)
	// EnsureDayTrees materializes the day's trees for interests and returns the
	// persisted rows. Existing rows keep their completion state.
	EnsureDayTrees(ctx context.Context, userID uuid.UUID, day int, interests []string) ([]*types.SkillTree, error)
	ToggleTask(ctx context.Context, key types.SkillTreeKey, taskID string) (*types.SkillTree, error)
	// UpsertSkillTree stores tree under its key, replacing the content of an
	// existing tree, and returns the persisted row.
	UpsertSkillTree(ctx context.Context, tree *types.SkillTree) (*types.SkillTree, error)
}

type ProgressAggregateDeps struct {
	BaseDeps
	Progress  repos.ProgressRepo
	SkillTree repos.SkillTreeRepo
	Templates *modjourney.Templates
	// Location decides calendar days for streaks.
	Location *time.Location
}

type progressAggregate struct {
	deps ProgressAggregateDeps
}

func NewProgressAggregate(deps ProgressAggregateDeps) ProgressAggregate {
	deps.BaseDeps = deps.BaseDeps.withDefaults()
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Templates == nil {
		deps.Templates = modjourney.DefaultTemplates(deps.Log)
	}
	return &progressAggregate{deps: deps}
}

const (
	opProgressInit        = "progress.init"
	opProgressCompleteDay = "progress.complete_day"
	opSkillTreeEnsureDay  = "skill_tree.ensure_day"
	opSkillTreeToggleTask = "skill_tree.toggle_task"
	opSkillTreeUpsert     = "skill_tree.upsert"
)

func (a *progressAggregate) Contract() domainagg.Contract {
	return domainagg.Contract{
		Name:             "progress",
		WriteTxOwnership: domainagg.WriteTxOwnedByAggregate,
		Concurrency:      domainagg.ConcurrencyCompareAndSet,
		Operations: []string{
			opProgressInit,
			opProgressCompleteDay,
			opSkillTreeEnsureDay,
			opSkillTreeToggleTask,
			opSkillTreeUpsert,
		},
	}
}

func (a *progressAggregate) Init(ctx context.Context, userID uuid.UUID) (*types.UserProgress, bool, error) {
	const op = opProgressInit
	if userID == uuid.Nil {
		return nil, false, domainagg.NewError(domainagg.CodeValidation, op, "missing user id", nil)
	}
	var (
		out     *types.UserProgress
		created bool
	)
	err := executeWrite(ctx, a.deps.BaseDeps, op, func(dbc dbctx.Context) error {
		fresh := modjourney.NewProgress(userID, a.deps.Clock())
		ok, err := a.deps.Progress.CreateIfAbsent(dbc, fresh)
		if err != nil {
			return err
		}
		if ok {
			out, created = fresh, true
			return nil
		}
		existing, err := a.deps.Progress.GetByUserID(dbc, userID)
		if err != nil {
			return err
		}
		if existing == nil {
			return RetryableError("progress row vanished after conflicting insert")
		}
		out = existing
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, created, nil
}

func (a *progressAggregate) CompleteDay(ctx context.Context, userID uuid.UUID, day int) (*types.UserProgress, error) {
	const op = opProgressCompleteDay
	var out *types.UserProgress
	err := executeWrite(ctx, a.deps.BaseDeps, op, func(dbc dbctx.Context) error {
		p, err := a.deps.Progress.GetByUserID(dbc, userID)
		if err != nil {
			return err
		}
		if err := RequireFound(p, op, "progress not initialized"); err != nil {
			return err
		}
		expected := p.Version
		if err := modjourney.CompleteDay(p, day, a.deps.Clock(), a.deps.Location); err != nil {
			return err
		}
		ok, err := a.deps.Progress.UpdateByVersion(dbc, p, expected)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "progress changed concurrently"); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *progressAggregate) EnsureDayTrees(ctx context.Context, userID uuid.UUID, day int, interests []string) ([]*types.SkillTree, error) {
	const op = opSkillTreeEnsureDay
	generated, err := modjourney.GenerateSkillTrees(userID, day, interests, a.deps.Templates)
	if err != nil {
		return nil, err
	}
	wanted := make(map[types.Category]bool, len(generated))
	for _, t := range generated {
		wanted[t.Category] = true
	}

	var out []*types.SkillTree
	err = executeWrite(ctx, a.deps.BaseDeps, op, func(dbc dbctx.Context) error {
		if _, err := a.deps.SkillTree.CreateIgnoreDuplicates(dbc, generated); err != nil {
			return err
		}
		stored, err := a.deps.SkillTree.ListByUserDay(dbc, userID, day)
		if err != nil {
			return err
		}
		out = make([]*types.SkillTree, 0, len(stored))
		for _, t := range stored {
			if wanted[t.Category] {
				out = append(out, t)
			}
		}
		// No-op unless day is the current day.
		return a.deps.Progress.SetSkillTreeRefs(dbc, userID, day, modjourney.TreeRefs(out))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *progressAggregate) ToggleTask(ctx context.Context, key types.SkillTreeKey, taskID string) (*types.SkillTree, error) {
	const op = opSkillTreeToggleTask
	if key.UserID == uuid.Nil || !key.Category.Valid() {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("invalid skill tree key %s", key), nil)
	}
	if !types.ValidDay(key.Day) {
		return nil, domainagg.NewError(domainagg.CodeInvalidTransition, op, fmt.Sprintf("day %d outside 1..%d", key.Day, types.JourneyLength), nil)
	}
	var out *types.SkillTree
	err := executeWrite(ctx, a.deps.BaseDeps, op, func(dbc dbctx.Context) error {
		tree, err := a.deps.SkillTree.GetByKey(dbc, key)
		if err != nil {
			return err
		}
		if err := RequireFound(tree, op, "skill tree not found: "+key.String()); err != nil {
			return err
		}
		if err := modjourney.ToggleTask(tree, taskID, a.deps.Clock()); err != nil {
			return err
		}
		ok, err := a.deps.SkillTree.UpdateTasks(dbc, tree)
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "skill tree changed concurrently"); err != nil {
			return err
		}
		out = tree
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *progressAggregate) UpsertSkillTree(ctx context.Context, tree *types.SkillTree) (*types.SkillTree, error) {
	const op = opSkillTreeUpsert
	if tree == nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing skill tree", nil)
	}
	in := *tree
	in.ID = uuid.Nil
	in.Version = 0
	in.User = nil
	if err := modjourney.PrepareSkillTree(&in, a.deps.Clock()); err != nil {
		return nil, err
	}
	var out *types.SkillTree
	err := executeWrite(ctx, a.deps.BaseDeps, op, func(dbc dbctx.Context) error {
		if err := a.deps.SkillTree.Upsert(dbc, &in); err != nil {
			return err
		}
		stored, err := a.deps.SkillTree.GetByKey(dbc, in.Key())
		if err != nil {
			return err
		}
		if stored == nil {
			return RetryableError("skill tree missing after upsert")
		}
		out = stored
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
