package services

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/journey-backend/internal/data/repos"
	"github.com/yungbote/journey-backend/internal/data/repos/testutil"
	types "github.com/yungbote/journey-backend/internal/domain"
	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
	"github.com/yungbote/journey-backend/internal/platform/ctxutil"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
	"github.com/yungbote/journey-backend/internal/realtime"
)

func TestGetDayAllCategoriesWhenNoInterests(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := e.signUp(t, "all@example.com").Identity.UserID

	trees, err := e.skillTree.GetDay(ctx, userID, 1)
	require.NoError(t, err)
	require.Len(t, trees, 5)
	for _, tree := range trees {
		require.Equal(t, 1, tree.Day)
		require.Len(t, tree.Tasks, types.TasksPerTree)
		require.False(t, tree.Completed)
	}

	again, err := e.skillTree.GetDay(ctx, userID, 1)
	require.NoError(t, err)
	require.Len(t, again, 5)
	require.Equal(t, trees[0].ID, again[0].ID, "second read returns the stored trees")
}

type countingTreeRepo struct {
	repos.SkillTreeRepo
	byKeys atomic.Int32
}

func (r *countingTreeRepo) GetByKeys(dbc dbctx.Context, keys []types.SkillTreeKey) ([]*types.SkillTree, error) {
	r.byKeys.Add(1)
	return r.SkillTreeRepo.GetByKeys(dbc, keys)
}

func TestGetDayCurrentDayReadsStoredRefs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	userID := e.signUp(t, "refs@example.com", "learning", "fitness").Identity.UserID

	trees := &countingTreeRepo{SkillTreeRepo: e.set.SkillTree}
	agg := e.progress.(*progressService).agg
	svc := NewSkillTreeService(SkillTreeServiceDeps{
		Log:        testutil.Logger(t),
		Aggregate:  agg,
		Users:      e.set.User,
		Progress:   e.set.Progress,
		SkillTrees: trees,
		Center:     e.center,
	})

	first, err := svc.GetDay(ctx, userID, 1)
	require.NoError(t, err)
	require.Len(t, first, 2)
	p, err := e.set.Progress.GetByUserID(dbc, userID)
	require.NoError(t, err)
	require.Equal(t, []string{first[0].Key().String(), first[1].Key().String()}, []string(p.SkillTrees))

	before := trees.byKeys.Load()
	second, err := svc.GetDay(ctx, userID, 1)
	require.NoError(t, err)
	require.Equal(t, before+1, trees.byKeys.Load(), "current day should be read through the stored refs")
	require.Len(t, second, 2)
	require.Equal(t, first[0].ID, second[0].ID)
	require.Equal(t, first[1].ID, second[1].ID)

	// Unreadable refs fall back to generation, which rewrites them.
	require.NoError(t, e.set.Progress.SetSkillTreeRefs(dbc, userID, 1, []string{"garbage"}))
	repaired, err := svc.GetDay(ctx, userID, 1)
	require.NoError(t, err)
	require.Len(t, repaired, 2)
	require.Equal(t, first[0].ID, repaired[0].ID)
	p, err = e.set.Progress.GetByUserID(dbc, userID)
	require.NoError(t, err)
	require.Len(t, p.SkillTrees, 2)
}

func TestGetDayRejectsLockedAndOutOfRangeDays(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := e.signUp(t, "locked@example.com", "fitness").Identity.UserID

	for _, day := range []int{0, 2, 22} {
		_, err := e.skillTree.GetDay(ctx, userID, day)
		require.Truef(t, domainagg.IsCode(err, domainagg.CodeInvalidTransition), "day %d: got %v", day, err)
	}
}

func TestToggleTaskCompletesTree(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := e.signUp(t, "toggle@example.com", "mindfulness").Identity.UserID

	trees, err := e.skillTree.GetDay(ctx, userID, 1)
	require.NoError(t, err)
	require.Len(t, trees, 1)
	key := trees[0].Key()

	var tree *types.SkillTree
	for _, task := range trees[0].Tasks {
		tree, err = e.skillTree.ToggleTask(ctx, key, task.ID)
		require.NoError(t, err)
	}
	require.True(t, tree.Completed)
	require.NotNil(t, tree.CompletedAt)

	recent := e.center.Recent(userID)
	require.NotEmpty(t, recent)
	require.Equal(t, realtime.ToastSuccess, recent[0].Level)

	tree, err = e.skillTree.ToggleTask(ctx, key, trees[0].Tasks[0].ID)
	require.NoError(t, err)
	require.False(t, tree.Completed, "unchecking a task reopens the tree")
	require.Nil(t, tree.CompletedAt)
}

func TestToggleUnknownTaskNotifies(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := e.signUp(t, "unknown@example.com", "learning").Identity.UserID
	trees, err := e.skillTree.GetDay(ctx, userID, 1)
	require.NoError(t, err)

	_, err = e.skillTree.ToggleTask(ctx, trees[0].Key(), "no-such-task")
	require.Error(t, err)
	recent := e.center.Recent(userID)
	require.Len(t, recent, 1)
	require.Equal(t, realtime.ToastError, recent[0].Level)
}

func TestInterestChangeAffectsNextDayRead(t *testing.T) {
	e := newEnv(t)
	s := e.signUp(t, "switch@example.com", "fitness")
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: s.Identity.UserID})

	u, err := e.users.UpdateInterests(ctx, []string{"Creativity", "learning", "creativity"})
	require.NoError(t, err)
	require.Equal(t, []string{"learning", "creativity"}, []string(u.Interests))

	trees, err := e.skillTree.GetDay(ctx, s.Identity.UserID, 1)
	require.NoError(t, err)
	require.Len(t, trees, 2)
	require.Equal(t, types.Category("learning"), trees[0].Category)
	require.Equal(t, types.Category("creativity"), trees[1].Category)
}

func TestCreateSkillTreeUpserts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := e.signUp(t, "create@example.com").Identity.UserID

	generated, err := e.skillTree.GenerateSkillTrees(userID, 1, []string{"productivity"})
	require.NoError(t, err)
	require.Len(t, generated, 1)

	first, err := e.skillTree.CreateSkillTree(ctx, generated[0])
	require.NoError(t, err)

	generated[0].Title = "Renamed"
	second, err := e.skillTree.CreateSkillTree(ctx, generated[0])
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Renamed", second.Title)
	require.Greater(t, second.Version, first.Version)

	_, err = e.skillTree.CreateSkillTree(ctx, &types.SkillTree{UserID: userID, Day: 1, Category: "cooking"})
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)
}
