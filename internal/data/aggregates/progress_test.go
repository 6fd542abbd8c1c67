package aggregates_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/journey-backend/internal/data/aggregates"
	aggtestutil "github.com/yungbote/journey-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/journey-backend/internal/data/repos"
	"github.com/yungbote/journey-backend/internal/data/repos/testutil"
	types "github.com/yungbote/journey-backend/internal/domain"
	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
	modjourney "github.com/yungbote/journey-backend/internal/modules/journey"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
)

type fixture struct {
	db    *gorm.DB
	set   repos.Set
	agg   aggregates.ProgressAggregate
	hooks *aggtestutil.HooksRecorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.FreshDB(t)
	log := testutil.Logger(t)
	tpl, err := modjourney.LoadTemplates("")
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	set := repos.NewSet(db, log)
	hooks := &aggtestutil.HooksRecorder{}
	agg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		BaseDeps:  aggregates.BaseDeps{DB: db, Log: log, Hooks: hooks},
		Progress:  set.Progress,
		SkillTree: set.SkillTree,
		Templates: tpl,
		Location:  time.UTC,
	})
	return fixture{db: db, set: set, agg: agg, hooks: hooks}
}

func (f fixture) seedUser(t *testing.T, email string, interests ...string) *types.User {
	t.Helper()
	return testutil.SeedUser(t, context.Background(), f.db, email, interests...)
}

func TestProgressAggregateFirstDayScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "u1@example.com")

	p, created, err := f.agg.Init(ctx, u.ID)
	if err != nil || !created {
		t.Fatalf("Init: created=%v err=%v", created, err)
	}
	if p.CurrentDay != 1 || len(p.CompletedDays) != 0 || p.Streak != 0 || p.TotalPoints != 0 {
		t.Fatalf("initial progress: %+v", p)
	}
	_, created, err = f.agg.Init(ctx, u.ID)
	if err != nil || created {
		t.Fatalf("Init (again): created=%v err=%v", created, err)
	}

	trees, err := f.agg.EnsureDayTrees(ctx, u.ID, 1, nil)
	if err != nil {
		t.Fatalf("EnsureDayTrees: %v", err)
	}
	if len(trees) != 5 {
		t.Fatalf("trees: want=5 got=%d", len(trees))
	}
	for _, tree := range trees {
		if len(tree.Tasks) != 3 || tree.Completed {
			t.Fatalf("tree %s: tasks=%d completed=%v", tree.Category, len(tree.Tasks), tree.Completed)
		}
	}

	stored, err := f.set.Progress.GetByUserID(dbctx.Context{Ctx: ctx}, u.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(stored.SkillTrees) != 5 || stored.SkillTrees[0] != trees[0].Key().String() {
		t.Fatalf("refs: %v", stored.SkillTrees)
	}

	first := trees[0]
	var toggled *types.SkillTree
	for _, task := range first.Tasks {
		toggled, err = f.agg.ToggleTask(ctx, first.Key(), task.ID)
		if err != nil {
			t.Fatalf("ToggleTask %s: %v", task.ID, err)
		}
	}
	if !toggled.Completed || toggled.CompletedAt == nil {
		t.Fatalf("tree should be completed after three toggles")
	}

	p, err = f.agg.CompleteDay(ctx, u.ID, 1)
	if err != nil {
		t.Fatalf("CompleteDay: %v", err)
	}
	if p.CurrentDay != 2 || len(p.CompletedDays) != 1 || p.CompletedDays[0] != 1 || p.Streak != 1 {
		t.Fatalf("after day 1: %+v", p)
	}
	if p.TotalPoints != types.DayCompletionPoints || p.Version != 1 {
		t.Fatalf("points=%d version=%d", p.TotalPoints, p.Version)
	}
	if got := f.hooks.Statuses("progress.complete_day"); len(got) != 1 || got[0] != "success" {
		t.Fatalf("hook statuses: %v", got)
	}
}

func TestProgressAggregateRejectedCompletionLeavesState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "reject@example.com")

	if _, err := f.agg.CompleteDay(ctx, u.ID, 1); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("CompleteDay without progress: want not_found got=%v", err)
	}
	if _, _, err := f.agg.Init(ctx, u.ID); err != nil {
		t.Fatalf("Init: %v", err)
	}
	before, _ := f.set.Progress.GetByUserID(dbctx.Context{Ctx: ctx}, u.ID)

	for _, day := range []int{0, 2, 22} {
		if _, err := f.agg.CompleteDay(ctx, u.ID, day); !domainagg.IsCode(err, domainagg.CodeInvalidTransition) {
			t.Fatalf("day %d: want invalid_transition got=%v", day, err)
		}
	}
	after, _ := f.set.Progress.GetByUserID(dbctx.Context{Ctx: ctx}, u.ID)
	if after.Version != before.Version || after.CurrentDay != before.CurrentDay || len(after.CompletedDays) != 0 {
		t.Fatalf("rejected completion mutated progress: before=%+v after=%+v", before, after)
	}
}

func TestProgressAggregateConcurrentCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "race@example.com")
	if _, _, err := f.agg.Init(ctx, u.ID); err != nil {
		t.Fatalf("Init: %v", err)
	}

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.agg.CompleteDay(ctx, u.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures = append(failures, err)
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("successes: want=1 got=%d (failures=%v)", successes, failures)
	}
	for _, err := range failures {
		code := domainagg.CodeOf(err)
		if code != domainagg.CodeInvalidTransition && code != domainagg.CodeConflict && code != domainagg.CodeRetryable {
			t.Fatalf("unexpected failure: %v", err)
		}
	}
	p, _ := f.set.Progress.GetByUserID(dbctx.Context{Ctx: ctx}, u.ID)
	if p.TotalPoints != types.DayCompletionPoints || len(p.CompletedDays) != 1 {
		t.Fatalf("double completion: %+v", p)
	}
}

func TestProgressAggregateDroppedInterestKeepsRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "interests@example.com")
	if _, _, err := f.agg.Init(ctx, u.ID); err != nil {
		t.Fatalf("Init: %v", err)
	}

	trees, err := f.agg.EnsureDayTrees(ctx, u.ID, 1, []string{"learning", "fitness"})
	if err != nil || len(trees) != 2 {
		t.Fatalf("EnsureDayTrees: len=%d err=%v", len(trees), err)
	}
	fitness := trees[0]
	if fitness.Category != "fitness" {
		t.Fatalf("canonical order: first=%s", fitness.Category)
	}
	if _, err := f.agg.ToggleTask(ctx, fitness.Key(), fitness.Tasks[0].ID); err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}

	trees, err = f.agg.EnsureDayTrees(ctx, u.ID, 1, []string{"creativity", "learning"})
	if err != nil {
		t.Fatalf("EnsureDayTrees (changed): %v", err)
	}
	if len(trees) != 2 || trees[0].Category != "learning" || trees[1].Category != "creativity" {
		t.Fatalf("changed interests: %v", categories(trees))
	}

	trees, err = f.agg.EnsureDayTrees(ctx, u.ID, 1, []string{"fitness"})
	if err != nil || len(trees) != 1 {
		t.Fatalf("EnsureDayTrees (restored): len=%d err=%v", len(trees), err)
	}
	if !trees[0].Tasks[0].Completed {
		t.Fatalf("restored interest lost its completion state")
	}
}

func TestProgressAggregateToggleErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "toggle@example.com")

	key := types.SkillTreeKey{UserID: u.ID, Day: 1, Category: "fitness"}
	if _, err := f.agg.ToggleTask(ctx, key, "x"); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("missing tree: want not_found got=%v", err)
	}
	key.Day = 22
	if _, err := f.agg.ToggleTask(ctx, key, "x"); !domainagg.IsCode(err, domainagg.CodeInvalidTransition) {
		t.Fatalf("day 22: want invalid_transition got=%v", err)
	}
	key.Day, key.Category = 1, "astrology"
	if _, err := f.agg.ToggleTask(ctx, key, "x"); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("bad category: want validation got=%v", err)
	}
}

func TestProgressAggregateMapsRunnerFailures(t *testing.T) {
	hooks := &aggtestutil.HooksRecorder{}
	runner := &aggtestutil.FailingTxRunner{Err: errors.New("database is locked")}
	agg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		BaseDeps: aggregates.BaseDeps{Runner: runner, Hooks: hooks},
	})
	_, _, err := agg.Init(context.Background(), uuid.New())
	if !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("want retryable got=%v", err)
	}
	if len(hooks.Retries) != 1 || hooks.Retries[0] != "progress.init" {
		t.Fatalf("retries: %v", hooks.Retries)
	}
}

func categories(trees []*types.SkillTree) []types.Category {
	out := make([]types.Category, 0, len(trees))
	for _, t := range trees {
		out = append(out, t.Category)
	}
	return out
}

func TestProgressAggregateUpsertSkillTree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.seedUser(t, "upsert@example.com")

	tree := &types.SkillTree{
		UserID:   u.ID,
		Day:      2,
		Category: "productivity",
		Title:    "Plan tomorrow",
		Tasks: []types.Task{
			{ID: "a", Title: "List three priorities", Completed: true},
			{ID: "b", Title: "Block focus time", Completed: true},
			{ID: "c", Title: "Review the day", Completed: true},
		},
	}
	stored, err := f.agg.UpsertSkillTree(ctx, tree)
	if err != nil {
		t.Fatalf("UpsertSkillTree: %v", err)
	}
	if !stored.Completed || stored.CompletedAt == nil || stored.Tasks[0].Slot != "morning" {
		t.Fatalf("stored tree: completed=%v slot=%s", stored.Completed, stored.Tasks[0].Slot)
	}

	tree.Tasks[2].Completed = false
	again, err := f.agg.UpsertSkillTree(ctx, tree)
	if err != nil {
		t.Fatalf("UpsertSkillTree (again): %v", err)
	}
	if again.ID != stored.ID || again.Completed || again.Version != stored.Version+1 {
		t.Fatalf("second upsert: id=%s completed=%v version=%d", again.ID, again.Completed, again.Version)
	}

	tree.Tasks = tree.Tasks[:1]
	if _, err := f.agg.UpsertSkillTree(ctx, tree); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("short tree: want validation got=%v", err)
	}
}

func TestProgressAggregateContract(t *testing.T) {
	c := newFixture(t).agg.Contract()
	if !c.RequiresAggregateOwnedTx() || c.Concurrency != domainagg.ConcurrencyCompareAndSet {
		t.Fatalf("contract: %+v", c)
	}
	for _, op := range []string{"progress.init", "progress.complete_day", "skill_tree.toggle_task"} {
		if !c.Owns(op) {
			t.Fatalf("contract does not list %s", op)
		}
	}
}
