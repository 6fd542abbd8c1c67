package journey

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/journey-backend/internal/data/repos/testutil"
	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
)

func makeTree(userID uuid.UUID, day int, category types.Category) *types.SkillTree {
	return &types.SkillTree{
		UserID:   userID,
		Day:      day,
		Category: category,
		Title:    string(category),
		Tasks: []types.Task{
			{ID: "a", Slot: "morning", Title: "a"},
			{ID: "b", Slot: "midday", Title: "b"},
			{ID: "c", Slot: "evening", Title: "c"},
		},
	}
}

func TestSkillTreeRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewSkillTreeRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "skilltreerepo@example.com")

	n, err := repo.CreateIgnoreDuplicates(dbc, []*types.SkillTree{
		makeTree(u.ID, 1, "productivity"),
		makeTree(u.ID, 1, "mindfulness"),
	})
	if err != nil || n != 2 {
		t.Fatalf("CreateIgnoreDuplicates: n=%d err=%v", n, err)
	}

	trees, err := repo.ListByUserDay(dbc, u.ID, 1)
	if err != nil || len(trees) != 2 {
		t.Fatalf("ListByUserDay: len=%d err=%v", len(trees), err)
	}
	if trees[0].Category != "mindfulness" || trees[1].Category != "productivity" {
		t.Fatalf("ListByUserDay: order=%s,%s", trees[0].Category, trees[1].Category)
	}

	tree := trees[0]
	tree.Tasks[0].Completed = true
	ok, err := repo.UpdateTasks(dbc, tree)
	if err != nil || !ok {
		t.Fatalf("UpdateTasks: ok=%v err=%v", ok, err)
	}
	stale := *tree
	stale.Version = 0
	ok, err = repo.UpdateTasks(dbc, &stale)
	if err != nil || ok {
		t.Fatalf("UpdateTasks (stale): ok=%v err=%v", ok, err)
	}

	// Regenerating keeps the stored completion state.
	n, err = repo.CreateIgnoreDuplicates(dbc, []*types.SkillTree{makeTree(u.ID, 1, "mindfulness")})
	if err != nil || n != 0 {
		t.Fatalf("CreateIgnoreDuplicates (dup): n=%d err=%v", n, err)
	}
	got, err := repo.GetByKey(dbc, tree.Key())
	if err != nil || got == nil {
		t.Fatalf("GetByKey: got=%v err=%v", got, err)
	}
	if !got.Tasks[0].Completed || got.Version != 1 {
		t.Fatalf("GetByKey: tasks=%+v version=%d", got.Tasks, got.Version)
	}

	missing, err := repo.GetByKey(dbc, types.SkillTreeKey{UserID: u.ID, Day: 2, Category: "fitness"})
	if err != nil || missing != nil {
		t.Fatalf("GetByKey (missing): got=%v err=%v", missing, err)
	}

	byKeys, err := repo.GetByKeys(dbc, []types.SkillTreeKey{
		{UserID: u.ID, Day: 1, Category: "productivity"},
		{UserID: u.ID, Day: 1, Category: "mindfulness"},
		{UserID: u.ID, Day: 3, Category: "learning"},
	})
	if err != nil || len(byKeys) != 2 {
		t.Fatalf("GetByKeys: len=%d err=%v", len(byKeys), err)
	}
}

func TestSkillTreeRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewSkillTreeRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "skilltreeupsert@example.com")

	first := makeTree(u.ID, 4, "learning")
	if err := repo.Upsert(dbc, first); err != nil {
		t.Fatalf("Upsert (insert): %v", err)
	}
	stored, err := repo.GetByKey(dbc, first.Key())
	if err != nil || stored == nil || stored.Version != 0 {
		t.Fatalf("GetByKey after insert: got=%+v err=%v", stored, err)
	}

	second := makeTree(u.ID, 4, "learning")
	second.Title = "Read one chapter"
	second.Tasks[1].Completed = true
	if err := repo.Upsert(dbc, second); err != nil {
		t.Fatalf("Upsert (update): %v", err)
	}
	got, err := repo.GetByKey(dbc, first.Key())
	if err != nil || got == nil {
		t.Fatalf("GetByKey after update: err=%v", err)
	}
	if got.ID != stored.ID || got.Title != "Read one chapter" || !got.Tasks[1].Completed || got.Version != 1 {
		t.Fatalf("upserted row: id=%s title=%q version=%d", got.ID, got.Title, got.Version)
	}
}
