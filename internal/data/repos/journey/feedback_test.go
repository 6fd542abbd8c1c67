package journey

import (
	"context"
	"testing"

	"github.com/yungbote/journey-backend/internal/data/repos/testutil"
	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
)

func TestFeedbackRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewFeedbackRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "feedbackrepo@example.com")
	if _, err := repo.Create(dbc, []*types.Feedback{
		{UserID: u.ID, Rating: 5, Comment: "great"},
		{UserID: u.ID, Rating: 3},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mine, err := repo.ListByUserID(dbc, u.ID)
	if err != nil || len(mine) != 2 {
		t.Fatalf("ListByUserID: len=%d err=%v", len(mine), err)
	}
	recent, err := repo.ListRecent(dbc, 1)
	if err != nil || len(recent) != 1 {
		t.Fatalf("ListRecent: len=%d err=%v", len(recent), err)
	}
	stats, err := repo.Stats(dbc)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Count < 2 || stats.AverageRating < types.MinRating || stats.AverageRating > types.MaxRating {
		t.Fatalf("Stats: %+v", stats)
	}
}
