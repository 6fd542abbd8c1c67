package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/journey-backend/internal/data/repos/testutil"
	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
)

func TestUserTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewUserTokenRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "usertokenrepo@example.com")

	makeToken := func(access, refresh string, ttl time.Duration) *types.UserToken {
		return &types.UserToken{
			UserID:       u.ID,
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresAt:    time.Now().Add(ttl),
		}
	}

	t1 := makeToken("access-1", "refresh-1", time.Hour)
	if _, err := repo.Create(dbc, []*types.UserToken{t1}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if t1.ID == uuid.Nil {
		t.Fatalf("Create: id not assigned")
	}

	if rows, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByUserIDs: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByAccessTokens(dbc, []string{t1.AccessToken}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByAccessTokens: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByRefreshTokens(dbc, []string{t1.RefreshToken}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByRefreshTokens: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByAccessTokens(dbc, nil); err != nil || len(rows) != 0 {
		t.Fatalf("GetByAccessTokens (empty): err=%v len=%d", err, len(rows))
	}

	rotated := makeToken("access-r", "refresh-r", time.Hour)
	if _, err := repo.Create(dbc, []*types.UserToken{rotated}); err != nil {
		t.Fatalf("seed rotated: %v", err)
	}
	if ok, err := repo.ConsumeRefreshToken(dbc, "refresh-r"); err != nil || !ok {
		t.Fatalf("ConsumeRefreshToken first use: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.ConsumeRefreshToken(dbc, "refresh-r"); err != nil || ok {
		t.Fatalf("ConsumeRefreshToken second use: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.ConsumeRefreshToken(dbc, ""); err != nil || ok {
		t.Fatalf("ConsumeRefreshToken empty: ok=%v err=%v", ok, err)
	}

	if err := repo.DeleteByIDs(dbc, []uuid.UUID{t1.ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if rows, err := repo.GetByAccessTokens(dbc, []string{t1.AccessToken}); err != nil || len(rows) != 0 {
		t.Fatalf("after DeleteByIDs: err=%v len=%d", err, len(rows))
	}

	stale := makeToken("access-2", "refresh-2", -time.Hour)
	fresh := makeToken("access-3", "refresh-3", time.Hour)
	if _, err := repo.Create(dbc, []*types.UserToken{stale, fresh}); err != nil {
		t.Fatalf("seed tokens: %v", err)
	}
	n, err := repo.DeleteExpired(dbc, time.Now())
	if err != nil || n != 1 {
		t.Fatalf("DeleteExpired: n=%d err=%v", n, err)
	}

	if err := repo.DeleteByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil {
		t.Fatalf("DeleteByUserIDs: %v", err)
	}
	if rows, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("after DeleteByUserIDs: err=%v len=%d", err, len(rows))
	}
}
