package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/journey-backend/internal/data/repos/testutil"
	types "github.com/yungbote/journey-backend/internal/domain"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	created, err := repo.Create(dbc, []*types.User{
		{
			Email:     "  UserRepo@Example.com ",
			Password:  "pw",
			FirstName: "A",
			LastName:  "B",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: unexpected result: %+v", created)
	}
	if created[0].Email != "userrepo@example.com" || created[0].Role != types.RoleMember {
		t.Fatalf("Create: email=%q role=%q", created[0].Email, created[0].Role)
	}

	gotByIDs, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	gotByEmails, err := repo.GetByEmails(dbc, []string{"USERREPO@example.com"})
	if err != nil {
		t.Fatalf("GetByEmails: %v", err)
	}
	if len(gotByEmails) != 1 || gotByEmails[0].ID != created[0].ID {
		t.Fatalf("GetByEmails: unexpected result: %+v", gotByEmails)
	}

	exists, err := repo.EmailExists(dbc, created[0].Email)
	if err != nil || !exists {
		t.Fatalf("EmailExists: exists=%v err=%v", exists, err)
	}
	exists, err = repo.EmailExists(dbc, "does-not-exist@example.com")
	if err != nil || exists {
		t.Fatalf("EmailExists (missing): exists=%v err=%v", exists, err)
	}
}

func TestUserRepoUpdates(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "updates@example.com")

	first, goals := "Ada", "ship daily"
	if err := repo.UpdateProfile(dbc, u.ID, types.UserProfile{FirstName: &first, Goals: &goals}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if err := repo.UpdateInterests(dbc, u.ID, []string{"fitness", "learning"}); err != nil {
		t.Fatalf("UpdateInterests: %v", err)
	}
	if err := repo.UpdateRole(dbc, u.ID, types.RoleAdmin); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}

	got, err := repo.GetByIDs(dbc, []uuid.UUID{u.ID})
	if err != nil || len(got) != 1 {
		t.Fatalf("GetByIDs: got=%v err=%v", got, err)
	}
	if got[0].FirstName != "Ada" || got[0].LastName != "B" || got[0].Goals != "ship daily" {
		t.Fatalf("profile not applied: %+v", got[0])
	}
	if len(got[0].Interests) != 2 || got[0].Interests[0] != "fitness" {
		t.Fatalf("interests: got=%v", got[0].Interests)
	}
	if !got[0].IsAdmin() {
		t.Fatalf("role not applied")
	}

	err = repo.UpdateInterests(dbc, uuid.New(), []string{"fitness"})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("UpdateInterests (missing): want ErrRecordNotFound got=%v", err)
	}
}

func TestUserRepoList(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	for _, email := range []string{"l1@example.com", "l2@example.com", "l3@example.com"} {
		testutil.SeedUser(t, ctx, tx, email)
	}
	page, total, err := repo.List(dbc, 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total < 3 || len(page) != 2 {
		t.Fatalf("List: total=%d page=%d", total, len(page))
	}
}
