package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	types "github.com/yungbote/journey-backend/internal/domain"
	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
	"github.com/yungbote/journey-backend/internal/platform/ctxutil"
	"github.com/yungbote/journey-backend/internal/realtime"
)

func TestUserServiceRequiresRequestUser(t *testing.T) {
	e := newEnv(t)
	_, err := e.users.GetMe(context.Background())
	require.True(t, domainagg.IsCode(err, domainagg.CodeUnauthenticated), "got %v", err)
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	s := e.signUp(t, "profile@example.com")
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: s.Identity.UserID})

	first, goals := "  Ada ", "ship it"
	u, err := e.users.UpdateProfile(ctx, types.UserProfile{FirstName: &first, Goals: &goals})
	require.NoError(t, err)
	require.Equal(t, "Ada", u.FirstName)
	require.Equal(t, "ship it", u.Goals)

	me, err := e.users.GetMe(ctx)
	require.NoError(t, err)
	require.Equal(t, "profile@example.com", me.Email)
	require.Equal(t, "Ada", me.FirstName)
}

func TestUpdateInterestsRejectsUnknown(t *testing.T) {
	e := newEnv(t)
	s := e.signUp(t, "bad-interest@example.com", "fitness")
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: s.Identity.UserID})

	_, err := e.users.UpdateInterests(ctx, []string{"fitness", "knitting"})
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)
	recent := e.center.Recent(s.Identity.UserID)
	require.Len(t, recent, 1)
	require.Equal(t, realtime.ToastError, recent[0].Level)

	me, err := e.users.GetMe(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"fitness"}, []string(me.Interests))
}
