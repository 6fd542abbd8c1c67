package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
	"github.com/yungbote/journey-backend/internal/realtime"
)

func TestFeedbackSubmitValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := e.signUp(t, "fb@example.com").Identity.UserID

	cases := []struct {
		name    string
		user    uuid.UUID
		rating  int
		comment string
		code    domainagg.ErrorCode
	}{
		{"no user", uuid.Nil, 4, "", domainagg.CodeUnauthenticated},
		{"rating low", userID, 0, "", domainagg.CodeValidation},
		{"rating high", userID, 6, "", domainagg.CodeValidation},
		{"comment too long", userID, 3, strings.Repeat("é", 2001), domainagg.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.feedback.Submit(ctx, tc.user, tc.rating, tc.comment)
			require.True(t, domainagg.IsCode(err, tc.code), "got %v", err)
		})
	}
}

func TestFeedbackSubmitAndList(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := e.signUp(t, "fb2@example.com").Identity.UserID

	fb, err := e.feedback.Submit(ctx, userID, 5, "  loved day three  ")
	require.NoError(t, err)
	require.Equal(t, "loved day three", fb.Comment)
	_, err = e.feedback.Submit(ctx, userID, 3, strings.Repeat("x", 2000))
	require.NoError(t, err)

	rows, err := e.feedback.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	recent := e.center.Recent(userID)
	require.NotEmpty(t, recent)
	require.Equal(t, realtime.ToastSuccess, recent[0].Level)
}
