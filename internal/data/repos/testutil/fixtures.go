package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/journey-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, interests ...string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
		Interests: interests,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, currentDay int, completed ...int) *types.UserProgress {
	tb.Helper()
	now := time.Now().UTC()
	p := &types.UserProgress{
		UserID:         userID,
		CurrentDay:     currentDay,
		CompletedDays:  completed,
		SkillTrees:     []string{},
		TotalPoints:    len(completed) * types.DayCompletionPoints,
		Streak:         len(completed),
		StartedAt:      now,
		LastActiveDate: now,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return p
}
