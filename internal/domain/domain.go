package domain

import (
	"github.com/yungbote/journey-backend/internal/domain/auth"
	"github.com/yungbote/journey-backend/internal/domain/journey"
	"github.com/yungbote/journey-backend/internal/domain/user"
)

type User = user.User
type UserProfile = user.Profile
type UserToken = auth.UserToken

type UserProgress = journey.UserProgress
type SkillTree = journey.SkillTree
type SkillTreeKey = journey.SkillTreeKey
type Task = journey.Task
type Category = journey.Category
type Slot = journey.Slot
type Feedback = journey.Feedback
type FeedbackStats = journey.FeedbackStats
type ProgressStats = journey.ProgressStats

const (
	RoleMember = user.RoleMember
	RoleAdmin  = user.RoleAdmin

	JourneyLength       = journey.JourneyLength
	JourneyCompleteDay  = journey.JourneyCompleteDay
	TasksPerTree        = journey.TasksPerTree
	DayCompletionPoints = journey.DayCompletionPoints

	MinRating        = journey.MinRating
	MaxRating        = journey.MaxRating
	MaxCommentLength = journey.MaxCommentLength
)

// Models lists every persisted type, in migration order.
func Models() []any {
	return []any{
		&User{},
		&UserToken{},
		&UserProgress{},
		&SkillTree{},
		&Feedback{},
	}
}

// ValidDay reports whether day is a journey day (1..21).
func ValidDay(day int) bool { return journey.ValidDay(day) }
