package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/journey-backend/internal/data/repos/auth"
	"github.com/yungbote/journey-backend/internal/data/repos/journey"
	"github.com/yungbote/journey-backend/internal/data/repos/user"
	"github.com/yungbote/journey-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type ProgressRepo = journey.ProgressRepo
type SkillTreeRepo = journey.SkillTreeRepo
type FeedbackRepo = journey.FeedbackRepo

// Set is every repo the services need, built over one database handle.
type Set struct {
	User      UserRepo
	UserToken UserTokenRepo
	Progress  ProgressRepo
	SkillTree SkillTreeRepo
	Feedback  FeedbackRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		User:      NewUserRepo(db, log),
		UserToken: NewUserTokenRepo(db, log),
		Progress:  NewProgressRepo(db, log),
		SkillTree: NewSkillTreeRepo(db, log),
		Feedback:  NewFeedbackRepo(db, log),
	}
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}
func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return journey.NewProgressRepo(db, baseLog)
}
func NewSkillTreeRepo(db *gorm.DB, baseLog *logger.Logger) SkillTreeRepo {
	return journey.NewSkillTreeRepo(db, baseLog)
}
func NewFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackRepo {
	return journey.NewFeedbackRepo(db, baseLog)
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string { return user.NormalizeEmail(email) }
