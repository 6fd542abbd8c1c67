package journey

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/journey-backend/internal/domain/user"
	"gorm.io/datatypes"
)

// UserProgress is the single journey record of a user.
type UserProgress struct {
	UserID        uuid.UUID                   `gorm:"type:uuid;primaryKey;column:user_id" json:"user_id"`
	User          *user.User                  `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	CurrentDay    int                         `gorm:"not null;default:1;column:current_day" json:"current_day"`
	CompletedDays datatypes.JSONSlice[int]    `gorm:"column:completed_days" json:"completed_days"`
	SkillTrees    datatypes.JSONSlice[string] `gorm:"column:skill_trees" json:"skill_trees"`
	TotalPoints   int                         `gorm:"not null;default:0;column:total_points" json:"total_points"`
	Streak        int                         `gorm:"not null;default:0;column:streak" json:"streak"`

	// StartedAt anchors the calendar projection.
	StartedAt      time.Time `gorm:"not null;column:started_at" json:"started_at"`
	LastActiveDate time.Time `gorm:"not null;column:last_active_date" json:"last_active_date"`

	// Version guards read-modify-write cycles (compare-and-set).
	Version   int       `gorm:"not null;default:0;column:version" json:"version"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserProgress) TableName() string { return "user_progress" }

func (p *UserProgress) HasCompleted(day int) bool {
	return p != nil && slices.Contains(p.CompletedDays, day)
}

// IsComplete reports whether all journey days are done.
func (p *UserProgress) IsComplete() bool {
	return p != nil && p.CurrentDay >= JourneyCompleteDay
}

// Clone returns a deep copy safe to mutate.
func (p *UserProgress) Clone() *UserProgress {
	if p == nil {
		return nil
	}
	cp := *p
	cp.User = nil
	cp.CompletedDays = slices.Clone(p.CompletedDays)
	cp.SkillTrees = slices.Clone(p.SkillTrees)
	return &cp
}

// ProgressStats aggregates progress rows for the admin overview.
type ProgressStats struct {
	Started        int64   `json:"started"`
	Completed      int64   `json:"completed"`
	AverageDay     float64 `json:"average_day"`
	TotalPoints    int64   `json:"total_points"`
	CompletedTrees int64   `json:"completed_trees"`
}
