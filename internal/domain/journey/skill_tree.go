package journey

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/journey-backend/internal/domain/user"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Task is one slot of a skill tree. Tasks live inside their tree's row.
type Task struct {
	ID          string     `json:"id"`
	Slot        Slot       `json:"slot"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type SkillTree struct {
	ID          uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_skill_tree_user_day_category,priority:1" json:"user_id"`
	User        *user.User                `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Day         int                       `gorm:"not null;uniqueIndex:idx_skill_tree_user_day_category,priority:2" json:"day"`
	Category    Category                  `gorm:"type:text;not null;uniqueIndex:idx_skill_tree_user_day_category,priority:3" json:"category"`
	Title       string                    `gorm:"not null" json:"title"`
	Description string                    `gorm:"type:text" json:"description"`
	Tasks       datatypes.JSONSlice[Task] `gorm:"column:tasks" json:"tasks"`
	Completed   bool                      `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time                `json:"completed_at,omitempty"`
	Version     int                       `gorm:"not null;default:0" json:"version"`
	CreatedAt   time.Time                 `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time                 `gorm:"not null" json:"updated_at"`
}

func (SkillTree) TableName() string { return "skill_tree" }

func (t *SkillTree) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *SkillTree) Key() SkillTreeKey {
	return SkillTreeKey{UserID: t.UserID, Day: t.Day, Category: t.Category}
}

// TaskIndex returns the position of taskID, or -1.
func (t *SkillTree) TaskIndex(taskID string) int {
	for i := range t.Tasks {
		if t.Tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

// AllTasksCompleted is the derived completion flag.
func (t *SkillTree) AllTasksCompleted() bool {
	if len(t.Tasks) == 0 {
		return false
	}
	for _, task := range t.Tasks {
		if !task.Completed {
			return false
		}
	}
	return true
}
