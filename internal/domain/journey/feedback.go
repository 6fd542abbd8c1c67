package journey

import (
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/journey-backend/internal/domain/user"
	"gorm.io/gorm"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 2000
)

// Feedback is append-only.
type Feedback struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	Rating    int        `gorm:"not null" json:"rating"`
	Comment   string     `gorm:"type:text" json:"comment"`
	CreatedAt time.Time  `gorm:"not null;index" json:"created_at"`
}

func (Feedback) TableName() string { return "feedback" }

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// FeedbackStats is the admin overview of collected feedback.
type FeedbackStats struct {
	Count         int64   `json:"count"`
	AverageRating float64 `json:"average_rating"`
}
