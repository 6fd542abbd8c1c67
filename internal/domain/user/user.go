package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	FirstName string    `gorm:"column:first_name" json:"first_name"`
	LastName  string    `gorm:"column:last_name" json:"last_name"`

	// Onboarding answers, all optional.
	FreeTime      string `gorm:"column:free_time" json:"free_time,omitempty"`
	WorkingStatus string `gorm:"column:working_status" json:"working_status,omitempty"`
	StudentStatus string `gorm:"column:student_status" json:"student_status,omitempty"`

	Interests datatypes.JSONSlice[string] `gorm:"column:interests" json:"interests"`
	Goals     string                      `gorm:"column:goals;type:text" json:"goals,omitempty"`
	Role      string                      `gorm:"column:role;not null;default:'member'" json:"role"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if strings.TrimSpace(u.Role) == "" {
		u.Role = RoleMember
	}
	return nil
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// Profile is the mutable subset of User edited from the dashboard.
// Nil fields are left untouched.
type Profile struct {
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	FreeTime      *string `json:"free_time,omitempty"`
	WorkingStatus *string `json:"working_status,omitempty"`
	StudentStatus *string `json:"student_status,omitempty"`
	Goals         *string `json:"goals,omitempty"`
}

// Updates returns the column map for the non-nil fields.
func (p Profile) Updates() map[string]any {
	out := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			out[col] = strings.TrimSpace(*v)
		}
	}
	set("first_name", p.FirstName)
	set("last_name", p.LastName)
	set("free_time", p.FreeTime)
	set("working_status", p.WorkingStatus)
	set("student_status", p.StudentStatus)
	set("goals", p.Goals)
	return out
}
