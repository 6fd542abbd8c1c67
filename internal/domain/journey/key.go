package journey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// SkillTreeKey identifies one skill tree: a user, a journey day and a category.
type SkillTreeKey struct {
	UserID   uuid.UUID
	Day      int
	Category Category
}

func NewSkillTreeKey(userID uuid.UUID, day int, category Category) (SkillTreeKey, error) {
	k := SkillTreeKey{UserID: userID, Day: day, Category: category}
	if err := k.Validate(); err != nil {
		return SkillTreeKey{}, err
	}
	return k, nil
}

func (k SkillTreeKey) Validate() error {
	if k.UserID == uuid.Nil {
		return fmt.Errorf("skill tree key: missing user id")
	}
	if !ValidDay(k.Day) {
		return fmt.Errorf("skill tree key: day %d outside 1..%d", k.Day, JourneyLength)
	}
	if !k.Category.Valid() {
		return fmt.Errorf("skill tree key: unknown category %q", k.Category)
	}
	return nil
}

// String renders <user>_<day>_<category>.
func (k SkillTreeKey) String() string {
	return k.UserID.String() + "_" + strconv.Itoa(k.Day) + "_" + string(k.Category)
}

func ParseSkillTreeKey(raw string) (SkillTreeKey, error) {
	parts := strings.Split(strings.TrimSpace(raw), "_")
	if len(parts) != 3 {
		return SkillTreeKey{}, fmt.Errorf("skill tree key %q: want 3 parts, got %d", raw, len(parts))
	}
	uid, err := uuid.Parse(parts[0])
	if err != nil {
		return SkillTreeKey{}, fmt.Errorf("skill tree key %q: %w", raw, err)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return SkillTreeKey{}, fmt.Errorf("skill tree key %q: bad day: %w", raw, err)
	}
	return NewSkillTreeKey(uid, day, Category(parts[2]))
}
