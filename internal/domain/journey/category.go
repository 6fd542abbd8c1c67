package journey

import (
	"fmt"
	"strings"
)

const (
	// JourneyLength is the number of program days.
	JourneyLength = 21
	// JourneyCompleteDay is the currentDay sentinel once every day is done.
	JourneyCompleteDay = JourneyLength + 1
	// TasksPerTree is fixed: one task per slot.
	TasksPerTree = 3
	// TemplateVariants is the number of rotating template entries per category.
	TemplateVariants = 3
	// DayCompletionPoints is awarded by each successful day completion.
	DayCompletionPoints = 100
)

type Category string

const (
	CategoryMindfulness  Category = "mindfulness"
	CategoryFitness      Category = "fitness"
	CategoryLearning     Category = "learning"
	CategoryCreativity   Category = "creativity"
	CategoryProductivity Category = "productivity"
)

// AllCategories is the closed category set in canonical display order.
var AllCategories = []Category{
	CategoryMindfulness,
	CategoryFitness,
	CategoryLearning,
	CategoryCreativity,
	CategoryProductivity,
}

func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Rank is the canonical position of c, or -1 when unknown.
func (c Category) Rank() int {
	for i, known := range AllCategories {
		if c == known {
			return i
		}
	}
	return -1
}

func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}

type Slot string

const (
	SlotMorning Slot = "morning"
	SlotMidday  Slot = "midday"
	SlotEvening Slot = "evening"
)

// Slots are ordered as they appear in a skill tree.
var Slots = [TasksPerTree]Slot{SlotMorning, SlotMidday, SlotEvening}

// ValidDay reports whether day is a journey day (1..21).
func ValidDay(day int) bool { return day >= 1 && day <= JourneyLength }
