package journey

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/journey-backend/internal/domain/aggregates"
	"github.com/yungbote/journey-backend/internal/domain/journey"
)

// NewProgress is the initial record: day 1, nothing completed, no points.
func NewProgress(userID uuid.UUID, now time.Time) *journey.UserProgress {
	return &journey.UserProgress{
		UserID:         userID,
		CurrentDay:     1,
		CompletedDays:  []int{},
		SkillTrees:     []string{},
		TotalPoints:    0,
		Streak:         0,
		StartedAt:      now.UTC(),
		LastActiveDate: now.UTC(),
	}
}

// CompleteDay applies a day completion to p in place. Only the current day
// can be completed. On error p is left untouched.
func CompleteDay(p *journey.UserProgress, day int, now time.Time, loc *time.Location) error {
	const op = "journey.CompleteDay"
	if p == nil {
		return domainagg.NewError(domainagg.CodeNotFound, op, "progress not initialized", nil)
	}
	if !journey.ValidDay(day) {
		return domainagg.NewError(domainagg.CodeInvalidTransition, op, fmt.Sprintf("day %d outside 1..%d", day, journey.JourneyLength), nil)
	}
	if p.IsComplete() {
		return domainagg.NewError(domainagg.CodeInvalidTransition, op, "journey already complete", nil)
	}
	if p.HasCompleted(day) {
		return domainagg.NewError(domainagg.CodeInvalidTransition, op, fmt.Sprintf("day %d already completed", day), nil)
	}
	if day != p.CurrentDay {
		return domainagg.NewError(domainagg.CodeInvalidTransition, op, fmt.Sprintf("day %d is not the current day %d", day, p.CurrentDay), nil)
	}

	next := p.Clone()
	next.CompletedDays = append(next.CompletedDays, day)
	slices.Sort(next.CompletedDays)
	next.CurrentDay = min(day+1, journey.JourneyCompleteDay)
	next.TotalPoints += journey.DayCompletionPoints
	next.Streak = nextStreak(p.Streak, p.LastActiveDate, now, loc)
	next.LastActiveDate = now.UTC()
	// Refs point at the new day's trees once they are materialized.
	next.SkillTrees = []string{}

	if err := CheckProgressInvariants(next); err != nil {
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	next.User = p.User
	*p = *next
	return nil
}

// nextStreak increments on consecutive calendar days, holds on the same day,
// and resets to one after a gap.
func nextStreak(streak int, lastActive, now time.Time, loc *time.Location) int {
	last := calendarDate(lastActive, loc)
	today := calendarDate(now, loc)
	switch {
	case last.AddDate(0, 0, 1).Equal(today):
		return streak + 1
	case !today.After(last):
		return max(streak, 1)
	default:
		return 1
	}
}

func calendarDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// CheckProgressInvariants verifies the structural rules of a progress record.
func CheckProgressInvariants(p *journey.UserProgress) error {
	if p == nil {
		return fmt.Errorf("progress is nil")
	}
	if p.CurrentDay < 1 || p.CurrentDay > journey.JourneyCompleteDay {
		return fmt.Errorf("current day %d outside 1..%d", p.CurrentDay, journey.JourneyCompleteDay)
	}
	seen := make(map[int]bool, len(p.CompletedDays))
	highest := 0
	for _, d := range p.CompletedDays {
		if !journey.ValidDay(d) {
			return fmt.Errorf("completed day %d outside 1..%d", d, journey.JourneyLength)
		}
		if seen[d] {
			return fmt.Errorf("completed day %d repeated", d)
		}
		seen[d] = true
		highest = max(highest, d)
	}
	if highest > 0 && p.CurrentDay != highest+1 {
		return fmt.Errorf("current day %d does not follow last completed day %d", p.CurrentDay, highest)
	}
	if p.TotalPoints < 0 || p.Streak < 0 {
		return fmt.Errorf("negative counters: points=%d streak=%d", p.TotalPoints, p.Streak)
	}
	return nil
}

// ToggleTask flips one task and recomputes the tree's completion flag. The
// tree is a journey day's tree and must hold exactly three tasks.
func ToggleTask(tree *journey.SkillTree, taskID string, now time.Time) error {
	const op = "journey.ToggleTask"
	if tree == nil {
		return domainagg.NewError(domainagg.CodeNotFound, op, "skill tree not found", nil)
	}
	if !journey.ValidDay(tree.Day) {
		return domainagg.NewError(domainagg.CodeInvalidTransition, op, fmt.Sprintf("day %d outside 1..%d", tree.Day, journey.JourneyLength), nil)
	}
	if len(tree.Tasks) != journey.TasksPerTree {
		return domainagg.NewError(domainagg.CodeInternal, op, fmt.Sprintf("tree %s has %d tasks", tree.Key(), len(tree.Tasks)), nil)
	}
	idx := tree.TaskIndex(taskID)
	if idx < 0 {
		return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("task %q not in tree %s", taskID, tree.Key()), nil)
	}

	ts := now.UTC()
	tasks := slices.Clone(tree.Tasks)
	task := tasks[idx]
	task.Completed = !task.Completed
	if task.Completed {
		task.CompletedAt = &ts
	} else {
		task.CompletedAt = nil
	}
	tasks[idx] = task
	tree.Tasks = tasks

	wasCompleted := tree.Completed
	tree.Completed = tree.AllTasksCompleted()
	switch {
	case tree.Completed && !wasCompleted:
		tree.CompletedAt = &ts
	case !tree.Completed:
		tree.CompletedAt = nil
	}
	return nil
}

// PrepareSkillTree validates a caller-supplied tree before it is stored and
// derives its completion fields from the tasks.
func PrepareSkillTree(tree *journey.SkillTree, now time.Time) error {
	const op = "journey.PrepareSkillTree"
	if tree == nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing skill tree", nil)
	}
	if err := tree.Key().Validate(); err != nil {
		return domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	if len(tree.Tasks) != journey.TasksPerTree {
		return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("want %d tasks, got %d", journey.TasksPerTree, len(tree.Tasks)), nil)
	}
	ids := make(map[string]bool, len(tree.Tasks))
	tasks := slices.Clone(tree.Tasks)
	for i := range tasks {
		if tasks[i].ID == "" || ids[tasks[i].ID] {
			return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("task %d: missing or duplicate id", i), nil)
		}
		ids[tasks[i].ID] = true
		if tasks[i].Slot == "" {
			tasks[i].Slot = journey.Slots[i]
		}
		if !tasks[i].Completed {
			tasks[i].CompletedAt = nil
		}
	}
	tree.Tasks = tasks

	tree.Completed = tree.AllTasksCompleted()
	if !tree.Completed {
		tree.CompletedAt = nil
	} else if tree.CompletedAt == nil {
		ts := now.UTC()
		tree.CompletedAt = &ts
	}
	return nil
}
