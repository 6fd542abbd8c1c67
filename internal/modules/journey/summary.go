package journey

import (
	"time"

	"github.com/yungbote/journey-backend/internal/domain/journey"
)

type DayStatus string

const (
	DayCompleted DayStatus = "completed"
	DayCurrent   DayStatus = "current"
	DayUpcoming  DayStatus = "upcoming"
)

type CalendarDay struct {
	Day    int       `json:"day"`
	Date   string    `json:"date"`
	Status DayStatus `json:"status"`
}

// Summary is the dashboard view of a progress record.
type Summary struct {
	CurrentDay      int           `json:"current_day"`
	CompletedCount  int           `json:"completed_count"`
	DaysRemaining   int           `json:"days_remaining"`
	PercentComplete int           `json:"percent_complete"`
	JourneyComplete bool          `json:"journey_complete"`
	Streak          int           `json:"streak"`
	TotalPoints     int           `json:"total_points"`
	Calendar        []CalendarDay `json:"calendar"`
}

// Summarize derives the dashboard summary. Completed days are placed on the
// schedule implied by StartedAt, the current day on today, and upcoming days
// one per day after today.
func Summarize(p *journey.UserProgress, now time.Time, loc *time.Location) Summary {
	if p == nil {
		return Summary{}
	}
	completed := len(p.CompletedDays)
	s := Summary{
		CurrentDay:      p.CurrentDay,
		CompletedCount:  completed,
		DaysRemaining:   journey.JourneyLength - completed,
		PercentComplete: completed * 100 / journey.JourneyLength,
		JourneyComplete: p.IsComplete(),
		Streak:          p.Streak,
		TotalPoints:     p.TotalPoints,
		Calendar:        make([]CalendarDay, 0, journey.JourneyLength),
	}

	start := calendarDate(p.StartedAt, loc)
	today := calendarDate(now, loc)
	for day := 1; day <= journey.JourneyLength; day++ {
		entry := CalendarDay{Day: day}
		switch {
		case p.HasCompleted(day):
			entry.Status = DayCompleted
			entry.Date = start.AddDate(0, 0, day-1).Format(time.DateOnly)
		case day == p.CurrentDay:
			entry.Status = DayCurrent
			entry.Date = today.Format(time.DateOnly)
		default:
			entry.Status = DayUpcoming
			entry.Date = today.AddDate(0, 0, day-p.CurrentDay).Format(time.DateOnly)
		}
		s.Calendar = append(s.Calendar, entry)
	}
	return s
}
