package journey

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSummarize(t *testing.T) {
	p := NewProgress(uuid.New(), t0)
	for day := 1; day <= 3; day++ {
		if err := CompleteDay(p, day, t0.AddDate(0, 0, day-1), time.UTC); err != nil {
			t.Fatalf("day %d: %v", day, err)
		}
	}
	now := t0.AddDate(0, 0, 3)
	s := Summarize(p, now, time.UTC)

	if s.CurrentDay != 4 || s.CompletedCount != 3 || s.DaysRemaining != 18 {
		t.Fatalf("counters: %+v", s)
	}
	if s.PercentComplete != 14 {
		t.Fatalf("percent: want=14 got=%d", s.PercentComplete)
	}
	if s.JourneyComplete {
		t.Fatalf("journey should not be complete")
	}
	if len(s.Calendar) != 21 {
		t.Fatalf("calendar: want=21 got=%d", len(s.Calendar))
	}
	if s.Calendar[0].Status != DayCompleted || s.Calendar[0].Date != "2026-03-02" {
		t.Fatalf("day 1: %+v", s.Calendar[0])
	}
	if s.Calendar[3].Status != DayCurrent || s.Calendar[3].Date != "2026-03-05" {
		t.Fatalf("day 4: %+v", s.Calendar[3])
	}
	if s.Calendar[4].Status != DayUpcoming || s.Calendar[4].Date != "2026-03-06" {
		t.Fatalf("day 5: %+v", s.Calendar[4])
	}
}

func TestSummarizeNil(t *testing.T) {
	if s := Summarize(nil, t0, time.UTC); s.CurrentDay != 0 || s.Calendar != nil {
		t.Fatalf("nil progress: %+v", s)
	}
}
