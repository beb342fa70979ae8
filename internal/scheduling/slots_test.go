package scheduling

import (
	"testing"
	"time"

	"github.com/vitalmed/exam-bookings/pkg/config"
)

func testCfg() config.SchedulingConfig {
	return config.SchedulingConfig{
		SlotCapacity:     5,
		DailyCapacityMin: 60,
		DailyCapacityMax: 100,
		OpeningHour:      8,
		ClosingHour:      17,
		SlotInterval:     30 * time.Minute,
	}
}

func TestCandidateInstantsFullDay(t *testing.T) {
	day := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := CandidateInstants(day, now, testCfg())

	// 08:00 through 17:30 at half-hour steps
	if len(got) != 20 {
		t.Fatalf("len = %d, want 20", len(got))
	}
	if got[0].Format("15:04") != "08:00" {
		t.Errorf("first = %s, want 08:00", got[0].Format("15:04"))
	}
	if got[len(got)-1].Format("15:04") != "17:30" {
		t.Errorf("last = %s, want 17:30", got[len(got)-1].Format("15:04"))
	}
	for i := 1; i < len(got); i++ {
		if !got[i].After(got[i-1]) {
			t.Fatalf("instants out of order at %d: %v then %v", i, got[i-1], got[i])
		}
	}
}

func TestCandidateInstantsPastDayEmpty(t *testing.T) {
	day := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 21, 0, 30, 0, 0, time.UTC)

	if got := CandidateInstants(day, now, testCfg()); got != nil {
		t.Errorf("past day should yield nothing, got %d instants", len(got))
	}
}

func TestCandidateInstantsTodayDropsElapsed(t *testing.T) {
	day := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 20, 14, 0, 0, 0, time.UTC)

	got := CandidateInstants(day, now, testCfg())

	// 14:00 itself is excluded; 14:30 onward remain
	if len(got) == 0 {
		t.Fatal("expected remaining instants for today")
	}
	if got[0].Format("15:04") != "14:30" {
		t.Errorf("first = %s, want 14:30", got[0].Format("15:04"))
	}
	if got[len(got)-1].Format("15:04") != "17:30" {
		t.Errorf("last = %s, want 17:30", got[len(got)-1].Format("15:04"))
	}
}
