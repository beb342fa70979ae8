package scheduling

import (
	"time"

	"github.com/vitalmed/exam-bookings/pkg/config"
)

// CandidateInstants enumerates the bookable instants of one calendar day:
// every SlotInterval from OpeningHour:00 through the last step inside
// ClosingHour (17:30 with the default window).
// Instants at or before now are dropped when the day is today; a day strictly
// before today yields nothing.
func CandidateInstants(day time.Time, now time.Time, cfg config.SchedulingConfig) []time.Time {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if dayStart.Before(todayStart) {
		return nil
	}

	var out []time.Time
	closing := time.Date(day.Year(), day.Month(), day.Day(), cfg.ClosingHour, 0, 0, 0, day.Location()).
		Add(time.Hour - cfg.SlotInterval)
	for t := dayStart.Add(time.Duration(cfg.OpeningHour) * time.Hour); !t.After(closing); t = t.Add(cfg.SlotInterval) {
		if dayStart.Equal(todayStart) && !t.After(now) {
			continue
		}
		out = append(out, t)
	}
	return out
}
