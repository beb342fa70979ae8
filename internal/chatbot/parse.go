package chatbot

import (
	"regexp"
	"time"

	"github.com/vitalmed/exam-bookings/internal/domain"
)

var (
	isoDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	brDateRe  = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`)
	clockRe   = regexp.MustCompile(`\d{2}:\d{2}`)
)

// parseDate extracts a calendar date from free text. ISO (YYYY-MM-DD) wins
// over the regional DD/MM/YYYY form, which is normalized to ISO. Returns the
// normalized date string and the parsed day; ok is false when no pattern
// matches or the calendar date does not exist.
func parseDate(input string, loc *time.Location) (string, time.Time, bool) {
	candidate := isoDateRe.FindString(input)
	if candidate == "" {
		if m := brDateRe.FindStringSubmatch(input); m != nil {
			candidate = m[3] + "-" + m[2] + "-" + m[1]
		}
	}
	if candidate == "" {
		return "", time.Time{}, false
	}

	day, err := time.ParseInLocation(domain.DateLayout, candidate, loc)
	if err != nil {
		return "", time.Time{}, false
	}
	return candidate, day, true
}

// parseClock extracts an HH:MM time of day from free text. ok is false when
// no pattern matches or the value is not a real clock time.
func parseClock(input string) (string, bool) {
	candidate := clockRe.FindString(input)
	if candidate == "" {
		return "", false
	}
	if _, err := time.Parse("15:04", candidate); err != nil {
		return "", false
	}
	return candidate, true
}
