package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vitalmed/exam-bookings/internal/domain"
	"github.com/vitalmed/exam-bookings/pkg/logger"
)

// intentKeywords trigger the scheduling flow from the initial state.
var intentKeywords = []string{"agendar", "marcar", "exame", "consulta"}

// Scheduler is the in-process slot/ledger collaborator. Availability and Book
// report capacity problems through domain errors, never through panics.
type Scheduler interface {
	Availability(ctx context.Context, region, examType, date string) (domain.Availability, error)
	Book(ctx context.Context, req domain.AppointmentReq) (*domain.Appointment, error)
}

// SessionStore loads and persists conversation sessions by opaque id.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (domain.Session, error)
	Save(ctx context.Context, sessionID string, sess domain.Session) error
}

// Bot is the conversation state machine. It is stateless itself: each turn
// loads the session, computes the next (state, draft) pair by value, and
// writes it back exactly once.
//
// Two concurrent messages for the same session interleave without locking and
// the last save wins. A single user sends one message at a time, so this
// lost-update window is accepted rather than locked away.
type Bot struct {
	sessions  SessionStore
	scheduler Scheduler
	now       func() time.Time
	loc       *time.Location
}

func New(sessions SessionStore, scheduler Scheduler) *Bot {
	return &Bot{
		sessions:  sessions,
		scheduler: scheduler,
		now:       time.Now,
		loc:       time.Local,
	}
}

// Respond processes one inbound user message and returns the bot reply. The
// session is saved on every turn, whether or not the state changed; an error
// is returned only when the session store itself fails.
func (b *Bot) Respond(ctx context.Context, sessionID, message string) (string, error) {
	sess, err := b.sessions.Load(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}

	reply, next := b.step(ctx, sess, message)

	next.UpdatedAt = b.now()
	if err := b.sessions.Save(ctx, sessionID, next); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return reply, nil
}

func (b *Bot) step(ctx context.Context, sess domain.Session, message string) (string, domain.Session) {
	input := strings.TrimSpace(message)
	folded := strings.ToLower(input)

	switch sess.State {
	case domain.StateAwaitingIntent:
		return b.stepIntent(sess, folded)
	case domain.StateAwaitingRegion:
		return b.stepRegion(sess, input)
	case domain.StateAwaitingExamType:
		return b.stepExamType(sess, input)
	case domain.StateAwaitingDate:
		return b.stepDate(ctx, sess, input)
	case domain.StateAwaitingTime:
		return b.stepTime(sess, input)
	case domain.StateAwaitingConfirmation:
		return b.stepConfirmation(ctx, sess, input)
	case domain.StateCompleted:
		return msgFinished, domain.NewSession()
	default:
		return msgFallback, domain.NewSession()
	}
}

func (b *Bot) stepIntent(sess domain.Session, folded string) (string, domain.Session) {
	for _, kw := range intentKeywords {
		if strings.Contains(folded, kw) {
			sess.State = domain.StateAwaitingRegion
			return msgAskRegion(), sess
		}
	}
	return msgGreeting, sess
}

func (b *Bot) stepRegion(sess domain.Session, input string) (string, domain.Session) {
	region, ok := domain.MatchRegion(input)
	if !ok {
		return msgUnknownRegion(), sess
	}
	sess.Draft.Region = region
	sess.State = domain.StateAwaitingExamType
	return msgAskExamType(region), sess
}

func (b *Bot) stepExamType(sess domain.Session, input string) (string, domain.Session) {
	// Accepted verbatim; the suggested list is advisory only.
	sess.Draft.ExamType = input
	sess.State = domain.StateAwaitingDate
	return msgExamTypeStored(input), sess
}

func (b *Bot) stepDate(ctx context.Context, sess domain.Session, input string) (string, domain.Session) {
	date, day, ok := parseDate(input, b.loc)
	if !ok {
		return msgInvalidDate, sess
	}

	now := b.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(today) {
		return msgPastDate, sess
	}

	sess.Draft.Date = date

	avail, err := b.scheduler.Availability(ctx, sess.Draft.Region, sess.Draft.ExamType, date)
	if err != nil {
		logger.ErrorContext(ctx, "Availability query failed", "error", err, "region", sess.Draft.Region, "date", date)
		return msgAvailabilityErr, sess
	}
	if len(avail.Slots) == 0 {
		return msgNoSlots(sess.Draft.ExamType, sess.Draft.Region, date, avail.Message), sess
	}

	sess.Draft.Offered = avail.Slots
	sess.State = domain.StateAwaitingTime
	return msgSlotList(sess.Draft.ExamType, sess.Draft.Region, date, avail.Slots), sess
}

func (b *Bot) stepTime(sess domain.Session, input string) (string, domain.Session) {
	clock, ok := parseClock(input)
	if !ok {
		return msgInvalidTime, sess
	}

	candidate := sess.Draft.Date + " " + clock
	// Only instants from the list presented at date selection are accepted;
	// the list is deliberately not refreshed here.
	offered := false
	for _, slot := range sess.Draft.Offered {
		if slot == candidate {
			offered = true
			break
		}
	}
	if !offered {
		return msgSlotNotOffered(sess.Draft.Offered), sess
	}

	sess.Draft.Instant = candidate
	sess.State = domain.StateAwaitingConfirmation
	return msgAskName(sess.Draft.ExamType, sess.Draft.Region, sess.Draft.Date, clock), sess
}

func (b *Bot) stepConfirmation(ctx context.Context, sess domain.Session, input string) (string, domain.Session) {
	if utf8.RuneCountInString(input) <= 2 {
		return msgInvalidName, sess
	}
	sess.Draft.ClientName = input

	appt, err := b.scheduler.Book(ctx, domain.AppointmentReq{
		ClientName:  sess.Draft.ClientName,
		Region:      sess.Draft.Region,
		ExamType:    sess.Draft.ExamType,
		ScheduledAt: sess.Draft.Instant,
	})
	switch {
	case err == nil:
		clock := strings.TrimPrefix(sess.Draft.Instant, sess.Draft.Date+" ")
		reply := msgConfirmed(sess.Draft.ExamType, sess.Draft.Region, sess.Draft.Date, clock, sess.Draft.ClientName)
		logger.InfoContext(ctx, "Appointment booked via chat", "appointment_id", appt.ID, "region", appt.Region)
		sess.State = domain.StateCompleted
		sess.Draft = domain.BookingDraft{}
		return reply, sess

	case errors.Is(err, domain.ErrSlotUnavailable):
		// The slot was taken between availability and commit. Keep the
		// collected region/exam/date, drop the instant, and let the user
		// pick again.
		logger.WarnContext(ctx, "Booking lost slot race", "error", err, "instant", sess.Draft.Instant)
		sess.State = domain.StateAwaitingDate
		sess.Draft.Instant = ""
		sess.Draft.Offered = nil
		return msgSlotTaken(), sess

	default:
		logger.ErrorContext(ctx, "Booking commit failed", "error", err)
		next := domain.NewSession()
		return msgBookingErr, next
	}
}
