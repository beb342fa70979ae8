package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/vitalmed/exam-bookings/internal/domain"
	"github.com/vitalmed/exam-bookings/pkg/config"
	"github.com/vitalmed/exam-bookings/pkg/events"
	"github.com/vitalmed/exam-bookings/pkg/logger"
)

// DailyCapacityReachedMsg is reported when the whole day is at the global cap.
const DailyCapacityReachedMsg = "Capacidade máxima de agendamentos para o dia atingida."

// Repository is the slice of the appointment store the service depends on.
type Repository interface {
	Create(ctx context.Context, clientName, region, examType string, at time.Time) (*domain.Appointment, error)
	SlotCounts(ctx context.Context, region string, day time.Time) (map[string]int, error)
	DayTotal(ctx context.Context, day time.Time) (int, error)
	ListUpcoming(ctx context.Context, clientName string, from time.Time) ([]domain.Appointment, error)
}

type Service struct {
	repo Repository
	cfg  config.SchedulingConfig
	bus  events.Publisher
	now  func() time.Time
	loc  *time.Location
}

func NewService(repo Repository, cfg config.SchedulingConfig, bus events.Publisher) *Service {
	return &Service{
		repo: repo,
		cfg:  cfg,
		bus:  bus,
		now:  time.Now,
		loc:  time.Local,
	}
}

// Availability computes the open slots for a region on a calendar date
// (domain.DateLayout). Slot occupancy is per region; the daily ceiling is
// region-agnostic and, once reached, empties the whole day regardless of
// per-slot headroom. The exam type does not constrain availability.
func (s *Service) Availability(ctx context.Context, region, examType, date string) (domain.Availability, error) {
	day, err := time.ParseInLocation(domain.DateLayout, date, s.loc)
	if err != nil {
		return domain.Availability{}, fmt.Errorf("%w: data inválida %q", domain.ErrInvalidInput, date)
	}

	candidates := CandidateInstants(day, s.now(), s.cfg)
	if len(candidates) == 0 {
		return domain.Availability{}, nil
	}

	total, err := s.repo.DayTotal(ctx, day)
	if err != nil {
		return domain.Availability{}, fmt.Errorf("check daily capacity: %w", err)
	}
	if total >= s.cfg.DailyCapacityMax {
		return domain.Availability{Message: DailyCapacityReachedMsg}, nil
	}

	counts, err := s.repo.SlotCounts(ctx, region, day)
	if err != nil {
		return domain.Availability{}, fmt.Errorf("check slot occupancy: %w", err)
	}

	var slots []string
	for _, at := range candidates {
		key := at.Format(domain.InstantLayout)
		if counts[key] < s.cfg.SlotCapacity {
			slots = append(slots, key)
		}
	}
	return domain.Availability{Slots: slots}, nil
}

// Book commits an appointment. The repository re-validates capacity inside the
// insert transaction, so the availability snapshot the caller acted on may be
// stale without risking an overbooked slot.
func (s *Service) Book(ctx context.Context, req domain.AppointmentReq) (*domain.Appointment, error) {
	at, err := time.ParseInLocation(domain.InstantLayout, req.ScheduledAt, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: data/hora inválida %q", domain.ErrInvalidInput, req.ScheduledAt)
	}

	appt, err := s.repo.Create(ctx, req.ClientName, req.Region, req.ExamType, at)
	if err != nil {
		return nil, err
	}

	event := events.AppointmentBookedEvent{
		AppointmentID: appt.ID,
		ClientName:    appt.ClientName,
		Region:        appt.Region,
		ExamType:      appt.ExamType,
		ScheduledAt:   appt.ScheduledAt,
		CreatedAt:     appt.CreatedAt,
	}
	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.AppointmentBooked, event); err != nil {
			logger.ErrorContext(ctx, "Failed to publish appointment booked event", "error", err, "appointment_id", appt.ID)
		}
	}

	return appt, nil
}

// ListUpcoming returns the client's appointments at or after the current
// moment, soonest first.
func (s *Service) ListUpcoming(ctx context.Context, clientName string) ([]domain.Appointment, error) {
	return s.repo.ListUpcoming(ctx, clientName, s.now())
}
