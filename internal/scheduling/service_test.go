package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vitalmed/exam-bookings/internal/domain"
	"github.com/vitalmed/exam-bookings/pkg/events"
)

// ---------- Mocks ----------

type mockRepo struct {
	slotCounts map[string]int
	dayTotal   int
	countsErr  error

	created   []domain.Appointment
	createErr error
	nextID    int64

	upcoming []domain.Appointment
}

func (m *mockRepo) Create(_ context.Context, clientName, region, examType string, at time.Time) (*domain.Appointment, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	a := domain.Appointment{
		ID:          m.nextID,
		ClientName:  clientName,
		Region:      region,
		ExamType:    examType,
		ScheduledAt: at,
		CreatedAt:   time.Now(),
	}
	m.created = append(m.created, a)
	return &a, nil
}

func (m *mockRepo) SlotCounts(_ context.Context, region string, day time.Time) (map[string]int, error) {
	if m.countsErr != nil {
		return nil, m.countsErr
	}
	return m.slotCounts, nil
}

func (m *mockRepo) DayTotal(_ context.Context, day time.Time) (int, error) {
	if m.countsErr != nil {
		return 0, m.countsErr
	}
	return m.dayTotal, nil
}

func (m *mockRepo) ListUpcoming(_ context.Context, clientName string, from time.Time) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, a := range m.upcoming {
		if a.ClientName == clientName && !a.ScheduledAt.Before(from) {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockPublisher struct {
	published []string
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, subject)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockRepo, bus events.Publisher) *Service {
	s := NewService(repo, testCfg(), bus)
	s.now = func() time.Time { return fixedNow }
	s.loc = time.UTC
	return s
}

// ---------- Availability ----------

func TestAvailabilityRejectsBadDate(t *testing.T) {
	s := newTestService(&mockRepo{}, nil)

	_, err := s.Availability(context.Background(), "São Paulo", "Raio-X", "20-06-2025")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestAvailabilityPastDateEmpty(t *testing.T) {
	repo := &mockRepo{dayTotal: 0}
	s := newTestService(repo, nil)

	avail, err := s.Availability(context.Background(), "São Paulo", "Raio-X", "2025-05-20")
	if err != nil {
		t.Fatal(err)
	}
	if len(avail.Slots) != 0 {
		t.Errorf("past date should have no slots, got %d", len(avail.Slots))
	}
}

func TestAvailabilityExcludesFullSlots(t *testing.T) {
	repo := &mockRepo{
		slotCounts: map[string]int{
			"2025-06-20 09:00": 5, // at capacity
			"2025-06-20 09:30": 4, // one left
		},
	}
	s := newTestService(repo, nil)

	avail, err := s.Availability(context.Background(), "São Paulo", "Raio-X", "2025-06-20")
	if err != nil {
		t.Fatal(err)
	}

	for _, slot := range avail.Slots {
		if slot == "2025-06-20 09:00" {
			t.Error("full slot should be excluded")
		}
	}
	found := false
	for _, slot := range avail.Slots {
		if slot == "2025-06-20 09:30" {
			found = true
		}
	}
	if !found {
		t.Error("slot under capacity should be listed")
	}
	// 20 candidates minus the one full slot
	if len(avail.Slots) != 19 {
		t.Errorf("len = %d, want 19", len(avail.Slots))
	}
}

func TestAvailabilityDailyCapReached(t *testing.T) {
	repo := &mockRepo{dayTotal: 100}
	s := newTestService(repo, nil)

	avail, err := s.Availability(context.Background(), "São Paulo", "Raio-X", "2025-06-20")
	if err != nil {
		t.Fatal(err)
	}
	if len(avail.Slots) != 0 {
		t.Errorf("day at cap should have no slots, got %d", len(avail.Slots))
	}
	if avail.Message != DailyCapacityReachedMsg {
		t.Errorf("message = %q, want capacity-exhausted indicator", avail.Message)
	}
}

func TestAvailabilitySorted(t *testing.T) {
	s := newTestService(&mockRepo{}, nil)

	avail, err := s.Availability(context.Background(), "São Paulo", "Raio-X", "2025-06-20")
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(avail.Slots); i++ {
		if avail.Slots[i] <= avail.Slots[i-1] {
			t.Fatalf("slots out of order: %q then %q", avail.Slots[i-1], avail.Slots[i])
		}
	}
}

func TestAvailabilityRepoFault(t *testing.T) {
	repo := &mockRepo{countsErr: errors.New("pg down")}
	s := newTestService(repo, nil)

	if _, err := s.Availability(context.Background(), "São Paulo", "Raio-X", "2025-06-20"); err == nil {
		t.Fatal("expected error on repository fault")
	}
}

// ---------- Book ----------

func TestBookRejectsBadInstant(t *testing.T) {
	s := newTestService(&mockRepo{}, nil)

	_, err := s.Book(context.Background(), domain.AppointmentReq{
		ClientName:  "João da Silva",
		Region:      "São Paulo",
		ExamType:    "Raio-X",
		ScheduledAt: "20/06/2025 09:30",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestBookCreatesAndPublishes(t *testing.T) {
	repo := &mockRepo{}
	bus := &mockPublisher{}
	s := newTestService(repo, bus)

	appt, err := s.Book(context.Background(), domain.AppointmentReq{
		ClientName:  "João da Silva",
		Region:      "São Paulo",
		ExamType:    "Consulta Clínica",
		ScheduledAt: "2025-06-20 09:30",
	})
	if err != nil {
		t.Fatal(err)
	}
	if appt.ID == 0 {
		t.Error("expected assigned id")
	}
	if appt.ScheduledAt.Format(domain.InstantLayout) != "2025-06-20 09:30" {
		t.Errorf("scheduled_at = %v", appt.ScheduledAt)
	}
	if len(bus.published) != 1 || bus.published[0] != events.AppointmentBooked {
		t.Errorf("published = %v, want one appointment.booked", bus.published)
	}
}

func TestBookPublishFailureDoesNotFailBooking(t *testing.T) {
	repo := &mockRepo{}
	bus := &mockPublisher{err: errors.New("nats down")}
	s := newTestService(repo, bus)

	if _, err := s.Book(context.Background(), domain.AppointmentReq{
		ClientName:  "João da Silva",
		Region:      "São Paulo",
		ExamType:    "Raio-X",
		ScheduledAt: "2025-06-20 09:30",
	}); err != nil {
		t.Fatalf("booking should succeed despite publish failure, got %v", err)
	}
	if len(repo.created) != 1 {
		t.Errorf("created = %d, want 1", len(repo.created))
	}
}

func TestBookPropagatesConflict(t *testing.T) {
	repo := &mockRepo{createErr: domain.ErrSlotUnavailable}
	s := newTestService(repo, nil)

	_, err := s.Book(context.Background(), domain.AppointmentReq{
		ClientName:  "João da Silva",
		Region:      "São Paulo",
		ExamType:    "Raio-X",
		ScheduledAt: "2025-06-20 09:30",
	})
	if !errors.Is(err, domain.ErrSlotUnavailable) {
		t.Fatalf("err = %v, want ErrSlotUnavailable", err)
	}
}

// ---------- ListUpcoming ----------

func TestListUpcomingFiltersPast(t *testing.T) {
	repo := &mockRepo{upcoming: []domain.Appointment{
		{ID: 1, ClientName: "João da Silva", ScheduledAt: fixedNow.AddDate(0, 0, -7)},
		{ID: 2, ClientName: "João da Silva", ScheduledAt: fixedNow.AddDate(0, 0, 7)},
	}}
	s := newTestService(repo, nil)

	got, err := s.ListUpcoming(context.Background(), "João da Silva")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("got %+v, want only the future appointment", got)
	}
}
