package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vitalmed/exam-bookings/internal/domain"
	"github.com/vitalmed/exam-bookings/pkg/config"
)

// PgxPool is the subset of pgxpool.Pool the repository needs. Tests substitute
// a pgxmock pool.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type AppointmentRepository interface {
	// Create re-validates per-slot and daily capacity inside one transaction
	// and inserts the appointment. Capacity violations and the UNIQUE
	// constraint on scheduled_at all surface as domain.ErrSlotUnavailable.
	Create(ctx context.Context, clientName, region, examType string, at time.Time) (*domain.Appointment, error)
	// SlotCounts returns committed-appointment counts per exact instant for a
	// region on one calendar day, keyed by domain.InstantLayout.
	SlotCounts(ctx context.Context, region string, day time.Time) (map[string]int, error)
	// DayTotal counts all appointments on one calendar day across regions.
	DayTotal(ctx context.Context, day time.Time) (int, error)
	ListUpcoming(ctx context.Context, clientName string, from time.Time) ([]domain.Appointment, error)
}

type appointmentRepository struct {
	pool PgxPool
	cfg  config.SchedulingConfig
}

func NewAppointmentRepository(pool PgxPool, cfg config.SchedulingConfig) AppointmentRepository {
	return &appointmentRepository{pool: pool, cfg: cfg}
}

const appointmentCols = `id, client_name, region, exam_type, scheduled_at, created_at`

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

func (r *appointmentRepository) Create(ctx context.Context, clientName, region, examType string, at time.Time) (*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var slotCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE scheduled_at=$1 AND region=$2`,
		at, region,
	).Scan(&slotCount)
	if err != nil {
		return nil, fmt.Errorf("count slot occupancy: %w", err)
	}
	if slotCount >= r.cfg.SlotCapacity {
		return nil, fmt.Errorf("capacidade máxima para este horário e região atingida: %w", domain.ErrSlotUnavailable)
	}

	start, end := dayBounds(at)
	var dayTotal int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE scheduled_at >= $1 AND scheduled_at < $2`,
		start, end,
	).Scan(&dayTotal)
	if err != nil {
		return nil, fmt.Errorf("count daily occupancy: %w", err)
	}
	if dayTotal >= r.cfg.DailyCapacityMax {
		return nil, fmt.Errorf("capacidade máxima de agendamentos para o dia atingida: %w", domain.ErrSlotUnavailable)
	}

	a := domain.Appointment{
		ClientName:  clientName,
		Region:      region,
		ExamType:    examType,
		ScheduledAt: at,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO appointments (client_name, region, exam_type, scheduled_at)
		 VALUES ($1,$2,$3,$4) RETURNING id, created_at`,
		clientName, region, examType, at,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		// The UNIQUE constraint on scheduled_at is the safety net for two
		// commits racing for the same exact instant.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("já existe um agendamento para este horário: %w", domain.ErrSlotUnavailable)
		}
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit booking tx: %w", err)
	}
	return &a, nil
}

func (r *appointmentRepository) SlotCounts(ctx context.Context, region string, day time.Time) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start, end := dayBounds(day)
	rows, err := r.pool.Query(ctx,
		`SELECT scheduled_at, COUNT(*) FROM appointments
		 WHERE scheduled_at >= $1 AND scheduled_at < $2 AND region = $3
		 GROUP BY scheduled_at`,
		start, end, region,
	)
	if err != nil {
		return nil, fmt.Errorf("query slot counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var at time.Time
		var n int
		if err := rows.Scan(&at, &n); err != nil {
			return nil, fmt.Errorf("scan slot count: %w", err)
		}
		counts[at.Format(domain.InstantLayout)] = n
	}
	return counts, rows.Err()
}

func (r *appointmentRepository) DayTotal(ctx context.Context, day time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	start, end := dayBounds(day)
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE scheduled_at >= $1 AND scheduled_at < $2`,
		start, end,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count day total: %w", err)
	}
	return total, nil
}

func (r *appointmentRepository) ListUpcoming(ctx context.Context, clientName string, from time.Time) ([]domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE client_name = $1 AND scheduled_at >= $2
		 ORDER BY scheduled_at ASC`,
		clientName, from,
	)
	if err != nil {
		return nil, fmt.Errorf("query upcoming appointments: %w", err)
	}
	defer rows.Close()

	var out []domain.Appointment
	for rows.Next() {
		var a domain.Appointment
		if err := rows.Scan(&a.ID, &a.ClientName, &a.Region, &a.ExamType, &a.ScheduledAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
