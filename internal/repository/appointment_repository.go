package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campushub/portal/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

// CreateIfSlotFree inserts the appointment only if no live appointment
// occupies the same (advisor, starts_at). The check and insert run as one
// conditional statement; the partial unique index on live rows backstops it.
// Returns model.ErrSlotUnavailable when the slot is taken.
func (r *AppointmentRepository) CreateIfSlotFree(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (id, student_id, advisor_id, starts_at, status, notes)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments
			WHERE advisor_id = $3 AND starts_at = $4 AND status <> 'Canceled'
		)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		appt.ID,
		appt.StudentID,
		appt.AdvisorID,
		appt.StartsAt,
		appt.Status,
		appt.Notes,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)

	if err != nil {
		if err == pgx.ErrNoRows || isUniqueViolation(err) {
			return model.ErrSlotUnavailable
		}
		return fmt.Errorf("create appointment: %w", err)
	}

	return nil
}

// UpdateIfSlotFree rewrites the appointment, refusing the write when a
// different live appointment occupies the target (advisor, starts_at).
func (r *AppointmentRepository) UpdateIfSlotFree(ctx context.Context, appt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET student_id = $2, advisor_id = $3, starts_at = $4, status = $5, notes = $6, updated_at = now()
		WHERE id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM appointments b
			WHERE b.advisor_id = $3 AND b.starts_at = $4 AND b.status <> 'Canceled' AND b.id <> $1
		  )
		RETURNING updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		appt.ID,
		appt.StudentID,
		appt.AdvisorID,
		appt.StartsAt,
		appt.Status,
		appt.Notes,
	).Scan(&appt.UpdatedAt)

	if err != nil {
		if err == pgx.ErrNoRows || isUniqueViolation(err) {
			return model.ErrSlotUnavailable
		}
		return fmt.Errorf("update appointment: %w", err)
	}

	return nil
}

// Update rewrites the appointment unconditionally. Used only for rows that
// are not live, where no occupancy invariant is at stake.
func (r *AppointmentRepository) Update(ctx context.Context, appt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET student_id = $2, advisor_id = $3, starts_at = $4, status = $5, notes = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		appt.ID,
		appt.StudentID,
		appt.AdvisorID,
		appt.StartsAt,
		appt.Status,
		appt.Notes,
	).Scan(&appt.UpdatedAt)

	if err != nil {
		if err == pgx.ErrNoRows {
			return model.ErrNotFound
		}
		return fmt.Errorf("update appointment: %w", err)
	}

	return nil
}

// SetStatus updates only the status column.
func (r *AppointmentRepository) SetStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $2, updated_at = now()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("set appointment status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// GetByID returns the appointment or nil when missing.
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	query := `
		SELECT id, student_id, advisor_id, starts_at, status, notes, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`

	var appt model.Appointment
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&appt.ID,
		&appt.StudentID,
		&appt.AdvisorID,
		&appt.StartsAt,
		&appt.Status,
		&appt.Notes,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return &appt, nil
}

// ListByAdvisorDate returns every appointment for the advisor whose start
// falls on the given calendar date (UTC), regardless of status.
func (r *AppointmentRepository) ListByAdvisorDate(ctx context.Context, advisorID, date string) ([]*model.Appointment, error) {
	dayStart, err := time.ParseInLocation(model.DateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `
		SELECT id, student_id, advisor_id, starts_at, status, notes, created_at, updated_at
		FROM appointments
		WHERE advisor_id = $1
		  AND starts_at >= $2
		  AND starts_at < $3
		ORDER BY starts_at
	`

	return r.queryAppointments(ctx, query, advisorID, dayStart, dayEnd)
}

// ListForUser returns appointments where the user is student or advisor,
// most recent first.
func (r *AppointmentRepository) ListForUser(ctx context.Context, userID string) ([]*model.Appointment, error) {
	query := `
		SELECT id, student_id, advisor_id, starts_at, status, notes, created_at, updated_at
		FROM appointments
		WHERE student_id = $1 OR advisor_id = $1
		ORDER BY starts_at DESC
	`

	return r.queryAppointments(ctx, query, userID)
}

// CountByStatus returns appointment counts grouped by status.
func (r *AppointmentRepository) CountByStatus(ctx context.Context) (map[model.AppointmentStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM appointments GROUP BY status`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count appointments: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.AppointmentStatus]int)
	for rows.Next() {
		var status model.AppointmentStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan appointment count: %w", err)
		}
		counts[status] = n
	}

	return counts, nil
}

func (r *AppointmentRepository) queryAppointments(ctx context.Context, query string, args ...interface{}) ([]*model.Appointment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	var appts []*model.Appointment
	for rows.Next() {
		var appt model.Appointment
		err := rows.Scan(
			&appt.ID,
			&appt.StudentID,
			&appt.AdvisorID,
			&appt.StartsAt,
			&appt.Status,
			&appt.Notes,
			&appt.CreatedAt,
			&appt.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, &appt)
	}

	return appts, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
