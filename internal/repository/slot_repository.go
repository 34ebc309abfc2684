package repository

import (
	"context"
	"fmt"

	"github.com/campushub/portal/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SlotRepository struct {
	pool *pgxpool.Pool
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{pool: pool}
}

// Create declares a new availability slot.
func (r *SlotRepository) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	query := `
		INSERT INTO availability_slots (id, advisor_id, slot_date, slot_time)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		slot.ID,
		slot.AdvisorID,
		slot.Date,
		slot.Time,
	).Scan(&slot.CreatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// Delete revokes a slot by id.
func (r *SlotRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM availability_slots WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// GetByAdvisorDateTime returns the slot at the exact tuple, or nil.
func (r *SlotRepository) GetByAdvisorDateTime(ctx context.Context, advisorID, date, timeOfDay string) (*model.AvailabilitySlot, error) {
	query := `
		SELECT id, advisor_id, slot_date, slot_time, created_at
		FROM availability_slots
		WHERE advisor_id = $1 AND slot_date = $2 AND slot_time = $3
	`

	var slot model.AvailabilitySlot
	err := r.pool.QueryRow(ctx, query, advisorID, date, timeOfDay).Scan(
		&slot.ID,
		&slot.AdvisorID,
		&slot.Date,
		&slot.Time,
		&slot.CreatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}

	return &slot, nil
}

// ListByAdvisorDate returns the advisor's declared slots for a date, ordered
// by time of day.
func (r *SlotRepository) ListByAdvisorDate(ctx context.Context, advisorID, date string) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT id, advisor_id, slot_date, slot_time, created_at
		FROM availability_slots
		WHERE advisor_id = $1 AND slot_date = $2
		ORDER BY slot_time
	`

	rows, err := r.pool.Query(ctx, query, advisorID, date)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.AvailabilitySlot
	for rows.Next() {
		var slot model.AvailabilitySlot
		err := rows.Scan(
			&slot.ID,
			&slot.AdvisorID,
			&slot.Date,
			&slot.Time,
			&slot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, &slot)
	}

	return slots, nil
}
