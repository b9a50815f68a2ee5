package repository

import (
	"context"
	"fmt"

	"campus-booking/internal/model"
	"campus-booking/internal/repository/base"

	"github.com/jackc/pgx/v5"
)

type SlotRepository struct {
	db base.Querier
}

func NewSlotRepository(db base.Querier) *SlotRepository {
	return &SlotRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *SlotRepository) WithTx(tx pgx.Tx) *SlotRepository {
	return &SlotRepository{db: tx}
}

// CreateBatch inserts one slot row per descriptor for the resource.
func (r *SlotRepository) CreateBatch(ctx context.Context, resourceID int64, slots []string) error {
	query := `INSERT INTO availability_slots (resource_id, slot) VALUES ($1, $2)`

	for _, slot := range slots {
		if _, err := r.db.Exec(ctx, query, resourceID, slot); err != nil {
			return fmt.Errorf("create slot: %w", err)
		}
	}

	return nil
}

// GetByID returns the slot with the given id, or nil when absent.
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `
		SELECT id, resource_id, slot
		FROM availability_slots
		WHERE id = $1
	`

	var slot model.Slot
	err := r.db.QueryRow(ctx, query, id).Scan(&slot.ID, &slot.ResourceID, &slot.Slot)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return &slot, nil
}

// GetByIDForUpdate locks the slot row for the rest of the transaction and
// returns it, or nil when absent. Callers must be inside a transaction.
func (r *SlotRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Slot, error) {
	query := `
		SELECT id, resource_id, slot
		FROM availability_slots
		WHERE id = $1
		FOR UPDATE
	`

	var slot model.Slot
	err := r.db.QueryRow(ctx, query, id).Scan(&slot.ID, &slot.ResourceID, &slot.Slot)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot for update: %w", err)
	}

	return &slot, nil
}

// ListByResource returns the resource's slots with availability derived
// from the absence of active bookings.
func (r *SlotRepository) ListByResource(ctx context.Context, resourceID int64) ([]model.SlotAvailability, error) {
	query := `
		SELECT s.id, s.slot,
		       CASE WHEN EXISTS (
		           SELECT 1 FROM bookings b
		           WHERE b.slot_id = s.id
		             AND b.status IN ('Pending', 'Approved')
		       ) THEN 0 ELSE 1 END AS is_available
		FROM availability_slots s
		WHERE s.resource_id = $1
		ORDER BY s.id
	`

	rows, err := r.db.Query(ctx, query, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list slots by resource: %w", err)
	}
	defer rows.Close()

	var slots []model.SlotAvailability
	for rows.Next() {
		var slot model.SlotAvailability
		if err := rows.Scan(&slot.ID, &slot.Slot, &slot.IsAvailable); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

// DeleteByResource removes all of the resource's slots and returns the
// number of affected rows.
func (r *SlotRepository) DeleteByResource(ctx context.Context, resourceID int64) (int64, error) {
	query := `DELETE FROM availability_slots WHERE resource_id = $1`

	tag, err := r.db.Exec(ctx, query, resourceID)
	if err != nil {
		return 0, fmt.Errorf("delete slots by resource: %w", err)
	}

	return tag.RowsAffected(), nil
}
