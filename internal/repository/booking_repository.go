package repository

import (
	"context"
	"fmt"

	"campus-booking/internal/model"
	"campus-booking/internal/repository/base"

	"github.com/jackc/pgx/v5"
)

type BookingRepository struct {
	db base.Querier
}

func NewBookingRepository(db base.Querier) *BookingRepository {
	return &BookingRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *BookingRepository) WithTx(tx pgx.Tx) *BookingRepository {
	return &BookingRepository{db: tx}
}

// Create inserts a booking and fills the generated id and timestamp.
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (user_id, resource_id, slot_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		booking.UserID,
		booking.ResourceID,
		booking.SlotID,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID returns the booking with the given id, or nil when absent.
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	query := `
		SELECT id, user_id, resource_id, slot_id, status, created_at
		FROM bookings
		WHERE id = $1
	`

	var booking model.Booking
	err := r.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ResourceID,
		&booking.SlotID,
		&booking.Status,
		&booking.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return &booking, nil
}

// GetByIDForUser returns the booking only when it belongs to the user.
// A foreign booking looks exactly like a missing one.
func (r *BookingRepository) GetByIDForUser(ctx context.Context, id, userID int64) (*model.Booking, error) {
	query := `
		SELECT id, user_id, resource_id, slot_id, status, created_at
		FROM bookings
		WHERE id = $1 AND user_id = $2
	`

	var booking model.Booking
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ResourceID,
		&booking.SlotID,
		&booking.Status,
		&booking.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking for user: %w", err)
	}

	return &booking, nil
}

// ListByUser returns the user's bookings joined with resource and slot.
func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]model.StudentBooking, error) {
	query := `
		SELECT b.id, b.resource_id, b.status, r.name, s.slot
		FROM bookings b
		JOIN resources r ON b.resource_id = r.id
		JOIN availability_slots s ON b.slot_id = s.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings by user: %w", err)
	}
	defer rows.Close()

	var bookings []model.StudentBooking
	for rows.Next() {
		var b model.StudentBooking
		if err := rows.Scan(&b.ID, &b.ResourceID, &b.Status, &b.ResourceName, &b.Slot); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

// ListAll returns every booking joined with user, resource and slot for
// the admin overview.
func (r *BookingRepository) ListAll(ctx context.Context) ([]model.AdminBooking, error) {
	query := `
		SELECT b.id, b.created_at, u.email, r.name, s.slot, b.status
		FROM bookings b
		JOIN users u ON b.user_id = u.id
		JOIN resources r ON b.resource_id = r.id
		JOIN availability_slots s ON b.slot_id = s.id
		ORDER BY b.created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all bookings: %w", err)
	}
	defer rows.Close()

	var bookings []model.AdminBooking
	for rows.Next() {
		var b model.AdminBooking
		if err := rows.Scan(&b.ID, &b.BookedAt, &b.UserEmail, &b.ResourceName, &b.TimeSlot, &b.Status); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

// HasActiveOnSlot reports whether an active booking other than excludeID
// holds the slot. Pass excludeID 0 to consider all bookings.
func (r *BookingRepository) HasActiveOnSlot(ctx context.Context, slotID, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE slot_id = $1
			  AND status IN ('Pending', 'Approved')
			  AND id <> $2
		)
	`

	var taken bool
	if err := r.db.QueryRow(ctx, query, slotID, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("check active booking on slot: %w", err)
	}

	return taken, nil
}

// TransitionStatus moves the booking from one status to another in a
// single guarded statement and returns the number of affected rows.
func (r *BookingRepository) TransitionStatus(ctx context.Context, id int64, from, to model.BookingStatus) (int64, error) {
	query := `
		UPDATE bookings
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	tag, err := r.db.Exec(ctx, query, to, id, from)
	if err != nil {
		return 0, fmt.Errorf("transition booking status: %w", err)
	}

	return tag.RowsAffected(), nil
}

// UpdateSlot moves the booking to another slot, keeping resource_id in
// step with the slot's owning resource.
func (r *BookingRepository) UpdateSlot(ctx context.Context, id, slotID, resourceID int64) (int64, error) {
	query := `
		UPDATE bookings
		SET slot_id = $1, resource_id = $2
		WHERE id = $3
	`

	tag, err := r.db.Exec(ctx, query, slotID, resourceID, id)
	if err != nil {
		return 0, fmt.Errorf("update booking slot: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Delete removes the booking and returns the number of affected rows.
func (r *BookingRepository) Delete(ctx context.Context, id int64) (int64, error) {
	query := `DELETE FROM bookings WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete booking: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteOwned removes the booking only when it belongs to the user and
// returns the number of affected rows.
func (r *BookingRepository) DeleteOwned(ctx context.Context, id, userID int64) (int64, error) {
	query := `DELETE FROM bookings WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete owned booking: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteForResource removes every booking tied to the resource, directly
// or through one of its slots.
func (r *BookingRepository) DeleteForResource(ctx context.Context, resourceID int64) (int64, error) {
	query := `
		DELETE FROM bookings
		WHERE resource_id = $1
		   OR slot_id IN (SELECT id FROM availability_slots WHERE resource_id = $1)
	`

	tag, err := r.db.Exec(ctx, query, resourceID)
	if err != nil {
		return 0, fmt.Errorf("delete bookings for resource: %w", err)
	}

	return tag.RowsAffected(), nil
}
