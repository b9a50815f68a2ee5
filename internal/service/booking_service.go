package service

import (
	"context"
	"fmt"

	"campus-booking/internal/model"
	"campus-booking/internal/repository"
	"campus-booking/internal/repository/base"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type BookingService struct {
	pool        *pgxpool.Pool
	slotRepo    *repository.SlotRepository
	bookingRepo *repository.BookingRepository
	logger      *zap.Logger
}

func NewBookingService(
	pool *pgxpool.Pool,
	slotRepo *repository.SlotRepository,
	bookingRepo *repository.BookingRepository,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		pool:        pool,
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// Create books a slot for the user with status Pending. The slot row is
// locked for the duration of the transaction so two concurrent requests
// cannot both pass the availability check; the partial unique index on
// bookings backstops the lock.
func (s *BookingService) Create(ctx context.Context, userID, resourceID, slotID int64) (*model.Booking, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	slotRepo := s.slotRepo.WithTx(tx)
	bookingRepo := s.bookingRepo.WithTx(tx)

	slot, err := slotRepo.GetByIDForUpdate(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil || slot.ResourceID != resourceID {
		return nil, ErrNotFound
	}

	taken, err := bookingRepo.HasActiveOnSlot(ctx, slotID, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	booking := &model.Booking{
		UserID:     userID,
		ResourceID: slot.ResourceID,
		SlotID:     slotID,
		Status:     model.BookingStatusPending,
	}

	if err := bookingRepo.Create(ctx, booking); err != nil {
		if base.IsUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("user_id", userID),
		zap.Int64("slot_id", slotID),
	)

	return booking, nil
}

// ListForUser returns the user's bookings joined with resource and slot.
func (s *BookingService) ListForUser(ctx context.Context, userID int64) ([]model.StudentBooking, error) {
	return s.bookingRepo.ListByUser(ctx, userID)
}

// ListAll returns the admin overview of every booking.
func (s *BookingService) ListAll(ctx context.Context) ([]model.AdminBooking, error) {
	return s.bookingRepo.ListAll(ctx)
}

// UpdateSlot moves the user's booking to another slot after checking the
// new slot is free. A foreign booking id reports ErrNotFound, never the
// other student's data.
func (s *BookingService) UpdateSlot(ctx context.Context, bookingID, userID, newSlotID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	slotRepo := s.slotRepo.WithTx(tx)
	bookingRepo := s.bookingRepo.WithTx(tx)

	booking, err := bookingRepo.GetByIDForUser(ctx, bookingID, userID)
	if err != nil {
		return err
	}
	if booking == nil {
		return ErrNotFound
	}

	slot, err := slotRepo.GetByIDForUpdate(ctx, newSlotID)
	if err != nil {
		return err
	}
	if slot == nil {
		return ErrNotFound
	}

	taken, err := bookingRepo.HasActiveOnSlot(ctx, newSlotID, bookingID)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlotTaken
	}

	if _, err := bookingRepo.UpdateSlot(ctx, bookingID, newSlotID, slot.ResourceID); err != nil {
		if base.IsUniqueViolation(err) {
			return ErrSlotTaken
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("booking moved",
		zap.Int64("booking_id", bookingID),
		zap.Int64("user_id", userID),
		zap.Int64("slot_id", newSlotID),
	)

	return nil
}

// Cancel removes the user's booking regardless of status. Deleting the
// row releases the slot on the next availability read.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID int64) error {
	affected, err := s.bookingRepo.DeleteOwned(ctx, bookingID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Info("booking cancelled",
		zap.Int64("booking_id", bookingID),
		zap.Int64("user_id", userID),
	)

	return nil
}

// Approve moves a Pending booking to Approved.
func (s *BookingService) Approve(ctx context.Context, bookingID int64) error {
	return s.decide(ctx, bookingID, model.BookingStatusApproved)
}

// Reject moves a Pending booking to Rejected, releasing its slot.
func (s *BookingService) Reject(ctx context.Context, bookingID int64) error {
	return s.decide(ctx, bookingID, model.BookingStatusRejected)
}

// decide performs the guarded Pending -> terminal transition. Re-deciding
// an already terminal booking reports ErrNotPending.
func (s *BookingService) decide(ctx context.Context, bookingID int64, to model.BookingStatus) error {
	affected, err := s.bookingRepo.TransitionStatus(ctx, bookingID, model.BookingStatusPending, to)
	if err != nil {
		return err
	}
	if affected == 0 {
		booking, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrNotFound
		}
		return ErrNotPending
	}

	s.logger.Info("booking decided",
		zap.Int64("booking_id", bookingID),
		zap.String("status", string(to)),
	)

	return nil
}

// Delete removes any booking by id, admin-side.
func (s *BookingService) Delete(ctx context.Context, bookingID int64) error {
	affected, err := s.bookingRepo.Delete(ctx, bookingID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Info("booking deleted", zap.Int64("booking_id", bookingID))

	return nil
}
