package service

import (
	"context"
	"encoding/json"
	"fmt"

	"campus-booking/internal/model"
	"campus-booking/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ResourceService struct {
	pool         *pgxpool.Pool
	resourceRepo *repository.ResourceRepository
	slotRepo     *repository.SlotRepository
	bookingRepo  *repository.BookingRepository
	logger       *zap.Logger
}

func NewResourceService(
	pool *pgxpool.Pool,
	resourceRepo *repository.ResourceRepository,
	slotRepo *repository.SlotRepository,
	bookingRepo *repository.BookingRepository,
	logger *zap.Logger,
) *ResourceService {
	return &ResourceService{
		pool:         pool,
		resourceRepo: resourceRepo,
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		logger:       logger,
	}
}

// Create inserts the resource and its slot rows in one transaction.
func (s *ResourceService) Create(ctx context.Context, res *model.Resource, slots []string) error {
	res.AvailabilitySlots = legacySlots(slots)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.resourceRepo.WithTx(tx).Create(ctx, res); err != nil {
		return err
	}
	if err := s.slotRepo.WithTx(tx).CreateBatch(ctx, res.ID, slots); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("resource created",
		zap.Int64("resource_id", res.ID),
		zap.Int("slots", len(slots)),
	)

	return nil
}

// List returns all resources.
func (s *ResourceService) List(ctx context.Context) ([]model.Resource, error) {
	return s.resourceRepo.List(ctx)
}

// Search returns resources matching the query by name or category.
func (s *ResourceService) Search(ctx context.Context, query string) ([]model.Resource, error) {
	return s.resourceRepo.Search(ctx, query)
}

// Update overwrites the resource fields and replaces its whole slot set.
// Bookings on the replaced slots are dropped in the same transaction so no
// booking is left referencing a dead slot id.
func (s *ResourceService) Update(ctx context.Context, res *model.Resource, slots []string) error {
	res.AvailabilitySlots = legacySlots(slots)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	affected, err := s.resourceRepo.WithTx(tx).Update(ctx, res)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := s.bookingRepo.WithTx(tx).DeleteForResource(ctx, res.ID); err != nil {
		return err
	}
	if _, err := s.slotRepo.WithTx(tx).DeleteByResource(ctx, res.ID); err != nil {
		return err
	}
	if err := s.slotRepo.WithTx(tx).CreateBatch(ctx, res.ID, slots); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("resource updated",
		zap.Int64("resource_id", res.ID),
		zap.Int("slots", len(slots)),
	)

	return nil
}

// Delete removes the resource, cascading over its bookings and slots in
// one transaction.
func (s *ResourceService) Delete(ctx context.Context, resourceID int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.bookingRepo.WithTx(tx).DeleteForResource(ctx, resourceID); err != nil {
		return err
	}
	if _, err := s.slotRepo.WithTx(tx).DeleteByResource(ctx, resourceID); err != nil {
		return err
	}

	affected, err := s.resourceRepo.WithTx(tx).Delete(ctx, resourceID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("resource deleted", zap.Int64("resource_id", resourceID))

	return nil
}

// Slots lists a resource's slots with derived availability. ErrNotFound
// when the resource has no slots at all.
func (s *ResourceService) Slots(ctx context.Context, resourceID int64) ([]model.SlotAvailability, error) {
	slots, err := s.slotRepo.ListByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, ErrNotFound
	}

	return slots, nil
}

// legacySlots renders the slot list into the denormalized resources column
// older frontend builds still read.
func legacySlots(slots []string) string {
	if slots == nil {
		slots = []string{}
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
