package repository

import (
	"context"
	"fmt"

	"campus-booking/internal/model"
	"campus-booking/internal/repository/base"

	"github.com/jackc/pgx/v5"
)

type ResourceRepository struct {
	db base.Querier
}

func NewResourceRepository(db base.Querier) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx.
func (r *ResourceRepository) WithTx(tx pgx.Tx) *ResourceRepository {
	return &ResourceRepository{db: tx}
}

// Create inserts a resource and fills the generated id, default status and
// timestamp.
func (r *ResourceRepository) Create(ctx context.Context, res *model.Resource) error {
	query := `
		INSERT INTO resources (name, description, category, availability_slots)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		res.Name,
		res.Description,
		res.Category,
		res.AvailabilitySlots,
	).Scan(&res.ID, &res.Status, &res.CreatedAt)

	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	return nil
}

// GetByID returns the resource with the given id, or nil when absent.
func (r *ResourceRepository) GetByID(ctx context.Context, id int64) (*model.Resource, error) {
	query := `
		SELECT id, name, description, category, status, availability_slots, created_at
		FROM resources
		WHERE id = $1
	`

	var res model.Resource
	err := r.db.QueryRow(ctx, query, id).Scan(
		&res.ID,
		&res.Name,
		&res.Description,
		&res.Category,
		&res.Status,
		&res.AvailabilitySlots,
		&res.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get resource by id: %w", err)
	}

	return &res, nil
}

// List returns all resources, newest first.
func (r *ResourceRepository) List(ctx context.Context) ([]model.Resource, error) {
	query := `
		SELECT id, name, description, category, status, availability_slots, created_at
		FROM resources
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	return scanResources(rows)
}

// Search returns resources whose name or category matches the query,
// case-insensitively.
func (r *ResourceRepository) Search(ctx context.Context, search string) ([]model.Resource, error) {
	query := `
		SELECT id, name, description, category, status, availability_slots, created_at
		FROM resources
		WHERE name ILIKE $1 OR category ILIKE $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, "%"+search+"%")
	if err != nil {
		return nil, fmt.Errorf("search resources: %w", err)
	}
	defer rows.Close()

	return scanResources(rows)
}

// Update overwrites all mutable fields and returns the number of affected
// rows.
func (r *ResourceRepository) Update(ctx context.Context, res *model.Resource) (int64, error) {
	query := `
		UPDATE resources
		SET name = $1, description = $2, category = $3, status = $4, availability_slots = $5
		WHERE id = $6
	`

	tag, err := r.db.Exec(
		ctx, query,
		res.Name,
		res.Description,
		res.Category,
		res.Status,
		res.AvailabilitySlots,
		res.ID,
	)

	if err != nil {
		return 0, fmt.Errorf("update resource: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Delete removes the resource row and returns the number of affected rows.
func (r *ResourceRepository) Delete(ctx context.Context, id int64) (int64, error) {
	query := `DELETE FROM resources WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete resource: %w", err)
	}

	return tag.RowsAffected(), nil
}

func scanResources(rows pgx.Rows) ([]model.Resource, error) {
	var resources []model.Resource
	for rows.Next() {
		var res model.Resource
		err := rows.Scan(
			&res.ID,
			&res.Name,
			&res.Description,
			&res.Category,
			&res.Status,
			&res.AvailabilitySlots,
			&res.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resources: %w", err)
	}

	return resources, nil
}
