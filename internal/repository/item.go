package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/castpro/castpro/internal/model"
)

// ErrItemNotFound is returned when no item matches the requested ID.
var ErrItemNotFound = errors.New("item not found")

// CreateItem inserts a new item and populates its generated ID and timestamps.
func (r *Repository) CreateItem(ctx context.Context, item *model.Item) error {
	query := `
		INSERT INTO items (title, description, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, created_at, updated_at
	`

	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, query,
		item.Title,
		item.Description,
		item.OwnerID,
		now,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

// GetItemByID retrieves an item by its ID.
func (r *Repository) GetItemByID(ctx context.Context, id int64) (*model.Item, error) {
	query := `
		SELECT id, title, description, owner_id, created_at, updated_at
		FROM items
		WHERE id = $1
	`

	var item model.Item
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.OwnerID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item by ID: %w", err)
	}

	return &item, nil
}

// ListItems returns a page of items system-wide, ordered by ID,
// using offset/limit pagination.
func (r *Repository) ListItems(ctx context.Context, skip, limit int) ([]*model.Item, error) {
	query := `
		SELECT id, title, description, owner_id, created_at, updated_at
		FROM items
		ORDER BY id
		OFFSET $1 LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]*model.Item, 0)
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.OwnerID,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

// UpdateItem persists the given item's title and description.
// The caller is responsible for merging partial updates into the record first.
func (r *Repository) UpdateItem(ctx context.Context, item *model.Item) error {
	query := `
		UPDATE items
		SET title = $1, description = $2, updated_at = $3
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		item.Title,
		item.Description,
		time.Now().UTC(),
		item.ID,
	).Scan(&item.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to update item: %w", err)
	}

	return nil
}

// DeleteItem removes an item by its ID.
func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}

	return nil
}
