package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/totelink/totelink/internal/domain"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

// Create inserts a checklist item with quantity 1 and checked false.
func (s *ItemStore) Create(ctx context.Context, toteID, name string) (*domain.Item, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, tote_id, name, quantity, checked, created_at, updated_at)
		VALUES (?, ?, ?, 1, 0, ?, ?)
	`, id, toteID, name, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ItemStore) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	item := &domain.Item{}
	var checked int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tote_id, name, quantity, checked, created_at, updated_at FROM items WHERE id = ?
	`, id).Scan(&item.ID, &item.ToteID, &item.Name, &item.Quantity, &checked, &item.CreatedAt, &item.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	item.Checked = checked != 0
	return item, nil
}

// ListByToteID returns a tote's items in insertion order, oldest first.
func (s *ItemStore) ListByToteID(ctx context.Context, toteID string) ([]*domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tote_id, name, quantity, checked, created_at, updated_at FROM items
		WHERE tote_id = ? ORDER BY created_at ASC
	`, toteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var items []*domain.Item
	for rows.Next() {
		item := &domain.Item{}
		var checked int
		if err := rows.Scan(&item.ID, &item.ToteID, &item.Name, &item.Quantity, &checked,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Checked = checked != 0
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// Update applies the supplied patch fields and stamps updated_at. The checked
// flag is stored as 0/1.
func (s *ItemStore) Update(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error) {
	query := sq.Update("items")
	if patch.Name != nil {
		query = query.Set("name", *patch.Name)
	}
	if patch.Quantity != nil {
		query = query.Set("quantity", *patch.Quantity)
	}
	if patch.Checked != nil {
		query = query.Set("checked", boolToInt(*patch.Checked))
	}
	query = query.Set("updated_at", time.Now().UTC()).Where(sq.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build item update query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, id)
}

// Delete is idempotent: deleting an absent id is not an error.
func (s *ItemStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM items WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func (s *ItemStore) DeleteByToteID(ctx context.Context, toteID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM items WHERE tote_id = ?
	`, toteID)
	if err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	return nil
}
