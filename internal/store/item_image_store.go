package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/totelink/totelink/internal/domain"
)

type ItemImageStore struct {
	db *sql.DB
}

func NewItemImageStore(db *sql.DB) *ItemImageStore {
	return &ItemImageStore{db: db}
}

// Create inserts the metadata record for an already-stored blob. The caller
// generates the id because it is part of the blob path.
func (s *ItemImageStore) Create(ctx context.Context, id, itemID, userID, filePath string) (*domain.ItemImage, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO item_images (id, item_id, user_id, file_path, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, itemID, userID, filePath, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create item image: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ItemImageStore) GetByID(ctx context.Context, id string) (*domain.ItemImage, error) {
	img := &domain.ItemImage{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, item_id, user_id, file_path, created_at FROM item_images WHERE id = ?
	`, id).Scan(&img.ID, &img.ItemID, &img.UserID, &img.FilePath, &img.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item image: %w", err)
	}

	return img, nil
}

// ListByItemID returns an item's images, newest first.
func (s *ItemImageStore) ListByItemID(ctx context.Context, itemID string) ([]*domain.ItemImage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_id, user_id, file_path, created_at FROM item_images
		WHERE item_id = ? ORDER BY created_at DESC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list item images: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var images []*domain.ItemImage
	for rows.Next() {
		img := &domain.ItemImage{}
		if err := rows.Scan(&img.ID, &img.ItemID, &img.UserID, &img.FilePath, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item images: %w", err)
	}

	return images, nil
}

func (s *ItemImageStore) DeleteByItemID(ctx context.Context, itemID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM item_images WHERE item_id = ?
	`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item images: %w", err)
	}
	return nil
}

func (s *ItemImageStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM item_images WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item image: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
