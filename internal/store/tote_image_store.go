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

type ToteImageStore struct {
	db *sql.DB
}

func NewToteImageStore(db *sql.DB) *ToteImageStore {
	return &ToteImageStore{db: db}
}

// Create inserts the metadata record for an already-stored blob. The caller
// generates the id because it is part of the blob path.
func (s *ToteImageStore) Create(ctx context.Context, id, toteID, userID, filePath string) (*domain.ToteImage, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tote_images (id, tote_id, user_id, file_path, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, toteID, userID, filePath, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create tote image: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ToteImageStore) GetByID(ctx context.Context, id string) (*domain.ToteImage, error) {
	img := &domain.ToteImage{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tote_id, user_id, file_path, created_at FROM tote_images WHERE id = ?
	`, id).Scan(&img.ID, &img.ToteID, &img.UserID, &img.FilePath, &img.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tote image: %w", err)
	}

	return img, nil
}

// ListByToteID returns a tote's images, newest first.
func (s *ToteImageStore) ListByToteID(ctx context.Context, toteID string) ([]*domain.ToteImage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tote_id, user_id, file_path, created_at FROM tote_images
		WHERE tote_id = ? ORDER BY created_at DESC
	`, toteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tote images: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var images []*domain.ToteImage
	for rows.Next() {
		img := &domain.ToteImage{}
		if err := rows.Scan(&img.ID, &img.ToteID, &img.UserID, &img.FilePath, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tote image: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tote images: %w", err)
	}

	return images, nil
}

func (s *ToteImageStore) DeleteByToteID(ctx context.Context, toteID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM tote_images WHERE tote_id = ?
	`, toteID)
	if err != nil {
		return fmt.Errorf("failed to delete tote images: %w", err)
	}
	return nil
}

func (s *ToteImageStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM tote_images WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tote image: %w", err)
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
