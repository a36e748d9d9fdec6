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

// coverImageExpr selects the earliest-created image for a tote as its cover.
// The secondary id ordering makes the pick deterministic when several images
// share a timestamp.
const coverImageExpr = `(
	SELECT file_path FROM tote_images i
	WHERE i.tote_id = totes.id
	ORDER BY i.created_at ASC, i.id ASC LIMIT 1
) AS cover_image_path`

type ToteStore struct {
	db *sql.DB
}

func NewToteStore(db *sql.DB) *ToteStore {
	return &ToteStore{db: db}
}

func (s *ToteStore) Create(ctx context.Context, userID string, name, description, category *string, icon string) (*domain.Tote, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	if icon == "" {
		icon = domain.DefaultIcon
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO totes (id, user_id, name, description, category, icon, created_on, updated_on)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, userID, name, description, category, icon, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create tote: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ToteStore) GetByID(ctx context.Context, id string) (*domain.Tote, error) {
	tote := &domain.Tote{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, category, icon, created_on, updated_on, `+coverImageExpr+`
		FROM totes WHERE id = ?
	`, id).Scan(&tote.ID, &tote.UserID, &tote.Name, &tote.Description, &tote.Category,
		&tote.Icon, &tote.CreatedOn, &tote.UpdatedOn, &tote.CoverImagePath)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tote: %w", err)
	}

	return tote, nil
}

// List returns all totes, most recently updated first.
func (s *ToteStore) List(ctx context.Context) ([]*domain.Tote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, category, icon, created_on, updated_on, `+coverImageExpr+`
		FROM totes ORDER BY updated_on DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list totes: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var totes []*domain.Tote
	for rows.Next() {
		tote := &domain.Tote{}
		if err := rows.Scan(&tote.ID, &tote.UserID, &tote.Name, &tote.Description, &tote.Category,
			&tote.Icon, &tote.CreatedOn, &tote.UpdatedOn, &tote.CoverImagePath); err != nil {
			return nil, fmt.Errorf("failed to scan tote: %w", err)
		}
		totes = append(totes, tote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating totes: %w", err)
	}

	return totes, nil
}

// Update applies the supplied patch fields and stamps updated_on. Callers
// must reject empty patches before getting here; the updated_on stamp alone
// would otherwise count as a write.
func (s *ToteStore) Update(ctx context.Context, id string, patch domain.TotePatch) (*domain.Tote, error) {
	query := sq.Update("totes")
	if patch.Name != nil {
		query = query.Set("name", *patch.Name)
	}
	if patch.Description != nil {
		query = query.Set("description", *patch.Description)
	}
	if patch.Category != nil {
		query = query.Set("category", *patch.Category)
	}
	if patch.Icon != nil {
		query = query.Set("icon", *patch.Icon)
	}
	query = query.Set("updated_on", time.Now().UTC()).Where(sq.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build tote update query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update tote: %w", err)
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

func (s *ToteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM totes WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tote: %w", err)
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
