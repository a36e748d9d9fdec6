package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/totelink/totelink/internal/blobstore"
	"github.com/totelink/totelink/internal/domain"
)

var (
	// ErrUnauthorized is returned when a mutating call carries no owner identity.
	ErrUnauthorized = errors.New("missing owner identity")
	// ErrNoFields is returned when a partial update supplies no fields.
	ErrNoFields = errors.New("no fields to update")
	// ErrMissingName is returned when an item is created without a name.
	ErrMissingName = errors.New("item name required")
	// ErrMissingUpload is returned when an image upload lacks the file or owner field.
	ErrMissingUpload = errors.New("missing file or user_id")
)

// toteRepository is the subset of store.ToteStore that ToteService requires.
type toteRepository interface {
	Create(ctx context.Context, userID string, name, description, category *string, icon string) (*domain.Tote, error)
	GetByID(ctx context.Context, id string) (*domain.Tote, error)
	List(ctx context.Context) ([]*domain.Tote, error)
	Update(ctx context.Context, id string, patch domain.TotePatch) (*domain.Tote, error)
	Delete(ctx context.Context, id string) error
}

// toteImageRepository is the subset of store.ToteImageStore that ToteService requires.
type toteImageRepository interface {
	Create(ctx context.Context, id, toteID, userID, filePath string) (*domain.ToteImage, error)
	GetByID(ctx context.Context, id string) (*domain.ToteImage, error)
	ListByToteID(ctx context.Context, toteID string) ([]*domain.ToteImage, error)
	Delete(ctx context.Context, id string) error
	DeleteByToteID(ctx context.Context, toteID string) error
}

// itemRepository is the subset of store.ItemStore that ToteService requires.
type itemRepository interface {
	Create(ctx context.Context, toteID, name string) (*domain.Item, error)
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	ListByToteID(ctx context.Context, toteID string) ([]*domain.Item, error)
	Update(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error)
	Delete(ctx context.Context, id string) error
	DeleteByToteID(ctx context.Context, toteID string) error
}

// itemImageRepository is the subset of store.ItemImageStore that ToteService requires.
type itemImageRepository interface {
	Create(ctx context.Context, id, itemID, userID, filePath string) (*domain.ItemImage, error)
	GetByID(ctx context.Context, id string) (*domain.ItemImage, error)
	ListByItemID(ctx context.Context, itemID string) ([]*domain.ItemImage, error)
	Delete(ctx context.Context, id string) error
	DeleteByItemID(ctx context.Context, itemID string) error
}

type ToteService struct {
	toteStore      toteRepository
	toteImageStore toteImageRepository
	itemStore      itemRepository
	itemImageStore itemImageRepository
	blobs          blobstore.Store
	logger         *slog.Logger
}

func NewToteService(
	toteStore toteRepository,
	toteImageStore toteImageRepository,
	itemStore itemRepository,
	itemImageStore itemImageRepository,
	blobs blobstore.Store,
	logger *slog.Logger,
) *ToteService {
	return &ToteService{
		toteStore:      toteStore,
		toteImageStore: toteImageStore,
		itemStore:      itemStore,
		itemImageStore: itemImageStore,
		blobs:          blobs,
		logger:         logger,
	}
}

func (s *ToteService) CreateTote(ctx context.Context, userID string, name, description, category *string, icon string) (*domain.Tote, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.toteStore.Create(ctx, userID, name, description, category, icon)
}

func (s *ToteService) ListTotes(ctx context.Context) ([]*domain.Tote, error) {
	return s.toteStore.List(ctx)
}

func (s *ToteService) GetTote(ctx context.Context, id string) (*domain.Tote, error) {
	return s.toteStore.GetByID(ctx, id)
}

func (s *ToteService) UpdateTote(ctx context.Context, id string, patch domain.TotePatch) (*domain.Tote, error) {
	if patch.Empty() {
		return nil, ErrNoFields
	}
	return s.toteStore.Update(ctx, id, patch)
}

// DeleteTote removes a tote and everything hanging off it: item image blobs
// and rows, items, tote image blobs and rows, then the tote row itself. Blobs
// go first so a failure leaves records still pointing at stored bytes rather
// than the other way around.
func (s *ToteService) DeleteTote(ctx context.Context, id string) error {
	if _, err := s.toteStore.GetByID(ctx, id); err != nil {
		return err
	}

	items, err := s.itemStore.ListByToteID(ctx, id)
	if err != nil {
		return err
	}
	for _, item := range items {
		images, err := s.itemImageStore.ListByItemID(ctx, item.ID)
		if err != nil {
			return err
		}
		for _, img := range images {
			if err := s.blobs.Delete(ctx, img.FilePath); err != nil {
				return fmt.Errorf("failed to delete item image blob %s: %w", img.FilePath, err)
			}
		}
		if err := s.itemImageStore.DeleteByItemID(ctx, item.ID); err != nil {
			return err
		}
	}
	if err := s.itemStore.DeleteByToteID(ctx, id); err != nil {
		return err
	}

	images, err := s.toteImageStore.ListByToteID(ctx, id)
	if err != nil {
		return err
	}
	for _, img := range images {
		if err := s.blobs.Delete(ctx, img.FilePath); err != nil {
			return fmt.Errorf("failed to delete tote image blob %s: %w", img.FilePath, err)
		}
	}
	if err := s.toteImageStore.DeleteByToteID(ctx, id); err != nil {
		return err
	}

	s.logger.Info("tote deleted", "tote_id", id, "items", len(items), "images", len(images))
	return s.toteStore.Delete(ctx, id)
}

// UploadToteImage stores the blob first, then the metadata record. If the
// record insert fails the just-written blob is removed so neither store ends
// up with a dangling half.
func (s *ToteService) UploadToteImage(ctx context.Context, toteID, userID, filename string, r io.Reader, size int64) (*domain.ToteImage, error) {
	if userID == "" {
		return nil, ErrMissingUpload
	}
	if _, err := s.toteStore.GetByID(ctx, toteID); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	path := fmt.Sprintf("%s/%s%s", toteID, id, fileExt(filename))

	if err := s.blobs.Put(ctx, path, r, size, contentTypeFor(filename)); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	img, err := s.toteImageStore.Create(ctx, id, toteID, userID, path)
	if err != nil {
		if derr := s.blobs.Delete(ctx, path); derr != nil {
			s.logger.Error("failed to roll back blob after insert failure", "path", path, "error", derr)
		}
		return nil, err
	}

	s.logger.Info("tote image uploaded", "tote_id", toteID, "image_id", id, "path", path)
	return img, nil
}

func (s *ToteService) ListToteImages(ctx context.Context, toteID string) ([]*domain.ToteImage, error) {
	return s.toteImageStore.ListByToteID(ctx, toteID)
}

// DeleteToteImage removes the blob first, then the record. If the blob delete
// fails the record stays, which keeps the remaining state discoverable.
func (s *ToteService) DeleteToteImage(ctx context.Context, id string) error {
	img, err := s.toteImageStore.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, img.FilePath); err != nil {
		return fmt.Errorf("failed to delete image blob: %w", err)
	}

	s.logger.Info("tote image deleted", "image_id", id, "path", img.FilePath)
	return s.toteImageStore.Delete(ctx, id)
}

// FetchImage streams raw blob bytes for the given stored path.
func (s *ToteService) FetchImage(ctx context.Context, path string) (io.ReadCloser, *blobstore.ObjectInfo, error) {
	return s.blobs.Get(ctx, path)
}

func (s *ToteService) CreateItem(ctx context.Context, toteID, name string) (*domain.Item, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingName
	}
	if _, err := s.toteStore.GetByID(ctx, toteID); err != nil {
		return nil, err
	}
	return s.itemStore.Create(ctx, toteID, name)
}

func (s *ToteService) ListItems(ctx context.Context, toteID string) ([]*domain.Item, error) {
	return s.itemStore.ListByToteID(ctx, toteID)
}

func (s *ToteService) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error) {
	if patch.Empty() {
		return nil, ErrNoFields
	}
	return s.itemStore.Update(ctx, id, patch)
}

func (s *ToteService) DeleteItem(ctx context.Context, id string) error {
	return s.itemStore.Delete(ctx, id)
}

// UploadItemImage mirrors UploadToteImage with the items/ path prefix.
func (s *ToteService) UploadItemImage(ctx context.Context, itemID, userID, filename string, r io.Reader, size int64) (*domain.ItemImage, error) {
	if userID == "" {
		return nil, ErrMissingUpload
	}
	if _, err := s.itemStore.GetByID(ctx, itemID); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	path := fmt.Sprintf("items/%s/%s%s", itemID, id, fileExt(filename))

	if err := s.blobs.Put(ctx, path, r, size, contentTypeFor(filename)); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	img, err := s.itemImageStore.Create(ctx, id, itemID, userID, path)
	if err != nil {
		if derr := s.blobs.Delete(ctx, path); derr != nil {
			s.logger.Error("failed to roll back blob after insert failure", "path", path, "error", derr)
		}
		return nil, err
	}

	s.logger.Info("item image uploaded", "item_id", itemID, "image_id", id, "path", path)
	return img, nil
}

func (s *ToteService) ListItemImages(ctx context.Context, itemID string) ([]*domain.ItemImage, error) {
	return s.itemImageStore.ListByItemID(ctx, itemID)
}

func (s *ToteService) DeleteItemImage(ctx context.Context, id string) error {
	img, err := s.itemImageStore.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, img.FilePath); err != nil {
		return fmt.Errorf("failed to delete image blob: %w", err)
	}

	s.logger.Info("item image deleted", "image_id", id, "path", img.FilePath)
	return s.itemImageStore.Delete(ctx, id)
}

// fileExt keeps the original extension so stored paths stay recognizable.
func fileExt(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return ".jpg"
	}
	return strings.ToLower(ext)
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(fileExt(filename)); ct != "" {
		return ct
	}
	return "image/jpeg"
}
