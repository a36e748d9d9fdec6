package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToteImageStoreCreate(t *testing.T) {
	d := openTestDB(t)
	totes := NewToteStore(d)
	images := NewToteImageStore(d)
	ctx := context.Background()

	tote, err := totes.Create(ctx, "u1", strPtr("Camping Gear"), nil, nil, "")
	require.NoError(t, err)

	img, err := images.Create(ctx, "img-1", tote.ID, "u1", tote.ID+"/img-1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "img-1", img.ID)
	assert.Equal(t, tote.ID, img.ToteID)
	assert.Equal(t, "u1", img.UserID)
	assert.Equal(t, tote.ID+"/img-1.jpg", img.FilePath)
	assert.False(t, img.CreatedAt.IsZero())
}

func TestToteImageStoreCreate_DuplicatePathRejected(t *testing.T) {
	d := openTestDB(t)
	totes := NewToteStore(d)
	images := NewToteImageStore(d)
	ctx := context.Background()

	tote, err := totes.Create(ctx, "u1", strPtr("Camping Gear"), nil, nil, "")
	require.NoError(t, err)

	_, err = images.Create(ctx, "img-1", tote.ID, "u1", tote.ID+"/same.jpg")
	require.NoError(t, err)
	_, err = images.Create(ctx, "img-2", tote.ID, "u1", tote.ID+"/same.jpg")
	assert.Error(t, err, "file_path is unique")
}

func TestToteImageStoreListByToteID_NewestFirst(t *testing.T) {
	d := openTestDB(t)
	totes := NewToteStore(d)
	images := NewToteImageStore(d)
	ctx := context.Background()

	tote, err := totes.Create(ctx, "u1", strPtr("Camping Gear"), nil, nil, "")
	require.NoError(t, err)

	_, err = images.Create(ctx, "img-old", tote.ID, "u1", tote.ID+"/old.jpg")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = images.Create(ctx, "img-new", tote.ID, "u1", tote.ID+"/new.jpg")
	require.NoError(t, err)

	list, err := images.ListByToteID(ctx, tote.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "img-new", list[0].ID)
	assert.Equal(t, "img-old", list[1].ID)
}

func TestToteImageStoreGetByID_NotFound(t *testing.T) {
	d := openTestDB(t)
	images := NewToteImageStore(d)

	_, err := images.GetByID(context.Background(), "no-such-id")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestToteImageStoreDelete(t *testing.T) {
	d := openTestDB(t)
	totes := NewToteStore(d)
	images := NewToteImageStore(d)
	ctx := context.Background()

	tote, err := totes.Create(ctx, "u1", strPtr("Camping Gear"), nil, nil, "")
	require.NoError(t, err)
	_, err = images.Create(ctx, "img-1", tote.ID, "u1", tote.ID+"/img-1.jpg")
	require.NoError(t, err)

	require.NoError(t, images.Delete(ctx, "img-1"))

	_, err = images.GetByID(ctx, "img-1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestToteImageStoreDelete_NotFound(t *testing.T) {
	d := openTestDB(t)
	images := NewToteImageStore(d)

	err := images.Delete(context.Background(), "no-such-id")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestToteImageStoreDeleteByToteID(t *testing.T) {
	d := openTestDB(t)
	totes := NewToteStore(d)
	images := NewToteImageStore(d)
	ctx := context.Background()

	tote, err := totes.Create(ctx, "u1", strPtr("Camping Gear"), nil, nil, "")
	require.NoError(t, err)
	_, err = images.Create(ctx, "img-1", tote.ID, "u1", tote.ID+"/1.jpg")
	require.NoError(t, err)
	_, err = images.Create(ctx, "img-2", tote.ID, "u1", tote.ID+"/2.jpg")
	require.NoError(t, err)

	require.NoError(t, images.DeleteByToteID(ctx, tote.ID))

	list, err := images.ListByToteID(ctx, tote.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
