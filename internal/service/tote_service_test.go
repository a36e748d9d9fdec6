package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totelink/totelink/internal/blobstore"
	"github.com/totelink/totelink/internal/db"
	"github.com/totelink/totelink/internal/domain"
	"github.com/totelink/totelink/internal/store"
)

// memBlobStore is a simple in-memory implementation of blobstore.Store.
type memBlobStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	types map[string]string
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{
		data:  make(map[string][]byte),
		types: make(map[string]string),
	}
}

func (m *memBlobStore) Put(_ context.Context, path string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[path] = data
	m.types[path] = contentType
	return nil
}

func (m *memBlobStore) Get(_ context.Context, path string) (io.ReadCloser, *blobstore.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[path]
	if !ok {
		return nil, nil, blobstore.ErrNotFound
	}
	info := &blobstore.ObjectInfo{
		ContentType: m.types[path],
		ETag:        fmt.Sprintf("%x", md5.Sum(data)),
		Size:        int64(len(data)),
	}
	return io.NopCloser(bytes.NewReader(data)), info, nil
}

func (m *memBlobStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, path)
	delete(m.types, path)
	return nil
}

func (m *memBlobStore) Has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[path]
	return ok
}

func (m *memBlobStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

type testEnv struct {
	svc   *ToteService
	blobs *memBlobStore
	db    *sql.DB
}

func newTestService(t *testing.T) *testEnv {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	blobs := newMemBlobStore()
	svc := NewToteService(
		store.NewToteStore(d),
		store.NewToteImageStore(d),
		store.NewItemStore(d),
		store.NewItemImageStore(d),
		blobs,
		slog.Default(),
	)
	return &testEnv{svc: svc, blobs: blobs, db: d}
}

func strPtr(s string) *string { return &s }

func createTote(t *testing.T, env *testEnv, name string) *domain.Tote {
	t.Helper()
	tote, err := env.svc.CreateTote(context.Background(), "u1", strPtr(name), nil, nil, "")
	require.NoError(t, err)
	return tote
}

func TestCreateTote_RequiresOwner(t *testing.T) {
	env := newTestService(t)

	_, err := env.svc.CreateTote(context.Background(), "", strPtr("Camping Gear"), nil, nil, "")
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestCreateTote(t *testing.T) {
	env := newTestService(t)

	tote, err := env.svc.CreateTote(context.Background(), "u1", strPtr("Camping Gear"), nil, strPtr("Outdoor"), "")
	require.NoError(t, err)
	assert.Equal(t, "u1", tote.UserID)
	assert.Equal(t, domain.DefaultIcon, tote.Icon)
	assert.True(t, tote.CreatedOn.Equal(tote.UpdatedOn))
}

func TestUpdateTote_EmptyPatchRejected(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	tote := createTote(t, env, "Camping Gear")

	_, err := env.svc.UpdateTote(ctx, tote.ID, domain.TotePatch{})
	assert.True(t, errors.Is(err, ErrNoFields))

	// The rejected call must not have written anything.
	got, err := env.svc.GetTote(ctx, tote.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedOn.Equal(tote.UpdatedOn))
}

func TestUploadToteImage(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	tote := createTote(t, env, "Camping Gear")

	img, err := env.svc.UploadToteImage(ctx, tote.ID, "u1", "photo.PNG", strings.NewReader("png bytes"), 9)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(img.FilePath, tote.ID+"/"))
	assert.True(t, strings.HasSuffix(img.FilePath, ".png"), "extension is kept, lowercased")
	assert.True(t, env.blobs.Has(img.FilePath))

	list, err := env.svc.ListToteImages(ctx, tote.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, img.ID, list[0].ID)
}

func TestUploadToteImage_UniquePaths(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	tote := createTote(t, env, "Camping Gear")

	a, err := env.svc.UploadToteImage(ctx, tote.ID, "u1", "photo.jpg", strings.NewReader("a"), 1)
	require.NoError(t, err)
	b, err := env.svc.UploadToteImage(ctx, tote.ID, "u1", "photo.jpg", strings.NewReader("b"), 1)
	require.NoError(t, err)

	assert.NotEqual(t, a.FilePath, b.FilePath)
}

func TestUploadToteImage_MissingOwner(t *testing.T) {
	env := newTestService(t)
	tote := createTote(t, env, "Camping Gear")

	_, err := env.svc.UploadToteImage(context.Background(), tote.ID, "", "photo.jpg", strings.NewReader("x"), 1)
	assert.True(t, errors.Is(err, ErrMissingUpload))
	assert.Zero(t, env.blobs.Len())
}

func TestUploadToteImage_ToteMissing(t *testing.T) {
	env := newTestService(t)

	_, err := env.svc.UploadToteImage(context.Background(), "no-such-tote", "u1", "photo.jpg", strings.NewReader("x"), 1)
	assert.True(t, errors.Is(err, store.ErrNotFound))
	assert.Zero(t, env.blobs.Len(), "no blob may be written for a missing tote")
}

// failingImageRepo fails every insert so the upload saga has to roll back.
type failingImageRepo struct {
	toteImageRepository
}

func (f *failingImageRepo) Create(context.Context, string, string, string, string) (*domain.ToteImage, error) {
	return nil, errors.New("insert failed")
}

func TestUploadToteImage_RollsBackBlobOnInsertFailure(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	tote := createTote(t, env, "Camping Gear")

	svc := NewToteService(
		store.NewToteStore(env.db),
		&failingImageRepo{toteImageRepository: store.NewToteImageStore(env.db)},
		store.NewItemStore(env.db),
		store.NewItemImageStore(env.db),
		env.blobs,
		slog.Default(),
	)

	_, err := svc.UploadToteImage(ctx, tote.ID, "u1", "photo.jpg", strings.NewReader("x"), 1)
	assert.Error(t, err)
	assert.Zero(t, env.blobs.Len(), "blob must be rolled back when the record insert fails")
}

func TestDeleteToteImage(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	tote := createTote(t, env, "Camping Gear")

	img, err := env.svc.UploadToteImage(ctx, tote.ID, "u1", "photo.jpg", strings.NewReader("x"), 1)
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteToteImage(ctx, img.ID))

	assert.False(t, env.blobs.Has(img.FilePath))
	list, err := env.svc.ListToteImages(ctx, tote.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteToteImage_NotFound(t *testing.T) {
	env := newTestService(t)

	err := env.svc.DeleteToteImage(context.Background(), "no-such-id")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestFetchImage_Missing(t *testing.T) {
	env := newTestService(t)

	_, _, err := env.svc.FetchImage(context.Background(), "nope/missing.jpg")
	assert.True(t, errors.Is(err, blobstore.ErrNotFound))
}

func TestCreateItem_RequiresName(t *testing.T) {
	env := newTestService(t)
	tote := createTote(t, env, "Camping Gear")

	_, err := env.svc.CreateItem(context.Background(), tote.ID, "   ")
	assert.True(t, errors.Is(err, ErrMissingName))

	items, err := env.svc.ListItems(context.Background(), tote.ID)
	require.NoError(t, err)
	assert.Empty(t, items, "rejected create must not insert a row")
}

func TestUpdateItem_EmptyPatchRejected(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	tote := createTote(t, env, "Camping Gear")

	item, err := env.svc.CreateItem(ctx, tote.ID, "Tent")
	require.NoError(t, err)

	_, err = env.svc.UpdateItem(ctx, item.ID, domain.ItemPatch{})
	assert.True(t, errors.Is(err, ErrNoFields))
}

func TestDeleteItem_Idempotent(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	tote := createTote(t, env, "Camping Gear")

	item, err := env.svc.CreateItem(ctx, tote.ID, "Tent")
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteItem(ctx, item.ID))
	assert.NoError(t, env.svc.DeleteItem(ctx, item.ID))
}

func TestUploadItemImage_PathPrefix(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	tote := createTote(t, env, "Camping Gear")

	item, err := env.svc.CreateItem(ctx, tote.ID, "Tent")
	require.NoError(t, err)

	img, err := env.svc.UploadItemImage(ctx, item.ID, "u1", "photo.jpg", strings.NewReader("x"), 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.FilePath, "items/"+item.ID+"/"))
	assert.True(t, env.blobs.Has(img.FilePath))
}

func TestDeleteTote_Cascade(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()
	tote := createTote(t, env, "Camping Gear")

	item, err := env.svc.CreateItem(ctx, tote.ID, "Tent")
	require.NoError(t, err)
	toteImg, err := env.svc.UploadToteImage(ctx, tote.ID, "u1", "a.jpg", strings.NewReader("a"), 1)
	require.NoError(t, err)
	itemImg, err := env.svc.UploadItemImage(ctx, item.ID, "u1", "b.jpg", strings.NewReader("b"), 1)
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteTote(ctx, tote.ID))

	assert.False(t, env.blobs.Has(toteImg.FilePath))
	assert.False(t, env.blobs.Has(itemImg.FilePath))

	_, err = env.svc.GetTote(ctx, tote.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	images, err := env.svc.ListToteImages(ctx, tote.ID)
	require.NoError(t, err)
	assert.Empty(t, images)
	items, err := env.svc.ListItems(ctx, tote.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteTote_NotFound(t *testing.T) {
	env := newTestService(t)

	err := env.svc.DeleteTote(context.Background(), "no-such-id")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}
