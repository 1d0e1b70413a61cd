package services

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"github.com/localnerve/carscan-store/internal/images"
	"github.com/localnerve/carscan-store/internal/store"
	"github.com/localnerve/carscan-store/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var captured = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func newTestScanService(t *testing.T) (*ScanService, store.Repository, afero.Fs) {
	t.Helper()

	repo := store.NewLocalStore(testutil.OpenSQLite(t))
	require.NoError(t, repo.Initialize(context.Background()))

	fs := afero.NewMemMapFs()
	svc := NewScanService(images.New(fs, "images"), images.New(fs, "users"), zerolog.Nop()).
		WithClock(func() time.Time { return captured })
	return svc, repo, fs
}

func TestRecordSavesImageAndScan(t *testing.T) {
	ctx := context.Background()
	svc, repo, fs := newTestScanService(t)

	ident, err := ParseIdentification(`{"name":"Porsche 911 GT3","manufacturer":"Porsche"}`)
	require.NoError(t, err)

	imgs, err := svc.Images("")
	require.NoError(t, err)
	photo := []byte{0xFF, 0xD8, 0xFF, 0xD9}

	scan, err := svc.Record(ctx, repo, imgs, ident, base64.StdEncoding.EncodeToString(photo))
	require.NoError(t, err)

	assert.Equal(t, captured.UnixMilli(), scan.Timestamp)
	require.Len(t, scan.Images, 1)
	assert.Equal(t, filepath.Join("images", scan.ID+".jpg"), scan.Images[0])

	onDisk, err := afero.ReadFile(fs, scan.Images[0])
	require.NoError(t, err)
	assert.Equal(t, photo, onDisk)

	recent, err := repo.GetRecentScans(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, scan, recent[0])
}

func TestRecordWithoutImage(t *testing.T) {
	svc, repo, _ := newTestScanService(t)
	imgs, err := svc.Images("")
	require.NoError(t, err)

	scan, err := svc.Record(context.Background(), repo, imgs, Identification{Name: "Mini"}, "")
	require.NoError(t, err)
	assert.Empty(t, scan.Images)
}

func TestRecordRejectsBadImage(t *testing.T) {
	svc, repo, _ := newTestScanService(t)
	imgs, err := svc.Images("")
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), repo, imgs, Identification{Name: "Mini"}, "%%%")
	require.Error(t, err)

	recent, err := repo.GetRecentScans(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestImagesPerUser(t *testing.T) {
	svc, _, _ := newTestScanService(t)

	local, err := svc.Images("")
	require.NoError(t, err)
	assert.Equal(t, "images", local.Dir())

	alice, err := svc.Images("alice")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("users", "alice"), alice.Dir())

	_, err = svc.Images("../alice")
	assert.ErrorIs(t, err, images.ErrInvalidID)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	svc, repo, fs := newTestScanService(t)
	imgs, err := svc.Images("")
	require.NoError(t, err)

	_, err = svc.Record(ctx, repo, imgs, Identification{Name: "Mini"}, base64.StdEncoding.EncodeToString([]byte("jpeg")))
	require.NoError(t, err)

	require.NoError(t, svc.ClearAll(ctx, repo, imgs))

	recent, err := repo.GetRecentScans(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, recent)

	exists, err := afero.DirExists(fs, "images")
	require.NoError(t, err)
	assert.False(t, exists)

	collections, err := repo.GetCollections(ctx)
	require.NoError(t, err)
	assert.Len(t, collections, 1)
}
