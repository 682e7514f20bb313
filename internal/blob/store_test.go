package blob_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hravenhq/hraven/internal/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal valid 1x1 PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

func newTestStore(t *testing.T) *blob.Store {
	t.Helper()
	return blob.NewStore(t.TempDir(), slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func TestStore_SaveAvatar(t *testing.T) {
	store := newTestStore(t)
	tenantID := uuid.New()

	url, err := store.Save(tenantID, blob.KindAvatar, bytes.NewReader(pngBytes), "me.png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/"+tenantID.String()+"/profile/avatar_"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	// The file exists under the tenant-scoped directory.
	rel := strings.TrimPrefix(url, "/uploads/")
	_, err = os.Stat(filepath.Join(store.Root(), rel))
	require.NoError(t, err)
}

func TestStore_SaveLogo(t *testing.T) {
	store := newTestStore(t)
	tenantID := uuid.New()

	url, err := store.Save(tenantID, blob.KindLogo, bytes.NewReader(pngBytes), "logo.png")
	require.NoError(t, err)
	assert.Contains(t, url, "/"+tenantID.String()+"/logo/logo_")
}

func TestStore_RejectsMissingTenant(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(uuid.Nil, blob.KindAvatar, bytes.NewReader(pngBytes), "me.png")
	assert.ErrorIs(t, err, blob.ErrMissingTenant)
}

func TestStore_RejectsNonImageBeforePersisting(t *testing.T) {
	store := newTestStore(t)
	tenantID := uuid.New()

	_, err := store.Save(tenantID, blob.KindAvatar, strings.NewReader("#!/bin/sh\nrm -rf /\n"), "evil.png")
	assert.ErrorIs(t, err, blob.ErrUnsupportedMedia)

	// Nothing was written for the tenant.
	_, statErr := os.Stat(filepath.Join(store.Root(), tenantID.String()))
	assert.True(t, os.IsNotExist(statErr))
}

func TestStore_RejectsEmptyFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(uuid.New(), blob.KindAvatar, bytes.NewReader(nil), "empty.png")
	assert.ErrorIs(t, err, blob.ErrEmptyFile)
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t)
	tenantID := uuid.New()

	url, err := store.Save(tenantID, blob.KindAvatar, bytes.NewReader(pngBytes), "me.png")
	require.NoError(t, err)

	require.NoError(t, store.Remove(url))

	rel := strings.TrimPrefix(url, "/uploads/")
	_, statErr := os.Stat(filepath.Join(store.Root(), rel))
	assert.True(t, os.IsNotExist(statErr))

	// Removing again (or a foreign URL) is not an error.
	assert.NoError(t, store.Remove(url))
	assert.NoError(t, store.Remove("https://cdn.example.com/x.png"))
}
