package handlers_test

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/hravenhq/hraven/internal/blob"
	"github.com/hravenhq/hraven/internal/onboarding"
	"github.com/hravenhq/hraven/internal/provisioning"
	"github.com/hravenhq/hraven/internal/role"
	"github.com/hravenhq/hraven/internal/tenant"
	"github.com/hravenhq/hraven/internal/testutil"
	"github.com/hravenhq/hraven/pkg/crypto"
	"github.com/stretchr/testify/require"
)

// Minimal valid 1x1 PNG used as upload fixture.
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

// services bundles the service layer wired against the test database.
type services struct {
	Tenants  *tenant.Service
	Roles    *role.Service
	Users    *provisioning.Service
	Wizard   *onboarding.Service
	Blobs    *blob.Store
	Progress onboarding.ProgressStore
}

func newServices(t *testing.T, tc *testutil.TestSetup) *services {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	encryptor, err := crypto.NewEncryptor("")
	require.NoError(t, err)

	tenants := tenant.NewService(tc.DB, logger)
	roles := role.NewService(tc.DB)
	users := provisioning.NewService(tc.DB, tenants, roles, encryptor, nil, logger, 0)
	progress := onboarding.NewMemoryStore()
	wizard := onboarding.NewService(progress, users, tenants, nil, logger)
	blobs := blob.NewStore(t.TempDir(), logger)

	return &services{
		Tenants:  tenants,
		Roles:    roles,
		Users:    users,
		Wizard:   wizard,
		Blobs:    blobs,
		Progress: progress,
	}
}

// multipartRequest builds a multipart form request from plain fields
// plus optional file parts.
func multipartRequest(t *testing.T, method, path string, fields map[string]string, files map[string][]byte, token string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for field, data := range files {
		part, err := writer.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(data))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
