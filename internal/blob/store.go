package blob

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrMissingTenant    = errors.New("tenant id is required")
	ErrEmptyFile        = errors.New("no file uploaded")
	ErrUnsupportedMedia = errors.New("only image files are allowed")
)

// Kind selects the tenant-scoped subdirectory a blob is stored under.
type Kind string

const (
	KindAvatar Kind = "avatar"
	KindLogo   Kind = "logo"
)

func (k Kind) subdir() string {
	if k == KindLogo {
		return "logo"
	}
	return "profile"
}

// Store writes uploaded avatars and logos to tenant-scoped directories
// on local disk and hands back the URL they are served under. Content
// is sniffed before anything touches disk; replacing a blob leaves the
// previous file in place for the sweep task to collect.
type Store struct {
	root   string
	logger *slog.Logger

	// now is swappable for tests; filenames embed epoch millis.
	now func() time.Time
}

func NewStore(root string, logger *slog.Logger) *Store {
	return &Store{root: root, logger: logger, now: time.Now}
}

// Root returns the directory blobs are stored under.
func (s *Store) Root() string {
	return s.root
}

// Save validates and persists an uploaded file for the given tenant,
// returning the public URL of the stored blob.
func (s *Store) Save(tenantID uuid.UUID, kind Kind, r io.Reader, originalName string) (string, error) {
	if tenantID == uuid.Nil {
		return "", ErrMissingTenant
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}

	// Sniff the real content type; the client-declared MIME type is
	// not trusted. Nothing is written for non-images.
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", ErrUnsupportedMedia
	}

	dir := filepath.Join(s.root, tenantID.String(), kind.subdir())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	ext := filepath.Ext(originalName)
	name := fmt.Sprintf("%s_%d%s", kind, s.now().UnixMilli(), ext)

	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}

	url := fmt.Sprintf("/uploads/%s/%s/%s", tenantID, kind.subdir(), name)
	s.logger.Debug("stored blob", "tenant_id", tenantID, "kind", kind, "url", url)
	return url, nil
}

// Remove deletes the blob behind a previously returned URL. Used by the
// orphan sweep; unknown URLs are ignored.
func (s *Store) Remove(url string) error {
	rel, ok := strings.CutPrefix(url, "/uploads/")
	if !ok {
		return nil
	}
	// Reject attempts to escape the upload root.
	rel = filepath.Clean(rel)
	if strings.HasPrefix(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
