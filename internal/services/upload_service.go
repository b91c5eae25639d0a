package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/storage"
)

const DefaultMaxUploadBytes int64 = 5 * 1024 * 1024

var (
	ErrMissingFile          = errors.New("no file provided")
	ErrUnsupportedMediaType = errors.New("invalid file type, only JPEG, PNG and PDF files are allowed")
	ErrPayloadTooLarge      = errors.New("file size too large")
)

var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/jpg":       true,
	"application/pdf": true,
}

// Upload is one file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type UploadService struct {
	store    storage.ObjectStore
	maxBytes int64
	now      func() time.Time
}

func NewUploadService(store storage.ObjectStore, maxBytes int64) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadService{store: store, maxBytes: maxBytes, now: time.Now}
}

// Upload stores the file under a key namespaced by owner and returns its URL.
// Size is checked before media type.
func (s *UploadService) Upload(ctx context.Context, ownerID string, file *Upload) (string, error) {
	if file == nil || file.Body == nil {
		return "", ErrMissingFile
	}
	if file.Size > s.maxBytes {
		return "", fmt.Errorf("%w: maximum size is %d bytes", ErrPayloadTooLarge, s.maxBytes)
	}

	mediaType := normalizeMediaType(file.ContentType)
	if !allowedUploadTypes[mediaType] {
		return "", ErrUnsupportedMediaType
	}

	key := s.objectKey(ownerID, file.Filename)
	url, err := s.store.Put(ctx, key, mediaType, file.Body, file.Size)
	if err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return url, nil
}

func (s *UploadService) objectKey(ownerID, filename string) string {
	return fmt.Sprintf("report-cards/%s_%d_%s",
		sanitizeKeyPart(ownerID), s.now().UnixMilli(), sanitizeFilename(filename))
}

func normalizeMediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

const maxFilenameLen = 100

// sanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] so the result is a single safe key segment.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	name = sanitizeKeyPart(name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "file"
	}
	if len(name) > maxFilenameLen {
		name = name[len(name)-maxFilenameLen:]
	}
	return name
}

func sanitizeKeyPart(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
