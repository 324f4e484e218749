package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/smartscale/portfolio-api/internal/constants"
	"github.com/smartscale/portfolio-api/internal/utils"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedMediaType = errors.New("only image files are allowed")
	ErrPayloadTooLarge      = errors.New("file too large")
	ErrAssetNotFound        = errors.New("asset not found")
	errNoUpload             = errors.New("no upload provided")
)

var allowedImageTypes = map[string]bool{
	"jpeg": true,
	"jpg":  true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// Upload is an inbound file as received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AssetInfo describes a stored asset.
type AssetInfo struct {
	Name        string
	ContentType string
	Size        int64
	ModTime     time.Time
}

// Backend persists asset bytes under a flat name.
type Backend interface {
	// Put durably stores the body under name. A failed Put leaves nothing visible under name.
	Put(ctx context.Context, name string, body io.ReadSeeker, size int64, contentType string) error
	// Delete removes name. Deleting a missing asset is not an error.
	Delete(ctx context.Context, name string) error
	// Open returns the stored bytes, or ErrAssetNotFound.
	Open(ctx context.Context, name string) (io.ReadCloser, *AssetInfo, error)
}

// AssetManager owns the lifecycle of uploaded project images.
type AssetManager struct {
	backend Backend
	maxSize int64
	log     *zap.Logger
	now     func() time.Time
}

// NewAssetManager creates an AssetManager storing into backend with the given size ceiling.
func NewAssetManager(backend Backend, maxSize int64, log *zap.Logger) *AssetManager {
	return &AssetManager{
		backend: backend,
		maxSize: maxSize,
		log:     log,
		now:     time.Now,
	}
}

// MaxSize returns the configured upload ceiling in bytes.
func (m *AssetManager) MaxSize() int64 {
	return m.maxSize
}

// Store validates and persists an upload, returning its public asset path.
func (m *AssetManager) Store(ctx context.Context, upload *Upload) (string, error) {
	if upload == nil || upload.Body == nil {
		return "", errNoUpload
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !allowedImageTypes[strings.TrimPrefix(ext, ".")] {
		return "", ErrUnsupportedMediaType
	}
	if upload.Size > m.maxSize {
		return "", ErrPayloadTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(upload.Body, m.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > m.maxSize {
		return "", ErrPayloadTooLarge
	}

	mediaType := declaredMediaType(upload.ContentType, data)
	if !isAllowedMediaType(mediaType) {
		return "", ErrUnsupportedMediaType
	}

	name, err := utils.GenerateAssetName(m.now(), ext)
	if err != nil {
		return "", fmt.Errorf("failed to name asset: %w", err)
	}

	if err := m.backend.Put(ctx, name, bytes.NewReader(data), int64(len(data)), mediaType); err != nil {
		return "", fmt.Errorf("failed to store asset %s: %w", name, err)
	}

	m.log.Debug("Asset stored",
		zap.String("name", name),
		zap.String("content_type", mediaType),
		zap.Int("size", len(data)),
	)

	return constants.UploadURLPrefix + name, nil
}

// Release deletes the asset behind assetPath. Missing assets and paths this
// manager never issued are ignored.
func (m *AssetManager) Release(ctx context.Context, assetPath string) error {
	name, ok := NameFromPath(assetPath)
	if !ok {
		m.log.Debug("Skipping release of unmanaged asset path", zap.String("path", assetPath))
		return nil
	}

	if err := m.backend.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to release asset %s: %w", name, err)
	}

	m.log.Debug("Asset released", zap.String("name", name))
	return nil
}

// Open returns the stored asset with the given name.
func (m *AssetManager) Open(ctx context.Context, name string) (io.ReadCloser, *AssetInfo, error) {
	if !validName(name) {
		return nil, nil, ErrAssetNotFound
	}
	return m.backend.Open(ctx, name)
}

// NameFromPath extracts the asset name from a public asset path.
func NameFromPath(assetPath string) (string, bool) {
	if !strings.HasPrefix(assetPath, constants.UploadURLPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(assetPath, constants.UploadURLPrefix)
	if !validName(name) {
		return "", false
	}
	return name, true
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func declaredMediaType(contentType string, data []byte) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "" || mediaType == "application/octet-stream" {
		mediaType, _, _ = mime.ParseMediaType(mimetype.Detect(data).String())
	}
	return strings.ToLower(mediaType)
}

func isAllowedMediaType(mediaType string) bool {
	subtype, ok := strings.CutPrefix(mediaType, "image/")
	if !ok {
		return false
	}
	return allowedImageTypes[subtype]
}
