package storage

import (
	"fmt"
	"path"

	"github.com/smartscale/portfolio-api/internal/config"
)

// NewBackend builds the backend selected by STORAGE_BACKEND.
func NewBackend(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case "", "local":
		backend, err := NewDiskBackend(cfg.UploadPath)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case "s3":
		backend, err := NewS3Backend(cfg)
		if err != nil {
			return nil, err
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// Location describes where a backend keeps its assets, for startup logging.
func Location(backend Backend) string {
	switch b := backend.(type) {
	case *DiskBackend:
		return b.Dir()
	case *S3Backend:
		return "s3://" + path.Join(b.bucket, b.prefix)
	default:
		return fmt.Sprintf("%T", backend)
	}
}
