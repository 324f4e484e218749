package storage

import (
	"path/filepath"
	"testing"

	"github.com/smartscale/portfolio-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	backend, err := NewBackend(config.StorageConfig{Backend: "local", UploadPath: dir})
	require.NoError(t, err)
	assert.IsType(t, &DiskBackend{}, backend)
	assert.Equal(t, dir, Location(backend))

	_, err = NewBackend(config.StorageConfig{Backend: "ftp"})
	assert.ErrorContains(t, err, "unsupported storage backend")
}

func TestLocation_S3(t *testing.T) {
	backend := NewS3BackendWithClient(nil, "assets", "projects")
	assert.Equal(t, "s3://assets/projects", Location(backend))
}
