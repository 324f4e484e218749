package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
)

// DiskBackend stores assets as files in a single directory.
type DiskBackend struct {
	dir string
}

// NewDiskBackend creates the upload directory if needed.
func NewDiskBackend(dir string) (*DiskBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskBackend{dir: dir}, nil
}

// Dir returns the upload directory.
func (b *DiskBackend) Dir() string {
	return b.dir
}

// Put writes to a temporary file and renames it into place.
func (b *DiskBackend) Put(_ context.Context, name string, body io.ReadSeeker, _ int64, _ string) error {
	tmp, err := os.CreateTemp(b.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write asset: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close asset: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(b.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move asset into place: %w", err)
	}
	return nil
}

// Delete removes the file; a missing file is not an error.
func (b *DiskBackend) Delete(_ context.Context, name string) error {
	err := os.Remove(filepath.Join(b.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Open opens the stored file for reading.
func (b *DiskBackend) Open(_ context.Context, name string) (io.ReadCloser, *AssetInfo, error) {
	f, err := os.Open(filepath.Join(b.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrAssetNotFound
		}
		return nil, nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, nil, ErrAssetNotFound
	}

	return f, &AssetInfo{
		Name:        name,
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		Size:        stat.Size(),
		ModTime:     stat.ModTime(),
	}, nil
}
