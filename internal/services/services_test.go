package services

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartscale/portfolio-api/internal/auth"
	"github.com/smartscale/portfolio-api/internal/config"
	"github.com/smartscale/portfolio-api/internal/database"
	"github.com/smartscale/portfolio-api/internal/models"
	"github.com/smartscale/portfolio-api/internal/repository"
	"github.com/smartscale/portfolio-api/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type testEnv struct {
	db             *gorm.DB
	authService    *AuthService
	projectService *ProjectService
	assets         *storage.AssetManager
	tokens         *auth.TokenService
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()

	cfg := &config.Config{
		GinMode: "release",
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(t.TempDir(), "portfolio.db"),
		},
	}
	log := zap.NewNop()

	db, err := database.Open(cfg, log)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, log))
	t.Cleanup(func() { _ = database.Close(db) })

	backend, err := storage.NewDiskBackend(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	assets := storage.NewAssetManager(backend, 1024, log)

	tokens := auth.NewTokenService("test-secret", time.Hour)
	authService := NewAuthService(repository.NewCredentialRepository(db), tokens, log)
	authService.hashCost = bcrypt.MinCost

	return testEnv{
		db:             db,
		authService:    authService,
		projectService: NewProjectService(repository.NewProjectRepository(db), assets, log),
		assets:         assets,
		tokens:         tokens,
	}
}

func pngUpload(name string) *storage.Upload {
	return &storage.Upload{
		Filename:    name,
		ContentType: "image/png",
		Size:        int64(len(testPNG)),
		Body:        bytes.NewReader(testPNG),
	}
}

func assetExists(t *testing.T, assets *storage.AssetManager, assetPath string) bool {
	t.Helper()

	name, ok := storage.NameFromPath(assetPath)
	require.True(t, ok, assetPath)

	body, _, err := assets.Open(context.Background(), name)
	if err != nil {
		require.ErrorIs(t, err, storage.ErrAssetNotFound)
		return false
	}
	body.Close()
	return true
}

func countProjects(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Project{}).Count(&count).Error)
	return count
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }
