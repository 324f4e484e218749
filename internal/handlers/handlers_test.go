package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smartscale/portfolio-api/internal/auth"
	"github.com/smartscale/portfolio-api/internal/config"
	"github.com/smartscale/portfolio-api/internal/database"
	"github.com/smartscale/portfolio-api/internal/middleware"
	"github.com/smartscale/portfolio-api/internal/repository"
	"github.com/smartscale/portfolio-api/internal/services"
	"github.com/smartscale/portfolio-api/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

var testPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type handlerTestEnv struct {
	db             *gorm.DB
	router         *gin.Engine
	authService    *services.AuthService
	projectService *services.ProjectService
	assets         *storage.AssetManager
	backend        *storage.DiskBackend
	logs           *observer.ObservedLogs
}

func init() {
	gin.SetMode(gin.TestMode)
}

func setupHandlerTestEnv(t *testing.T, maxUpload int64) handlerTestEnv {
	t.Helper()

	cfg := &config.Config{
		GinMode: "release",
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(t.TempDir(), "portfolio.db"),
		},
	}
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	db, err := database.Open(cfg, log)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, log))
	t.Cleanup(func() { _ = database.Close(db) })

	backend, err := storage.NewDiskBackend(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	assets := storage.NewAssetManager(backend, maxUpload, log)

	authService := services.NewAuthService(repository.NewCredentialRepository(db), auth.NewTokenService("test-secret", time.Hour), log)
	_, err = authService.Bootstrap(context.Background(), services.BootstrapInput{Username: "admin", Password: "smartscale2024"})
	require.NoError(t, err)

	projectService := services.NewProjectService(repository.NewProjectRepository(db), assets, log)

	authHandler := NewAuthHandler(authService, log)
	projectHandler := NewProjectHandler(projectService, maxUpload, log)
	assetHandler := NewAssetHandler(assets, log)
	requireAuth := middleware.RequireAuth(authService, log)

	r := gin.New()
	r.GET("/uploads/:name", assetHandler.Serve)
	r.GET("/api/health", Health("test"))
	r.POST("/api/auth/login", authHandler.Login)
	r.POST("/api/auth/verify", authHandler.Verify)
	r.POST("/api/auth/change-password", authHandler.ChangePassword)
	r.GET("/api/projects", projectHandler.ListActive)
	r.GET("/api/projects/admin", requireAuth, projectHandler.ListAll)
	r.GET("/api/projects/:id", projectHandler.GetProject)
	r.POST("/api/projects", requireAuth, projectHandler.CreateProject)
	r.PUT("/api/projects/:id", requireAuth, projectHandler.UpdateProject)
	r.DELETE("/api/projects/:id", requireAuth, projectHandler.DeleteProject)

	return handlerTestEnv{
		db:             db,
		router:         r,
		authService:    authService,
		projectService: projectService,
		assets:         assets,
		backend:        backend,
		logs:           logs,
	}
}

func (env handlerTestEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env handlerTestEnv) token(t *testing.T) string {
	t.Helper()
	result, err := env.authService.Login(context.Background(), services.LoginInput{Username: "admin", Password: "smartscale2024"})
	require.NoError(t, err)
	return result.Token
}

func jsonRequest(t *testing.T, method, path string, payload any, token string) *http.Request {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

type formFile struct {
	name        string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, method, path string, fields map[string][]string, file *formFile, token string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	if file != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="image"; filename="`+file.name+`"`)
		header.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
