package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/smartscale/portfolio-api/internal/dto"
	apierrors "github.com/smartscale/portfolio-api/internal/errors"
	"github.com/smartscale/portfolio-api/internal/models"
	"github.com/smartscale/portfolio-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ProjectHandlerTestSuite struct {
	suite.Suite
	env   handlerTestEnv
	token string
}

func (s *ProjectHandlerTestSuite) SetupTest() {
	s.env = setupHandlerTestEnv(s.T(), 1024)
	s.token = s.env.token(s.T())
}

func TestProjectHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectHandlerTestSuite))
}

func baseFields() map[string][]string {
	return map[string][]string{
		"title":       {"A"},
		"description": {"d"},
		"category":    {"c"},
		"features":    {"x, y"},
	}
}

func (s *ProjectHandlerTestSuite) create(fields map[string][]string, file *formFile) uint64 {
	w := s.env.do(s.T(), multipartRequest(s.T(), http.MethodPost, "/api/projects", fields, file, s.token))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.ProjectCreatedDTO](s.T(), w).ID
}

func (s *ProjectHandlerTestSuite) get(id uint64) dto.ProjectDTO {
	w := s.env.do(s.T(), httptest.NewRequest(http.MethodGet, "/api/projects/"+strconv.FormatUint(id, 10), nil))
	s.Require().Equal(http.StatusOK, w.Code)
	return decode[dto.ProjectDTO](s.T(), w)
}

func (s *ProjectHandlerTestSuite) assetOnDisk(assetPath string) bool {
	name, ok := storage.NameFromPath(assetPath)
	s.Require().True(ok)
	_, err := os.Stat(filepath.Join(s.env.backend.Dir(), name))
	return err == nil
}

func (s *ProjectHandlerTestSuite) TestCreate_AppearsInPublicListing() {
	id := s.create(baseFields(), nil)
	s.Equal(uint64(1), id)

	w := s.env.do(s.T(), httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	s.Require().Equal(http.StatusOK, w.Code)

	listing := decode[[]map[string]any](s.T(), w)
	s.Require().Len(listing, 1)
	s.Equal(float64(1), listing[0]["id"])
	s.Equal([]any{"x", "y"}, listing[0]["features"])
	s.NotContains(listing[0], "is_active")
}

func (s *ProjectHandlerTestSuite) TestCreate_RepeatedFeatureFields() {
	fields := baseFields()
	fields["features"] = []string{"one", "two", "three"}
	id := s.create(fields, nil)

	s.Equal([]string{"one", "two", "three"}, s.get(id).Features)
}

func (s *ProjectHandlerTestSuite) TestCreate_JSONBody() {
	w := s.env.do(s.T(), jsonRequest(s.T(), http.MethodPost, "/api/projects", map[string]any{
		"title":         "A",
		"description":   "d",
		"category":      "c",
		"features":      []string{"x", "y"},
		"display_order": 3,
		"is_active":     false,
	}, s.token))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	project := s.get(decode[dto.ProjectCreatedDTO](s.T(), w).ID)
	s.Equal(3, project.DisplayOrder)
	s.False(project.IsActive)
}

func (s *ProjectHandlerTestSuite) TestCreate_RequiresToken() {
	w := s.env.do(s.T(), multipartRequest(s.T(), http.MethodPost, "/api/projects", baseFields(), nil, ""))
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.env.do(s.T(), multipartRequest(s.T(), http.MethodPost, "/api/projects", baseFields(), nil, "garbage"))
	s.Equal(http.StatusUnauthorized, w.Code)

	var count int64
	s.Require().NoError(s.env.db.Model(&models.Project{}).Count(&count).Error)
	s.Zero(count)
}

func (s *ProjectHandlerTestSuite) TestCreate_MissingFields() {
	w := s.env.do(s.T(), multipartRequest(s.T(), http.MethodPost, "/api/projects", map[string][]string{"title": {"A"}}, nil, s.token))
	s.Require().Equal(http.StatusBadRequest, w.Code)
	s.Equal(apierrors.ErrCodeValidationError, decode[apierrors.APIError](s.T(), w).Code)
}

func (s *ProjectHandlerTestSuite) TestCreate_InvalidDisplayOrder() {
	fields := baseFields()
	fields["display_order"] = []string{"first"}

	w := s.env.do(s.T(), multipartRequest(s.T(), http.MethodPost, "/api/projects", fields, nil, s.token))
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ProjectHandlerTestSuite) TestCreate_ExecutableUploadRejected() {
	file := &formFile{name: "setup.exe", contentType: "application/x-msdownload", data: []byte("MZ")}
	w := s.env.do(s.T(), multipartRequest(s.T(), http.MethodPost, "/api/projects", baseFields(), file, s.token))

	s.Require().Equal(http.StatusBadRequest, w.Code)
	s.Equal(apierrors.ErrCodeUnsupportedMediaType, decode[apierrors.APIError](s.T(), w).Code)

	var count int64
	s.Require().NoError(s.env.db.Model(&models.Project{}).Count(&count).Error)
	s.Zero(count)
}

func (s *ProjectHandlerTestSuite) TestCreate_OversizedUploadRejected() {
	file := &formFile{name: "big.png", contentType: "image/png", data: append(append([]byte{}, testPNG...), bytes.Repeat([]byte{0}, 2048)...)}
	w := s.env.do(s.T(), multipartRequest(s.T(), http.MethodPost, "/api/projects", baseFields(), file, s.token))

	s.Require().Equal(http.StatusBadRequest, w.Code)
	s.Equal(apierrors.ErrCodePayloadTooLarge, decode[apierrors.APIError](s.T(), w).Code)
}

func (s *ProjectHandlerTestSuite) TestUpdate_ReplacesImage() {
	id := s.create(baseFields(), &formFile{name: "old.png", contentType: "image/png", data: testPNG})
	oldPath := *s.get(id).ImagePath
	s.True(s.assetOnDisk(oldPath))

	fields := baseFields()
	fields["image_alt"] = []string{"New screenshot"}
	w := s.env.do(s.T(), multipartRequest(s.T(), http.MethodPut, "/api/projects/"+strconv.FormatUint(id, 10), fields,
		&formFile{name: "new.png", contentType: "image/png", data: testPNG}, s.token))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	project := s.get(id)
	s.Require().NotNil(project.ImagePath)
	s.NotEqual(oldPath, *project.ImagePath)
	s.Equal("New screenshot", *project.ImageAlt)
	s.True(s.assetOnDisk(*project.ImagePath))
	s.False(s.assetOnDisk(oldPath))

	// The new asset is served at its public path.
	w = s.env.do(s.T(), httptest.NewRequest(http.MethodGet, *project.ImagePath, nil))
	s.Require().Equal(http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	s.Require().NoError(err)
	s.Equal(testPNG, body)
	s.Equal("image/png", w.Header().Get("Content-Type"))

	w = s.env.do(s.T(), httptest.NewRequest(http.MethodGet, oldPath, nil))
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ProjectHandlerTestSuite) TestUpdate_NotFound() {
	w := s.env.do(s.T(), multipartRequest(s.T(), http.MethodPut, "/api/projects/77", baseFields(), nil, s.token))
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ProjectHandlerTestSuite) TestAdminListing() {
	fields := baseFields()
	fields["is_active"] = []string{"false"}
	s.create(fields, nil)
	s.create(baseFields(), nil)

	w := s.env.do(s.T(), httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(decode[[]dto.PublicProjectDTO](s.T(), w), 1)

	w = s.env.do(s.T(), httptest.NewRequest(http.MethodGet, "/api/projects/admin", nil))
	s.Equal(http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/admin", nil)
	req.Header.Set("Authorization", "Bearer "+s.token)
	w = s.env.do(s.T(), req)
	s.Require().Equal(http.StatusOK, w.Code)
	all := decode[[]dto.ProjectDTO](s.T(), w)
	s.Len(all, 2)
}

func (s *ProjectHandlerTestSuite) TestGetProject_NotFound() {
	w := s.env.do(s.T(), httptest.NewRequest(http.MethodGet, "/api/projects/5", nil))
	s.Equal(http.StatusNotFound, w.Code)

	w = s.env.do(s.T(), httptest.NewRequest(http.MethodGet, "/api/projects/abc", nil))
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ProjectHandlerTestSuite) TestDelete_Twice() {
	id := s.create(baseFields(), &formFile{name: "a.png", contentType: "image/png", data: testPNG})
	assetPath := *s.get(id).ImagePath
	path := "/api/projects/" + strconv.FormatUint(id, 10)

	req := httptest.NewRequest(http.MethodDelete, path, nil)
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := s.env.do(s.T(), req)
	s.Require().Equal(http.StatusOK, w.Code)
	s.False(s.assetOnDisk(assetPath))

	req = httptest.NewRequest(http.MethodDelete, path, nil)
	req.Header.Set("Authorization", "Bearer "+s.token)
	w = s.env.do(s.T(), req)
	s.Equal(http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	env := setupHandlerTestEnv(t, 1024)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]string](t, w)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "test", body["environment"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestExpandFeatures(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, expandFeatures([]string{"a, b"}))
	assert.Equal(t, []string{"a", "b"}, expandFeatures([]string{"a", "b"}))
	assert.Empty(t, expandFeatures(nil))
}

func TestParseFormBool(t *testing.T) {
	for in, want := range map[string]bool{"true": true, "1": true, "on": true, "false": false, "0": false, "off": false} {
		got, err := parseFormBool(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseFormBool("maybe")
	assert.Error(t, err)
}

func (s *ProjectHandlerTestSuite) TestMutationsLogActingAdministrator() {
	credential, err := s.env.authService.Verify(context.Background(), s.token)
	s.Require().NoError(err)

	id := s.create(baseFields(), nil)
	path := "/api/projects/" + strconv.FormatUint(id, 10)

	w := s.env.do(s.T(), multipartRequest(s.T(), http.MethodPut, path, baseFields(), nil, s.token))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	w = s.env.do(s.T(), httptest.NewRequest(http.MethodDelete, path, nil))
	s.Require().Equal(http.StatusUnauthorized, w.Code)
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	req.Header.Set("Authorization", "Bearer "+s.token)
	w = s.env.do(s.T(), req)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	entries := s.env.logs.FilterMessage("Project changed").AllUntimed()
	s.Require().Len(entries, 3)
	for i, action := range []string{"create", "update", "delete"} {
		fields := entries[i].ContextMap()
		s.Equal(action, fields["action"])
		s.Equal(id, fields["project_id"])
		s.Equal(credential.ID, fields["credential_id"])
		s.Equal("admin", fields["username"])
	}
}
