package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/smartscale/portfolio-api/internal/dto"
	apierrors "github.com/smartscale/portfolio-api/internal/errors"
	"github.com/smartscale/portfolio-api/internal/middleware"
	"github.com/smartscale/portfolio-api/internal/services"
	"github.com/smartscale/portfolio-api/internal/storage"
	"go.uber.org/zap"
)

// multipartOverhead is the allowance for form fields on top of the image ceiling.
const multipartOverhead int64 = 1 << 20

// ProjectHandler serves the project endpoints.
type ProjectHandler struct {
	projectService *services.ProjectService
	maxUploadSize  int64
	log            *zap.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService, maxUploadSize int64, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		maxUploadSize:  maxUploadSize,
		log:            log,
	}
}

// projectForm is the multipart or urlencoded project body.
type projectForm struct {
	Title        string   `form:"title"`
	Description  string   `form:"description"`
	Category     string   `form:"category"`
	Features     []string `form:"features"`
	LiveURL      *string  `form:"live_url"`
	ImageAlt     *string  `form:"image_alt"`
	DisplayOrder string   `form:"display_order"`
	IsActive     string   `form:"is_active"`
}

// projectJSON is the JSON project body, used when no image is attached.
type projectJSON struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Features     []string `json:"features"`
	LiveURL      *string  `json:"live_url"`
	ImageAlt     *string  `json:"image_alt"`
	DisplayOrder *int     `json:"display_order"`
	IsActive     *bool    `json:"is_active"`
}

// ListActive returns the public project listing.
func (h *ProjectHandler) ListActive(c *gin.Context) {
	projects, err := h.projectService.ListActive(c.Request.Context())
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPublicProjectDTOs(projects))
}

// ListAll returns every project for the admin view.
func (h *ProjectHandler) ListAll(c *gin.Context) {
	projects, err := h.projectService.ListAll(c.Request.Context())
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTOs(projects))
}

// GetProject returns a single project in any activity state.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// CreateProject creates a project with an optional image.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	input, upload, cleanup, err := h.bindProject(c)
	defer cleanup()
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), input, upload)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}
	h.logChange(c, "create", project.ID)

	c.JSON(http.StatusCreated, dto.ProjectCreatedDTO{
		ID:      project.ID,
		Message: "Project created successfully",
	})
}

// UpdateProject fully replaces a project, optionally swapping its image.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	input, upload, cleanup, err := h.bindProject(c)
	defer cleanup()
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	if _, err := h.projectService.Update(c.Request.Context(), id, input, upload); err != nil {
		h.respondProjectError(c, err)
		return
	}
	h.logChange(c, "update", id)

	c.JSON(http.StatusOK, dto.MessageDTO{Message: "Project updated successfully"})
}

// DeleteProject removes a project and its image.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := projectID(c)
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), id); err != nil {
		h.respondProjectError(c, err)
		return
	}
	h.logChange(c, "delete", id)

	c.JSON(http.StatusOK, dto.MessageDTO{Message: "Project deleted successfully"})
}

// logChange records which administrator changed a project.
func (h *ProjectHandler) logChange(c *gin.Context, action string, projectID uint64) {
	credentialID, _ := middleware.GetCredentialID(c)
	h.log.Info("Project changed",
		zap.String("action", action),
		zap.Uint64("project_id", projectID),
		zap.Uint64("credential_id", credentialID),
		zap.String("username", middleware.GetUsername(c)),
	)
}

func projectID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		apierrors.NotFound(c, "Project not found")
		return 0, false
	}
	return id, true
}

// bindProject decodes the request body into a ProjectInput and the optional image.
// The returned cleanup must always be called.
func (h *ProjectHandler) bindProject(c *gin.Context) (services.ProjectInput, *storage.Upload, func(), error) {
	noop := func() {}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+multipartOverhead)

	if c.ContentType() == binding.MIMEJSON {
		var req projectJSON
		if err := c.ShouldBindJSON(&req); err != nil {
			return services.ProjectInput{}, nil, noop, bodyError(err)
		}
		return services.ProjectInput{
			Title:        req.Title,
			Description:  req.Description,
			Category:     req.Category,
			Features:     req.Features,
			LiveURL:      req.LiveURL,
			ImageAlt:     req.ImageAlt,
			DisplayOrder: req.DisplayOrder,
			IsActive:     req.IsActive,
		}, nil, noop, nil
	}

	var req projectForm
	if err := c.ShouldBind(&req); err != nil {
		return services.ProjectInput{}, nil, noop, bodyError(err)
	}

	input := services.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Features:    expandFeatures(req.Features),
		LiveURL:     req.LiveURL,
		ImageAlt:    req.ImageAlt,
	}

	verr := &services.ValidationError{}
	if v := strings.TrimSpace(req.DisplayOrder); v != "" {
		order, err := strconv.Atoi(v)
		if err != nil {
			verr.Fields = append(verr.Fields, services.FieldError{Field: "display_order", Message: "must be an integer"})
		} else {
			input.DisplayOrder = &order
		}
	}
	if v := strings.TrimSpace(req.IsActive); v != "" {
		active, err := parseFormBool(v)
		if err != nil {
			verr.Fields = append(verr.Fields, services.FieldError{Field: "is_active", Message: "must be a boolean"})
		} else {
			input.IsActive = &active
		}
	}
	if len(verr.Fields) > 0 {
		return services.ProjectInput{}, nil, noop, verr
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return input, nil, noop, nil
		}
		return services.ProjectInput{}, nil, noop, bodyError(err)
	}

	return input, newUpload(file, header), func() { file.Close() }, nil
}

func newUpload(file multipart.File, header *multipart.FileHeader) *storage.Upload {
	return &storage.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}

// expandFeatures accepts repeated fields or a single delimited value.
func expandFeatures(features []string) []string {
	if len(features) == 1 {
		return services.SplitFeatures(features[0])
	}
	return features
}

func parseFormBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(v)
}

// bodyError maps a body decoding failure onto the error taxonomy.
func bodyError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large") {
		return storage.ErrPayloadTooLarge
	}
	return &services.ValidationError{Fields: []services.FieldError{{Field: "body", Message: fmt.Sprintf("could not be decoded: %v", err)}}}
}

func (h *ProjectHandler) respondProjectError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		apierrors.ValidationFailed(c, "Missing or invalid fields", verr.Fields)
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, storage.ErrUnsupportedMediaType):
		apierrors.UnsupportedMediaType(c, "")
	case errors.Is(err, storage.ErrPayloadTooLarge):
		apierrors.PayloadTooLarge(c, "")
	default:
		h.log.Error("Project request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		apierrors.InternalError(c, "")
	}
}
