package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smartscale/portfolio-api/internal/constants"
	"github.com/smartscale/portfolio-api/internal/models"
	"github.com/smartscale/portfolio-api/internal/repository"
	"github.com/smartscale/portfolio-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound = errors.New("project not found")
)

// AssetStore is the part of the asset manager the project service depends on.
type AssetStore interface {
	Store(ctx context.Context, upload *storage.Upload) (string, error)
	Release(ctx context.Context, assetPath string) error
}

// ProjectService handles portfolio project business logic and keeps each
// project's image asset consistent with its row.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	assets      AssetStore
	log         *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, assets AssetStore, log *zap.Logger) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		assets:      assets,
		log:         log,
	}
}

// ProjectInput is the full set of client-supplied project fields.
// Nil DisplayOrder means 0; nil IsActive means true.
type ProjectInput struct {
	Title        string
	Description  string
	Category     string
	Features     []string
	LiveURL      *string
	ImageAlt     *string
	DisplayOrder *int
	IsActive     *bool
}

// ListActive returns the publicly visible projects in listing order.
func (s *ProjectService) ListActive(ctx context.Context) ([]models.Project, error) {
	projects, err := s.projectRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// ListAll returns every project in listing order.
func (s *ProjectService) ListAll(ctx context.Context) ([]models.Project, error) {
	projects, err := s.projectRepo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetByID returns a single project regardless of its active state.
func (s *ProjectService) GetByID(ctx context.Context, id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// Create validates the input, stores the optional upload, then inserts the row.
// A rejected or failed upload aborts without creating a row.
func (s *ProjectService) Create(ctx context.Context, input ProjectInput, upload *storage.Upload) (*models.Project, error) {
	project, err := buildProject(input)
	if err != nil {
		return nil, err
	}

	var imagePath string
	if upload != nil {
		imagePath, err = s.assets.Store(ctx, upload)
		if err != nil {
			return nil, err
		}
		project.ImagePath = &imagePath
	}
	if !project.HasImage() {
		project.ImageAlt = nil
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		s.discard(ctx, imagePath)
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.log.Info("Project created",
		zap.Uint64("project_id", project.ID),
		zap.Bool("has_image", project.HasImage()),
	)
	return project, nil
}

// Update fully replaces the project's fields. A new upload replaces the image:
// it is stored first, the row is committed, and only then is the image the row
// held at commit time released. Without an upload the stored image is left as is.
func (s *ProjectService) Update(ctx context.Context, id uint64, input ProjectInput, upload *storage.Upload) (*models.Project, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	project, err := buildProject(input)
	if err != nil {
		return nil, err
	}
	project.ID = existing.ID
	project.CreatedAt = existing.CreatedAt

	var newPath string
	if upload != nil {
		newPath, err = s.assets.Store(ctx, upload)
		if err != nil {
			return nil, err
		}
		project.ImagePath = &newPath
	}

	previous, err := s.projectRepo.Update(ctx, project, upload != nil)
	if err != nil {
		s.discard(ctx, newPath)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	if newPath != "" && previous != nil && *previous != "" && *previous != newPath {
		if err := s.assets.Release(ctx, *previous); err != nil {
			s.log.Warn("Failed to release replaced project image",
				zap.Uint64("project_id", id),
				zap.String("image_path", *previous),
				zap.Error(err),
			)
		}
	}

	s.log.Info("Project updated",
		zap.Uint64("project_id", id),
		zap.Bool("image_replaced", newPath != ""),
	)
	return project, nil
}

// Delete removes the row, then releases its image. Release failures are
// logged and do not fail the delete.
func (s *ProjectService) Delete(ctx context.Context, id uint64) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if existing.HasImage() {
		if err := s.assets.Release(ctx, *existing.ImagePath); err != nil {
			s.log.Warn("Failed to release deleted project image",
				zap.Uint64("project_id", id),
				zap.String("image_path", *existing.ImagePath),
				zap.Error(err),
			)
		}
	}

	s.log.Info("Project deleted", zap.Uint64("project_id", id))
	return nil
}

// discard releases an asset stored for a write that did not commit.
func (s *ProjectService) discard(ctx context.Context, assetPath string) {
	if assetPath == "" {
		return
	}
	if err := s.assets.Release(ctx, assetPath); err != nil {
		s.log.Warn("Failed to discard orphaned upload", zap.String("image_path", assetPath), zap.Error(err))
	}
}

func buildProject(input ProjectInput) (*models.Project, error) {
	verr := &ValidationError{}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		verr.add("title", "is required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		verr.add("description", "is required")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		verr.add("category", "is required")
	}

	features := NormalizeFeatures(input.Features)
	if len(features) == 0 {
		verr.add("features", "is required")
	}
	for _, f := range features {
		if strings.Contains(f, constants.FeatureDelimiter) {
			verr.add("features", fmt.Sprintf("feature %q must not contain %q", f, constants.FeatureDelimiter))
			break
		}
	}

	liveURL := trimmedOrNil(input.LiveURL)
	if liveURL != nil && !isAbsoluteHTTPURL(*liveURL) {
		verr.add("live_url", "must be an absolute http or https URL")
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	displayOrder := 0
	if input.DisplayOrder != nil {
		displayOrder = *input.DisplayOrder
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	return &models.Project{
		Title:        title,
		Description:  description,
		Category:     category,
		Features:     datatypes.NewJSONSlice(features),
		LiveURL:      liveURL,
		ImageAlt:     trimmedOrNil(input.ImageAlt),
		DisplayOrder: displayOrder,
		IsActive:     isActive,
	}, nil
}
