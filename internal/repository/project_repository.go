package repository

import (
	"context"
	"time"

	"github.com/smartscale/portfolio-api/internal/database"
	"github.com/smartscale/portfolio-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create inserts a new project
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns projects ordered by display order, newest first on ties
func (r *GormProjectRepository) List(ctx context.Context, activeOnly bool) ([]models.Project, error) {
	query := r.db.WithContext(ctx).Model(&models.Project{})
	if activeOnly {
		query = query.Scopes(database.ActiveOnly)
	}

	projects := []models.Project{}
	if err := query.Scopes(database.ListingOrder).Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Update replaces every mutable column, including zero values and NULLs, and
// returns the image path the row held before the write. image_path is only
// written when replaceImage is set; image_alt is cleared whenever the row
// ends up without an image.
func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project, replaceImage bool) (*string, error) {
	var previous *string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Project
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "image_path").
			First(&current, project.ID).Error; err != nil {
			return err
		}
		previous = current.ImagePath

		imagePath := current.ImagePath
		if replaceImage {
			imagePath = project.ImagePath
		}
		imageAlt := project.ImageAlt
		if imagePath == nil || *imagePath == "" {
			imageAlt = nil
		}

		project.UpdatedAt = time.Now()
		updates := map[string]any{
			"title":         project.Title,
			"description":   project.Description,
			"category":      project.Category,
			"features":      project.Features,
			"live_url":      project.LiveURL,
			"image_alt":     imageAlt,
			"display_order": project.DisplayOrder,
			"is_active":     project.IsActive,
			"updated_at":    project.UpdatedAt,
		}
		if replaceImage {
			updates["image_path"] = project.ImagePath
		}

		result := tx.Model(&models.Project{ID: project.ID}).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		project.ImagePath = imagePath
		project.ImageAlt = imageAlt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

// Delete removes a project permanently
func (r *GormProjectRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.Project{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
