package dto

import (
	"time"

	"github.com/smartscale/portfolio-api/internal/models"
)

// PublicProjectDTO is the shape served on the public read path
type PublicProjectDTO struct {
	ID           uint64   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Features     []string `json:"features"`
	LiveURL      *string  `json:"live_url"`
	ImagePath    *string  `json:"image_path"`
	ImageAlt     *string  `json:"image_alt"`
	DisplayOrder int      `json:"display_order"`
}

// ProjectDTO carries every project field for admin and single reads
type ProjectDTO struct {
	PublicProjectDTO
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectCreatedDTO is returned after a project is created
type ProjectCreatedDTO struct {
	ID      uint64 `json:"id"`
	Message string `json:"message"`
}

// ToPublicProjectDTO converts a project to its public DTO
func ToPublicProjectDTO(project models.Project) PublicProjectDTO {
	features := make([]string, len(project.Features))
	copy(features, project.Features)

	return PublicProjectDTO{
		ID:           project.ID,
		Title:        project.Title,
		Description:  project.Description,
		Category:     project.Category,
		Features:     features,
		LiveURL:      project.LiveURL,
		ImagePath:    project.ImagePath,
		ImageAlt:     project.ImageAlt,
		DisplayOrder: project.DisplayOrder,
	}
}

// ToProjectDTO converts a project to its full DTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		PublicProjectDTO: ToPublicProjectDTO(project),
		IsActive:         project.IsActive,
		CreatedAt:        project.CreatedAt,
		UpdatedAt:        project.UpdatedAt,
	}
}

// ToPublicProjectDTOs converts a list of projects to public DTOs
func ToPublicProjectDTOs(projects []models.Project) []PublicProjectDTO {
	dtos := make([]PublicProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = ToPublicProjectDTO(p)
	}
	return dtos
}

// ToProjectDTOs converts a list of projects to full DTOs
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = ToProjectDTO(p)
	}
	return dtos
}
