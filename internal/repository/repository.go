package repository

import (
	"context"
	"time"

	"github.com/smartscale/portfolio-api/internal/models"
)

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create inserts a new project and assigns its ID and timestamps
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID
	FindByID(ctx context.Context, id uint64) (*models.Project, error)

	// List returns projects in listing order, optionally only active ones
	List(ctx context.Context, activeOnly bool) ([]models.Project, error)

	// Update replaces every mutable column of an existing project and returns
	// the image path stored before the write. The image path is only replaced
	// when replaceImage is set.
	Update(ctx context.Context, project *models.Project, replaceImage bool) (*string, error)

	// Delete removes a project permanently
	Delete(ctx context.Context, id uint64) error
}

// CredentialRepository defines the interface for administrator credential access
type CredentialRepository interface {
	// Count returns the number of stored credentials
	Count(ctx context.Context) (int64, error)

	// Create inserts a new credential
	Create(ctx context.Context, credential *models.Credential) error

	// FindByID finds a credential by ID
	FindByID(ctx context.Context, id uint64) (*models.Credential, error)

	// FindByUsername finds a credential by username
	FindByUsername(ctx context.Context, username string) (*models.Credential, error)

	// UpdateLastLogin stamps the credential's last successful login
	UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error

	// UpdatePasswordHash replaces the stored password hash
	UpdatePasswordHash(ctx context.Context, id uint64, hash string) error
}
