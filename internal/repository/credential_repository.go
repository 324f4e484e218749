package repository

import (
	"context"
	"time"

	"github.com/smartscale/portfolio-api/internal/models"
	"gorm.io/gorm"
)

// GormCredentialRepository is a GORM implementation of CredentialRepository
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository creates a new CredentialRepository
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &GormCredentialRepository{db: db}
}

// Count returns the number of stored credentials
func (r *GormCredentialRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Credential{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new credential
func (r *GormCredentialRepository) Create(ctx context.Context, credential *models.Credential) error {
	return r.db.WithContext(ctx).Create(credential).Error
}

// FindByID finds a credential by ID
func (r *GormCredentialRepository) FindByID(ctx context.Context, id uint64) (*models.Credential, error) {
	var credential models.Credential
	if err := r.db.WithContext(ctx).First(&credential, id).Error; err != nil {
		return nil, err
	}
	return &credential, nil
}

// FindByUsername finds a credential by username
func (r *GormCredentialRepository) FindByUsername(ctx context.Context, username string) (*models.Credential, error) {
	var credential models.Credential
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&credential).Error; err != nil {
		return nil, err
	}
	return &credential, nil
}

// UpdateLastLogin stamps the credential's last successful login
func (r *GormCredentialRepository) UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error {
	return r.updateColumn(ctx, id, "last_login_at", at)
}

// UpdatePasswordHash replaces the stored password hash
func (r *GormCredentialRepository) UpdatePasswordHash(ctx context.Context, id uint64, hash string) error {
	return r.updateColumn(ctx, id, "password_hash", hash)
}

func (r *GormCredentialRepository) updateColumn(ctx context.Context, id uint64, column string, value any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Credential{}).
		Where("id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
