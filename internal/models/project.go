package models

import (
	"time"

	"gorm.io/datatypes"
)

// Project is a portfolio entry.
type Project struct {
	ID           uint64                      `gorm:"primarykey" json:"id"`
	Title        string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description  string                      `gorm:"type:text;not null" json:"description"`
	Category     string                      `gorm:"type:varchar(255);not null" json:"category"`
	Features     datatypes.JSONSlice[string] `gorm:"not null" json:"features"`
	LiveURL      *string                     `gorm:"type:varchar(2048)" json:"live_url"`
	ImagePath    *string                     `gorm:"type:varchar(512)" json:"image_path"`
	ImageAlt     *string                     `gorm:"type:varchar(512)" json:"image_alt"`
	DisplayOrder int                         `gorm:"not null;default:0;index" json:"display_order"`
	IsActive     bool                        `gorm:"not null;index" json:"is_active"`
	CreatedAt    time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// HasImage reports whether the project owns an asset.
func (p *Project) HasImage() bool {
	return p.ImagePath != nil && *p.ImagePath != ""
}
