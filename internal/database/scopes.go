package database

import "gorm.io/gorm"

// ActiveOnly restricts a project query to publicly visible rows.
func ActiveOnly(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// ListingOrder applies the public sort: display order first, newest first on ties.
func ListingOrder(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC").Order("created_at DESC").Order("id DESC")
}
