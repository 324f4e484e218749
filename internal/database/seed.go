package database

import (
	"fmt"

	"github.com/smartscale/portfolio-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func strPtr(s string) *string {
	return &s
}

// SampleProjects are inserted into an empty project table on first start.
// Their image paths point at front-end assets, which the asset manager never releases.
func SampleProjects() []models.Project {
	return []models.Project{
		{
			Title:        "Arbor Cove Funding",
			Description:  "A boutique business funding brokerage needed a professional, conversion-focused website to establish credibility and capture qualified leads.",
			Category:     "FINANCIAL SERVICES",
			Features:     datatypes.NewJSONSlice([]string{"Lead qualification forms", "Custom branding", "Mobile-responsive"}),
			LiveURL:      strPtr("https://preview--arborcove-capital-connect.lovable.app/"),
			ImagePath:    strPtr("assets/arbor-cove-screenshot.png"),
			ImageAlt:     strPtr("Arbor Cove Funding custom website design"),
			DisplayOrder: 1,
			IsActive:     true,
		},
		{
			Title:        "Law Office of Sylvester R. Jaime",
			Description:  "A professional law practice needed a clean, authoritative website to attract clients and showcase legal expertise.",
			Category:     "LEGAL SERVICES",
			Features:     datatypes.NewJSONSlice([]string{"Professional design", "Easy navigation", "Contact integration"}),
			LiveURL:      strPtr("https://preview--sylvester-jaime-website.lovable.app/"),
			ImagePath:    strPtr("assets/sylvester-jaime-screenshot.png"),
			ImageAlt:     strPtr("Law office website design by Smart Scale"),
			DisplayOrder: 2,
			IsActive:     true,
		},
	}
}

// SeedSampleProjects inserts SampleProjects when the project table is empty.
func SeedSampleProjects(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.Project{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count projects: %w", err)
	}
	if count > 0 {
		return nil
	}

	projects := SampleProjects()
	if err := db.Create(&projects).Error; err != nil {
		return fmt.Errorf("failed to insert sample projects: %w", err)
	}

	log.Info("Sample projects inserted", zap.Int("count", len(projects)))
	return nil
}
