package database

import (
	"fmt"

	"gorm.io/gorm"
)

// OptimizeIndexes adds the read-side indexes used by the export queries.
func OptimizeIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_exports_category_month
		ON trade_exports (wool_category, month DESC)
	`).Error; err != nil {
		return fmt.Errorf("failed to create exports category index: %w", err)
	}

	// Country rankings sort by value within a country.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_exports_country_value
		ON trade_exports (country, total_export_fob DESC)
		WHERE total_export_fob IS NOT NULL
	`).Error; err != nil {
		return fmt.Errorf("failed to create exports country index: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_exports_source_file
		ON trade_exports (source_file)
	`).Error; err != nil {
		return fmt.Errorf("failed to create exports source index: %w", err)
	}

	return nil
}
