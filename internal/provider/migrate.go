// File: internal/provider/migrate.go
package provider

import "gorm.io/gorm"

// AutoMigrate creates the identity, session and profile tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Identity{}, &SessionRow{}, &ProfileRow{})
}
