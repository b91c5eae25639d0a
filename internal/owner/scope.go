package owner

import "gorm.io/gorm"

// Scope returns a GORM scope that filters by owner_id.
func Scope(ownerID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerID)
	}
}
