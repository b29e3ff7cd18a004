package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeedDefaultBadges inserts the starter badge definitions, keyed on Code so
// reruns are no-ops.
func SeedDefaultBadges(db *gorm.DB) error {
	for _, badge := range DefaultBadges {
		badge.ID = uuid.NewString()
		badge.IsActive = true
		err := db.Where(NFTBadge{Code: badge.Code}).FirstOrCreate(&badge).Error
		if err != nil {
			return err
		}
	}
	return nil
}
