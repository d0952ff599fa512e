package db

import (
	"github.com/gabyferreira/epic-games-savings-analysis/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}
	return db.Gorm.AutoMigrate(
		&models.FreeGame{},
		&models.SyncState{},
	)
}
