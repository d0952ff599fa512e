package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncState is the single bookkeeping row per sync scope.
type SyncState struct {
	Scope         string         `gorm:"primaryKey;type:text"`
	RunID         *string        `gorm:"type:text"`
	LastSuccessAt *time.Time     `gorm:"type:timestamptz"`
	LastAttemptAt *time.Time     `gorm:"type:timestamptz"`
	LastError     *string        `gorm:"type:text"`
	StatsJSON     datatypes.JSON `gorm:"type:jsonb"`
}

func (SyncState) TableName() string {
	return "sync_state"
}
