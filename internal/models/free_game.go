package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Match provenance recorded on every dataset row.
const (
	MatchSourceCache      = "cache"
	MatchSourceLiveFetch  = "live_fetch"
	MatchSourceUnresolved = "unresolved"
)

// FreeGame is one admitted giveaway. The giveaway calendar is date-granular,
// so StartDate and EndDate are date columns and (Title, StartDate) is the
// storage-level identity of a giveaway instance.
type FreeGame struct {
	ID                     uint             `gorm:"primaryKey;autoIncrement"`
	Title                  string           `gorm:"type:text;not null;uniqueIndex:ux_free_games_title_start"`
	StartDate              time.Time        `gorm:"type:date;not null;uniqueIndex:ux_free_games_title_start"`
	EndDate                time.Time        `gorm:"type:date;not null"`
	RetailPrice            *decimal.Decimal `gorm:"type:numeric(12,4)"`
	Rating                 *float64
	Publisher              *string          `gorm:"type:text"`
	InflationAdjustedValue *decimal.Decimal `gorm:"type:numeric(16,6)"`
	CPIVersion             *string          `gorm:"type:text"`
	MatchScore             float64          `gorm:"not null;default:0"`
	MatchSource            string           `gorm:"type:text;not null;index"`
	RawJSON                datatypes.JSON   `gorm:"type:jsonb"`
	CreatedAt              time.Time        `gorm:"type:timestamptz;not null"`
}

func (FreeGame) TableName() string {
	return "free_games"
}
