package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gabyferreira/epic-games-savings-analysis/internal/models"
)

// DatasetRepository is the persistence surface for the giveaway dataset.
// Every admitted giveaway is one insert; there is no batch upsert, so an
// interrupted run loses at most the record in flight.
type DatasetRepository interface {
	InsertFreeGame(ctx context.Context, item *models.FreeGame) error
	FreeGameExists(ctx context.Context, title string, startDate time.Time) (bool, error)
	ListFreeGames(ctx context.Context, params ListFreeGamesParams) ([]models.FreeGame, error)
	CountFreeGames(ctx context.Context, params ListFreeGamesParams) (int64, error)
	ListFreeGamesForExport(ctx context.Context) ([]models.FreeGame, error)
	SavingsSummary(ctx context.Context, since time.Time) (SavingsAggregate, error)

	GetSyncState(ctx context.Context, scope string) (*models.SyncState, error)
	SaveSyncState(ctx context.Context, state *models.SyncState) error
}

type ListFreeGamesParams struct {
	Limit       int
	Offset      int
	Since       *time.Time
	Until       *time.Time
	MatchSource *string
	Title       *string
	OrderBy     string
	Asc         *bool
}

// SavingsAggregate summarizes the giveaways admitted on or after a point in
// time. Rating and date bounds are nil when no rows qualify.
type SavingsAggregate struct {
	Games         int64
	TotalRetail   decimal.Decimal
	TotalAdjusted decimal.Decimal
	AverageRating *float64
	FirstStart    *time.Time
	LastStart     *time.Time
}
