package service

import (
	"context"

	"github.com/gabyferreira/epic-games-savings-analysis/internal/models"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/repository"
)

// DatasetQueryService serves read access to the accumulated dataset.
type DatasetQueryService struct {
	Repo repository.DatasetRepository
}

type FreeGamesResult struct {
	Items []models.FreeGame
	Total int64
}

func (s *DatasetQueryService) ListFreeGames(ctx context.Context, params repository.ListFreeGamesParams) (FreeGamesResult, error) {
	total, err := s.Repo.CountFreeGames(ctx, params)
	if err != nil {
		return FreeGamesResult{}, err
	}
	items, err := s.Repo.ListFreeGames(ctx, params)
	if err != nil {
		return FreeGamesResult{}, err
	}
	return FreeGamesResult{Items: items, Total: total}, nil
}

// ExportFreeGames returns the whole dataset in append order.
func (s *DatasetQueryService) ExportFreeGames(ctx context.Context) ([]models.FreeGame, error) {
	return s.Repo.ListFreeGamesForExport(ctx)
}

func (s *DatasetQueryService) SyncState(ctx context.Context) (*models.SyncState, error) {
	return s.Repo.GetSyncState(ctx, SyncScope)
}
