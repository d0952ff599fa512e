package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gabyferreira/epic-games-savings-analysis/internal/repository"
)

// SavingsAnalyticsService answers what the giveaway stream has been worth
// to an account created on a given date.
type SavingsAnalyticsService struct {
	Repo repository.DatasetRepository
}

// SavingsReport aggregates the dataset from Since onward. GamesMissed
// counts rows older than Since: giveaways that ran before the account
// existed.
type SavingsReport struct {
	Since         *time.Time      `json:"since,omitempty"`
	Games         int64           `json:"games"`
	GamesMissed   int64           `json:"games_missed"`
	TotalRetail   decimal.Decimal `json:"total_retail"`
	TotalAdjusted decimal.Decimal `json:"total_adjusted"`
	AverageRating *float64        `json:"average_rating,omitempty"`
	FirstStart    *time.Time      `json:"first_start,omitempty"`
	LastStart     *time.Time      `json:"last_start,omitempty"`
}

// Summary aggregates from since onward. A zero since covers the whole
// dataset, in which case GamesMissed stays zero.
func (s *SavingsAnalyticsService) Summary(ctx context.Context, since time.Time) (SavingsReport, error) {
	agg, err := s.Repo.SavingsSummary(ctx, since)
	if err != nil {
		return SavingsReport{}, err
	}
	report := SavingsReport{
		Games:         agg.Games,
		TotalRetail:   agg.TotalRetail,
		TotalAdjusted: agg.TotalAdjusted,
		AverageRating: agg.AverageRating,
		FirstStart:    agg.FirstStart,
		LastStart:     agg.LastStart,
	}
	if !since.IsZero() {
		report.Since = &since
		total, err := s.Repo.CountFreeGames(ctx, repository.ListFreeGamesParams{})
		if err != nil {
			return SavingsReport{}, err
		}
		if missed := total - agg.Games; missed > 0 {
			report.GamesMissed = missed
		}
	}
	return report, nil
}
