package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gabyferreira/epic-games-savings-analysis/internal/models"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertFreeGame(ctx context.Context, item *models.FreeGame) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) FreeGameExists(ctx context.Context, title string, startDate time.Time) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.FreeGame{}).
		Where("title = ?", strings.TrimSpace(title)).
		Where("start_date = ?", dateParam(startDate)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListFreeGames(ctx context.Context, params repository.ListFreeGamesParams) ([]models.FreeGame, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyFreeGameFilters(s.db.WithContext(ctx).Model(&models.FreeGame{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "id")
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.FreeGame
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountFreeGames(ctx context.Context, params repository.ListFreeGamesParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	query := applyFreeGameFilters(s.db.WithContext(ctx).Model(&models.FreeGame{}), params)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListFreeGamesForExport returns the whole dataset in admission order.
func (s *Store) ListFreeGamesForExport(ctx context.Context) ([]models.FreeGame, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.FreeGame
	if err := s.db.WithContext(ctx).
		Model(&models.FreeGame{}).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) SavingsSummary(ctx context.Context, since time.Time) (repository.SavingsAggregate, error) {
	if s == nil || s.db == nil {
		return repository.SavingsAggregate{}, nil
	}
	query := s.db.WithContext(ctx).Table("free_games")
	if !since.IsZero() {
		query = query.Where("start_date >= ?", dateParam(since))
	}
	var row struct {
		Games         int64
		TotalRetail   decimal.Decimal
		TotalAdjusted decimal.Decimal
		AverageRating *float64
		FirstStart    *time.Time
		LastStart     *time.Time
	}
	err := query.Select(`
		COUNT(*) AS games,
		COALESCE(SUM(COALESCE(retail_price,0)),0) AS total_retail,
		COALESCE(SUM(COALESCE(inflation_adjusted_value,0)),0) AS total_adjusted,
		AVG(rating) AS average_rating,
		MIN(start_date) AS first_start,
		MAX(start_date) AS last_start
	`).Scan(&row).Error
	if err != nil {
		return repository.SavingsAggregate{}, err
	}
	return repository.SavingsAggregate{
		Games:         row.Games,
		TotalRetail:   row.TotalRetail,
		TotalAdjusted: row.TotalAdjusted,
		AverageRating: row.AverageRating,
		FirstStart:    row.FirstStart,
		LastStart:     row.LastStart,
	}, nil
}

func (s *Store) GetSyncState(ctx context.Context, scope string) (*models.SyncState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var state models.SyncState
	err := s.db.WithContext(ctx).First(&state, "scope = ?", scope).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *Store) SaveSyncState(ctx context.Context, state *models.SyncState) error {
	if s == nil || s.db == nil || state == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "scope"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"run_id",
			"last_success_at",
			"last_attempt_at",
			"last_error",
			"stats_json",
		}),
	}).Create(state).Error
}

func applyFreeGameFilters(query *gorm.DB, params repository.ListFreeGamesParams) *gorm.DB {
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("start_date >= ?", dateParam(*params.Since))
	}
	if params.Until != nil && !params.Until.IsZero() {
		query = query.Where("start_date <= ?", dateParam(*params.Until))
	}
	if params.MatchSource != nil && strings.TrimSpace(*params.MatchSource) != "" {
		query = query.Where("match_source = ?", strings.TrimSpace(*params.MatchSource))
	}
	if params.Title != nil && strings.TrimSpace(*params.Title) != "" {
		query = query.Where("title ILIKE ?", "%"+strings.TrimSpace(*params.Title)+"%")
	}
	return query
}

// dateParam formats a date-granular timestamp for comparison against date
// columns, independent of the session time zone.
func dateParam(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
