package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/gabyferreira/epic-games-savings-analysis/internal/client/epic"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/dataset"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/enrich"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/models"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/repository"
)

// SyncScope is the sync_state row key for the promotion pipeline.
const SyncScope = "epic_free_games"

// ErrFeedUnavailable wraps storefront fetch failures so callers can tell a
// no-data run from a storage fault.
var ErrFeedUnavailable = errors.New("promotion feed unavailable")

// FeedClient is the slice of the Epic client the pipeline needs.
type FeedClient interface {
	FreePromotions(ctx context.Context) ([]epic.Promotion, error)
}

// PromoSyncService runs the full pipeline: fetch the storefront feed,
// reconcile every promotion against the price sources, and append the
// survivors to the dataset.
type PromoSyncService struct {
	Feed      FeedClient
	Engine    *enrich.Engine
	Validator *dataset.Validator
	Repo      repository.DatasetRepository
	Workers   int
	Logger    *zap.Logger
}

type SyncResult struct {
	RunID       string `json:"run_id"`
	Fetched     int    `json:"fetched"`
	Admitted    int    `json:"admitted"`
	Duplicates  int    `json:"duplicates"`
	Rejected    int    `json:"rejected"`
	Unresolved  int    `json:"unresolved"`
	Dropped     int    `json:"dropped"`
	CacheHits   int    `json:"cache_hits"`
	LiveFetches int    `json:"live_fetches"`
}

// Sync fetches the current giveaways and pushes each one through
// reconciliation and admission. Reconciliation may fan out over Workers
// goroutines; admission always happens sequentially in feed order, so the
// dataset's append order matches the storefront's. Per-record problems
// (duplicates, schema rejects, dropped unresolved entries) only increment
// counters; a storage failure aborts the run.
func (s *PromoSyncService) Sync(ctx context.Context) (SyncResult, error) {
	if s == nil || s.Feed == nil || s.Engine == nil || s.Validator == nil {
		return SyncResult{}, fmt.Errorf("promo sync unavailable")
	}
	result := SyncResult{RunID: uuid.NewString()}

	promos, err := s.Feed.FreePromotions(ctx)
	if err != nil {
		s.writeSyncError(ctx, result.RunID, err)
		return result, fmt.Errorf("%w: %w", ErrFeedUnavailable, err)
	}
	result.Fetched = len(promos)

	records := make([]models.FreeGame, len(promos))
	live := make([]bool, len(promos))
	s.reconcileAll(ctx, promos, records, live)

	for i := range records {
		if err := ctx.Err(); err != nil {
			s.writeSyncError(ctx, result.RunID, err)
			return result, err
		}
		if live[i] {
			result.LiveFetches++
		} else {
			result.CacheHits++
		}
		if records[i].MatchSource == models.MatchSourceUnresolved {
			result.Unresolved++
		}
		err := s.Validator.Admit(ctx, &records[i])
		switch {
		case err == nil:
			result.Admitted++
		case errors.Is(err, dataset.ErrDuplicateKey):
			result.Duplicates++
		case errors.Is(err, dataset.ErrUnresolvedDropped):
			result.Dropped++
		case errors.Is(err, dataset.ErrSchemaViolation):
			result.Rejected++
			if s.Logger != nil {
				s.Logger.Warn("promotion rejected",
					zap.String("title", records[i].Title),
					zap.Error(err))
			}
		default:
			s.writeSyncError(ctx, result.RunID, err)
			return result, err
		}
	}

	if s.Repo != nil {
		now := time.Now().UTC()
		state := &models.SyncState{
			Scope:         SyncScope,
			RunID:         strPtr(result.RunID),
			LastAttemptAt: &now,
			LastSuccessAt: &now,
			LastError:     nil,
			StatsJSON:     statsJSON(result),
		}
		if err := s.Repo.SaveSyncState(ctx, state); err != nil {
			return result, fmt.Errorf("record sync state: %w", err)
		}
	}

	if s.Logger != nil {
		s.Logger.Info("promotion sync finished",
			zap.String("run_id", result.RunID),
			zap.Int("fetched", result.Fetched),
			zap.Int("admitted", result.Admitted),
			zap.Int("duplicates", result.Duplicates),
			zap.Int("unresolved", result.Unresolved),
			zap.Int("live_fetches", result.LiveFetches))
	}
	return result, nil
}

// reconcileAll fills records and live, index-aligned with promos. The
// engine's cache serializes its own writes, so reconciliation is safe to
// run concurrently; results land at their feed index either way.
func (s *PromoSyncService) reconcileAll(ctx context.Context, promos []epic.Promotion, records []models.FreeGame, live []bool) {
	workers := s.Workers
	if workers <= 1 || len(promos) <= 1 {
		for i := range promos {
			records[i], live[i] = s.Engine.Reconcile(ctx, promoInput(promos[i]))
		}
		return
	}
	if workers > len(promos) {
		workers = len(promos)
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				records[i], live[i] = s.Engine.Reconcile(ctx, promoInput(promos[i]))
			}
		}()
	}
	for i := range promos {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func (s *PromoSyncService) writeSyncError(ctx context.Context, runID string, err error) {
	if s.Logger != nil {
		s.Logger.Warn("promotion sync failed", zap.String("run_id", runID), zap.Error(err))
	}
	if s.Repo == nil {
		return
	}
	now := time.Now().UTC()
	state := &models.SyncState{
		Scope:         SyncScope,
		RunID:         strPtr(runID),
		LastAttemptAt: &now,
		LastError:     strPtr(err.Error()),
	}
	_ = s.Repo.SaveSyncState(ctx, state)
}

func promoInput(p epic.Promotion) enrich.Promotion {
	return enrich.Promotion{
		Title:     p.Title,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Raw:       p.Raw,
	}
}

func statsJSON(v any) datatypes.JSON {
	payload, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("null"))
	}
	return datatypes.JSON(payload)
}

func strPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
