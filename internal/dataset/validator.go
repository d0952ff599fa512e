// Package dataset guards admission into the durable giveaway dataset.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gabyferreira/epic-games-savings-analysis/internal/models"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/repository"
)

// Rejection kinds, classified with errors.Is. Anything else returned from
// Admit is a storage failure and should abort the run.
var (
	ErrDuplicateKey      = errors.New("duplicate giveaway instance")
	ErrSchemaViolation   = errors.New("schema violation")
	ErrUnresolvedDropped = errors.New("unresolved record dropped")
)

// Validator decides what enters the dataset. The identity of a giveaway
// instance is (title, start date): the same game may return months later as
// a new instance, but one instance is recorded exactly once.
type Validator struct {
	Repo           repository.DatasetRepository
	KeepUnresolved bool
	Logger         *zap.Logger
}

// Admit validates rec and appends it. On success rec carries the id the
// store assigned. A zero retail price is legitimate (free-to-keep games
// exist) and only logged.
func (v *Validator) Admit(ctx context.Context, rec *models.FreeGame) error {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return fmt.Errorf("missing title: %w", ErrSchemaViolation)
	}
	rec.Title = title

	if rec.StartDate.IsZero() || rec.EndDate.IsZero() {
		return fmt.Errorf("title %q missing promotion dates: %w", rec.Title, ErrSchemaViolation)
	}
	if rec.EndDate.Before(rec.StartDate) {
		return fmt.Errorf("title %q ends %s before it starts %s: %w",
			rec.Title, rec.EndDate.Format("2006-01-02"), rec.StartDate.Format("2006-01-02"), ErrSchemaViolation)
	}
	if rec.RetailPrice != nil && rec.RetailPrice.IsNegative() {
		return fmt.Errorf("title %q has negative retail price %s: %w", rec.Title, rec.RetailPrice, ErrSchemaViolation)
	}
	if rec.MatchSource == models.MatchSourceUnresolved && !v.KeepUnresolved {
		return fmt.Errorf("title %q: %w", rec.Title, ErrUnresolvedDropped)
	}

	exists, err := v.Repo.FreeGameExists(ctx, rec.Title, rec.StartDate)
	if err != nil {
		return fmt.Errorf("duplicate check: %w", err)
	}
	if exists {
		return fmt.Errorf("%q starting %s: %w", rec.Title, rec.StartDate.Format("2006-01-02"), ErrDuplicateKey)
	}

	if v.Logger != nil {
		if rec.RetailPrice == nil {
			v.Logger.Warn("admitting giveaway without retail price",
				zap.String("title", rec.Title),
				zap.String("match_source", rec.MatchSource))
		} else if rec.RetailPrice.IsZero() {
			v.Logger.Warn("admitting giveaway with zero retail price",
				zap.String("title", rec.Title))
		}
	}

	if err := v.Repo.InsertFreeGame(ctx, rec); err != nil {
		// The unique index backs up the pre-check when two runs race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%q starting %s: %w", rec.Title, rec.StartDate.Format("2006-01-02"), ErrDuplicateKey)
		}
		return fmt.Errorf("append giveaway: %w", err)
	}
	return nil
}
