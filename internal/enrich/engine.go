// Package enrich reconciles raw storefront promotions against the price
// cache and the secondary sources, producing dataset-ready records.
package enrich

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/gabyferreira/epic-games-savings-analysis/internal/cpi"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/match"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/models"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/pricecache"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/source"
)

// Promotion is a raw giveaway as it came off the storefront feed.
type Promotion struct {
	Title     string
	StartDate time.Time
	EndDate   time.Time
	Raw       json.RawMessage
}

// Engine resolves promotions in three stages: fresh cache hit, live
// fetch-and-fuse across sources, stale cache fallback. A promotion that
// survives none of them is still returned, marked unresolved.
type Engine struct {
	Sources   []source.Source // fixed priority order, highest first
	Cache     *pricecache.Cache
	CPI       *cpi.Table
	Threshold float64
	Logger    *zap.Logger
}

// Reconcile enriches one promotion. It never fails the record: every source
// problem degrades toward an unresolved result. The second return reports
// whether the secondary sources were consulted, which is what separates a
// cache hit from live work in the sync counters.
func (e *Engine) Reconcile(ctx context.Context, promo Promotion) (models.FreeGame, bool) {
	normalized := match.Normalize(promo.Title)

	rec := models.FreeGame{
		Title:       promo.Title,
		StartDate:   promo.StartDate,
		EndDate:     promo.EndDate,
		MatchSource: models.MatchSourceUnresolved,
		RawJSON:     datatypes.JSON(promo.Raw),
	}

	entry, cached := e.Cache.Get(normalized)
	if cached && !e.Cache.Stale(entry) {
		e.applyEntry(&rec, entry, models.MatchSourceCache)
		return rec, false
	}

	if fused, ok := e.consultSources(ctx, promo.Title, normalized); ok {
		if err := e.Cache.Put(fused); err != nil && e.Logger != nil {
			e.Logger.Warn("price cache write failed",
				zap.String("normalized_title", normalized),
				zap.Error(err))
		}
		e.applyEntry(&rec, fused, models.MatchSourceLiveFetch)
		return rec, true
	}

	if cached {
		// Every source failed or nothing cleared the threshold; an expired
		// entry beats no data at all.
		e.applyEntry(&rec, entry, models.MatchSourceCache)
		return rec, true
	}

	if e.Logger != nil {
		e.Logger.Warn("promotion unresolved",
			zap.String("title", promo.Title),
			zap.String("normalized_title", normalized))
	}
	return rec, true
}

type contribution struct {
	src     source.Source
	matched match.Result
	meta    source.Metadata
	fetched bool
}

// consultSources runs the live path: candidates per source, fuzzy match per
// source, metadata fetch for every source whose own best candidate clears
// the threshold, then field-wise first-non-absent fusion in priority order.
// The best score across sources (ties to the higher-priority source) becomes
// the entry's provenance.
func (e *Engine) consultSources(ctx context.Context, title, normalized string) (pricecache.Entry, bool) {
	var contribs []contribution
	for _, src := range e.Sources {
		candidates, err := src.ListCandidates(ctx, title)
		if err != nil {
			if e.Logger != nil {
				e.Logger.Warn("candidate listing failed",
					zap.String("source", src.ID()),
					zap.String("title", title),
					zap.Error(err))
			}
			continue
		}
		result, ok := match.Match(title, candidates, e.threshold())
		if !ok {
			continue
		}
		contribs = append(contribs, contribution{src: src, matched: result})
	}
	if len(contribs) == 0 {
		return pricecache.Entry{}, false
	}

	best := 0
	for i := 1; i < len(contribs); i++ {
		if contribs[i].matched.Score > contribs[best].matched.Score {
			best = i
		}
	}

	for i := range contribs {
		meta, err := contribs[i].src.FetchMetadata(ctx, contribs[i].matched.Candidate)
		if err != nil {
			if e.Logger != nil {
				e.Logger.Warn("metadata fetch failed",
					zap.String("source", contribs[i].src.ID()),
					zap.String("candidate", contribs[i].matched.Candidate),
					zap.Error(err))
			}
			continue
		}
		contribs[i].meta = meta
		contribs[i].fetched = true
	}

	entry := pricecache.Entry{
		NormalizedTitle: normalized,
		Title:           contribs[best].matched.Candidate,
		MatchScore:      contribs[best].matched.Score,
		Source:          contribs[best].src.ID(),
		FetchedAt:       time.Now().UTC(),
	}
	fetchedAny := false
	for _, c := range contribs {
		if !c.fetched {
			continue
		}
		fetchedAny = true
		if entry.RetailPrice == nil && c.meta.RetailPrice != nil {
			entry.RetailPrice = c.meta.RetailPrice
		}
		if entry.Publisher == nil && c.meta.Publisher != nil {
			entry.Publisher = c.meta.Publisher
		}
		if entry.Rating == nil && c.meta.Rating != nil {
			entry.Rating = c.meta.Rating
		}
		if entry.ReleaseDate == nil && c.meta.ReleaseDate != nil {
			entry.ReleaseDate = c.meta.ReleaseDate
		}
	}
	if !fetchedAny {
		return pricecache.Entry{}, false
	}
	return entry, true
}

func (e *Engine) applyEntry(rec *models.FreeGame, entry pricecache.Entry, matchSource string) {
	rec.RetailPrice = entry.RetailPrice
	rec.Rating = entry.Rating
	rec.Publisher = entry.Publisher
	rec.MatchScore = entry.MatchScore
	rec.MatchSource = matchSource

	if rec.RetailPrice == nil || e.CPI == nil {
		return
	}
	adjusted := e.CPI.Adjust(*rec.RetailPrice, rec.StartDate.Year())
	rec.InflationAdjustedValue = &adjusted
	version := e.CPI.Version()
	rec.CPIVersion = &version
}

func (e *Engine) threshold() float64 {
	if e.Threshold <= 0 {
		return 0.8
	}
	return e.Threshold
}
