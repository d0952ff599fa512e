package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gabyferreira/epic-games-savings-analysis/internal/models"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/repository"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/service"
)

type GamesHandler struct {
	Sync    *service.PromoSyncService
	Query   *service.DatasetQueryService
	Savings *service.SavingsAnalyticsService
	Logger  *zap.Logger
}

func (h *GamesHandler) Register(r *gin.Engine) {
	group := r.Group("/api")
	group.GET("/games", h.listGames)
	group.GET("/games/export.csv", h.exportCSV)
	group.GET("/savings", h.savingsSummary)
	group.POST("/sync", h.runSync)
	group.GET("/sync-state", h.syncState)
}

// @Summary List free game giveaways
// @Tags games
// @Param since query string false "start date lower bound (YYYY-MM-DD)"
// @Param until query string false "start date upper bound (YYYY-MM-DD)"
// @Param match_source query string false "cache|live_fetch|unresolved"
// @Param title query string false "title contains"
// @Param order_by query string false "start_date|end_date|title|retail_price|rating|match_score|created_at"
// @Param ascending query bool false "ascending"
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Router /api/games [get]
func (h *GamesHandler) listGames(c *gin.Context) {
	if h.Query == nil || h.Query.Repo == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	since, ok := dateQueryPtr(c, "since")
	if !ok {
		Error(c, http.StatusBadRequest, "since must be YYYY-MM-DD", nil)
		return
	}
	until, ok := dateQueryPtr(c, "until")
	if !ok {
		Error(c, http.StatusBadRequest, "until must be YYYY-MM-DD", nil)
		return
	}
	orderBy := parseOrder(c.Query("order_by"), map[string]string{
		"start_date":   "start_date",
		"end_date":     "end_date",
		"title":        "title",
		"retail_price": "retail_price",
		"rating":       "rating",
		"match_score":  "match_score",
		"created_at":   "created_at",
	})

	result, err := h.Query.ListFreeGames(c.Request.Context(), repository.ListFreeGamesParams{
		Limit:       limit,
		Offset:      offset,
		Since:       since,
		Until:       until,
		MatchSource: strQueryPtr(c, "match_source"),
		Title:       strQueryPtr(c, "title"),
		OrderBy:     orderBy,
		Asc:         boolQueryPtr(c, "ascending"),
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("list games failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, result.Items, paginationMeta(limit, offset, result.Total))
}

// @Summary Export the dataset as CSV
// @Tags games
// @Produce text/csv
// @Success 200 {string} string "csv"
// @Router /api/games/export.csv [get]
func (h *GamesHandler) exportCSV(c *gin.Context) {
	if h.Query == nil || h.Query.Repo == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	games, err := h.Query.ExportFreeGames(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("export failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="epic_free_games.csv"`)
	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{
		"id", "game", "start_date", "end_date", "price",
		"aggregated_rating", "publisher", "inflation_adjusted_value",
		"match_score", "match_source",
	})
	for _, g := range games {
		_ = w.Write(csvRow(g))
	}
	w.Flush()
}

func csvRow(g models.FreeGame) []string {
	var price, rating, publisher, adjusted string
	if g.RetailPrice != nil {
		price = g.RetailPrice.String()
	}
	if g.Rating != nil {
		rating = strconv.FormatFloat(*g.Rating, 'f', -1, 64)
	}
	if g.Publisher != nil {
		publisher = *g.Publisher
	}
	if g.InflationAdjustedValue != nil {
		adjusted = g.InflationAdjustedValue.String()
	}
	return []string{
		strconv.FormatUint(uint64(g.ID), 10),
		g.Title,
		g.StartDate.Format("2006-01-02"),
		g.EndDate.Format("2006-01-02"),
		price,
		rating,
		publisher,
		adjusted,
		strconv.FormatFloat(g.MatchScore, 'f', -1, 64),
		g.MatchSource,
	}
}

// @Summary Savings summary since a date
// @Tags savings
// @Param since query string false "account creation date (YYYY-MM-DD); empty covers the whole dataset"
// @Success 200 {object} apiResponse
// @Router /api/savings [get]
func (h *GamesHandler) savingsSummary(c *gin.Context) {
	if h.Savings == nil || h.Savings.Repo == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	var since time.Time
	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			Error(c, http.StatusBadRequest, "since must be YYYY-MM-DD", nil)
			return
		}
		since = parsed
	}
	report, err := h.Savings.Summary(c.Request.Context(), since)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("savings summary failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, report, nil)
}

// @Summary Run a promotion sync now
// @Tags sync
// @Success 200 {object} apiResponse
// @Router /api/sync [post]
func (h *GamesHandler) runSync(c *gin.Context) {
	if h.Sync == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	result, err := h.Sync.Sync(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("manual sync failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, result, nil)
}

// @Summary Last sync state
// @Tags sync
// @Success 200 {object} apiResponse
// @Router /api/sync-state [get]
func (h *GamesHandler) syncState(c *gin.Context) {
	if h.Query == nil || h.Query.Repo == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	state, err := h.Query.SyncState(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("sync state lookup failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, state, nil)
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func boolQueryPtr(c *gin.Context, key string) *bool {
	if val := c.Query(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return &b
		}
	}
	return nil
}

func strQueryPtr(c *gin.Context, key string) *string {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		return &val
	}
	return nil
}

// dateQueryPtr parses a YYYY-MM-DD query param as a UTC date. ok is false
// only when the param is present but malformed.
func dateQueryPtr(c *gin.Context, key string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

func parseOrder(value string, allow map[string]string) string {
	key := strings.TrimSpace(strings.ToLower(value))
	if key == "" {
		return ""
	}
	if mapped, ok := allow[key]; ok {
		return mapped
	}
	return ""
}

func paginationMeta(limit, offset int, total int64) map[string]any {
	if limit <= 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	hasNext := int64(offset+limit) < total
	return map[string]any{
		"limit":    limit,
		"offset":   offset,
		"total":    total,
		"has_next": hasNext,
	}
}
