package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/gabyferreira/epic-games-savings-analysis/internal/client/cheapshark"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/client/epic"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/client/rawg"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/config"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/cpi"
	cronrunner "github.com/gabyferreira/epic-games-savings-analysis/internal/cron"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/dataset"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/db"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/enrich"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/handler"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/logger"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/pricecache"
	gormrepository "github.com/gabyferreira/epic-games-savings-analysis/internal/repository/gorm"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/service"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/source"

	_ "github.com/gabyferreira/epic-games-savings-analysis/docs"
)

func main() {
	once := flag.Bool("once", false, "run a single sync and exit")
	flag.Parse()

	cfgPath := os.Getenv("EF_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("EF_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	cpiTable, err := buildCPITable(cfg.CPI)
	if err != nil {
		logger.Fatal("cpi table invalid", zap.Error(err))
	}

	epicHTTP := &http.Client{Timeout: cfg.Epic.Timeout}
	feed := epic.NewClient(epicHTTP, cfg.Epic.BaseURL)

	cache := pricecache.New(cfg.Cache.Path, cfg.Cache.MaxAge, logger)
	engine := &enrich.Engine{
		Sources:   buildSources(cfg, logger),
		Cache:     cache,
		CPI:       cpiTable,
		Threshold: cfg.Match.Threshold,
		Logger:    logger,
	}

	store := gormrepository.New(dbConn.Gorm)
	validator := &dataset.Validator{
		Repo:           store,
		KeepUnresolved: cfg.Dataset.KeepUnresolved,
		Logger:         logger,
	}
	syncService := &service.PromoSyncService{
		Feed:      feed,
		Engine:    engine,
		Validator: validator,
		Repo:      store,
		Workers:   cfg.Sync.Workers,
		Logger:    logger,
	}
	queryService := &service.DatasetQueryService{Repo: store}
	savingsService := &service.SavingsAnalyticsService{Repo: store}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		runOnce(ctx, syncService, logger)
		return
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(router)
	gamesHandler := &handler.GamesHandler{
		Sync:    syncService,
		Query:   queryService,
		Savings: savingsService,
		Logger:  logger,
	}
	gamesHandler.Register(router)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err := cronRunner.Add(cfg.Cron.Sync, func(ctx context.Context) {
			result, err := syncService.Sync(ctx)
			if err != nil {
				logger.Warn("cron sync failed", zap.Error(err))
				return
			}
			logger.Info("cron sync ok",
				zap.Int("fetched", result.Fetched),
				zap.Int("admitted", result.Admitted),
				zap.Int("duplicates", result.Duplicates),
				zap.Int("unresolved", result.Unresolved),
			)
		})
		if err != nil {
			logger.Warn("cron register sync failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	if cfg.Sync.RunOnStart {
		logger.Info("running initial sync")
		if _, err := syncService.Sync(ctx); err != nil {
			logger.Warn("initial sync failed (continuing)", zap.Error(err))
		} else {
			logger.Info("initial sync complete")
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// runOnce drives a single sync for scheduled/CI invocations. A storefront
// outage is not a failure of the job: state is recorded and the next run
// retries. Only storage faults exit non-zero.
func runOnce(ctx context.Context, syncService *service.PromoSyncService, logger *zap.Logger) {
	result, err := syncService.Sync(ctx)
	switch {
	case err == nil:
		logger.Info("sync finished",
			zap.String("run_id", result.RunID),
			zap.Int("fetched", result.Fetched),
			zap.Int("admitted", result.Admitted),
			zap.Int("duplicates", result.Duplicates),
			zap.Int("unresolved", result.Unresolved),
		)
	case errors.Is(err, service.ErrFeedUnavailable):
		logger.Warn("sync skipped, feed unavailable", zap.Error(err))
	default:
		logger.Fatal("sync failed", zap.Error(err))
	}
}

func buildSources(cfg config.Config, logger *zap.Logger) []source.Source {
	retry := source.RetryOptions{
		Timeout:  cfg.Sync.SourceTimeout,
		Attempts: cfg.Sync.SourceAttempts,
		Backoff:  cfg.Sync.SourceBackoff,
	}

	// Registration order is fusion priority: CheapShark owns prices, RAWG
	// fills in ratings and publishers.
	var sources []source.Source
	if cfg.CheapShark.Enabled {
		client := cheapshark.NewClient(&http.Client{Timeout: cfg.CheapShark.Timeout}, cfg.CheapShark.BaseURL)
		sources = append(sources, source.WithRetry(source.NewCheapShark(client, cfg.CheapShark.CandidateLimit), retry))
	}
	if cfg.RAWG.Enabled {
		if strings.TrimSpace(cfg.RAWG.APIKey) == "" {
			logger.Info("rawg api key not set, source disabled")
		} else {
			client := rawg.NewClient(&http.Client{Timeout: cfg.RAWG.Timeout}, cfg.RAWG.BaseURL, cfg.RAWG.APIKey)
			sources = append(sources, source.WithRetry(source.NewRAWG(client, cfg.RAWG.CandidateLimit), retry))
		}
	}
	if len(sources) == 0 {
		logger.Warn("no price sources enabled, promotions will be recorded unresolved")
	}
	return sources
}

func buildCPITable(cfg config.CPIConfig) (*cpi.Table, error) {
	multipliers, err := cfg.Multipliers()
	if err != nil {
		return nil, err
	}
	if multipliers == nil {
		return cpi.Default(), nil
	}
	return cpi.New(cfg.Version, multipliers)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
