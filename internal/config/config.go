package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Cron       CronConfig       `mapstructure:"cron"`
	Epic       EpicConfig       `mapstructure:"epic"`
	CheapShark CheapSharkConfig `mapstructure:"cheapshark"`
	RAWG       RAWGConfig       `mapstructure:"rawg"`
	Sync       SyncConfig       `mapstructure:"sync"`
	Match      MatchConfig      `mapstructure:"match"`
	Cache      CacheConfig      `mapstructure:"cache"`
	CPI        CPIConfig        `mapstructure:"cpi"`
	Dataset    DatasetConfig    `mapstructure:"dataset"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Sync    string `mapstructure:"sync"`
}

type EpicConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CheapSharkConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	CandidateLimit int           `mapstructure:"candidate_limit"`
}

type RAWGConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Timeout        time.Duration `mapstructure:"timeout"`
	CandidateLimit int           `mapstructure:"candidate_limit"`
}

type SyncConfig struct {
	Workers        int           `mapstructure:"workers"`
	RunOnStart     bool          `mapstructure:"run_on_start"`
	SourceTimeout  time.Duration `mapstructure:"source_timeout"`
	SourceAttempts int           `mapstructure:"source_attempts"`
	SourceBackoff  time.Duration `mapstructure:"source_backoff"`
}

type MatchConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

type CacheConfig struct {
	Path   string        `mapstructure:"path"`
	MaxAge time.Duration `mapstructure:"max_age"`
}

type CPIConfig struct {
	Version string             `mapstructure:"version"`
	Table   map[string]float64 `mapstructure:"table"`
}

type DatasetConfig struct {
	KeepUnresolved bool `mapstructure:"keep_unresolved"`
}

// Multipliers converts the configured year→multiplier table into the form
// the cpi package takes. An empty table returns nil, which callers should
// treat as "use the built-in defaults".
func (c CPIConfig) Multipliers() (map[int]decimal.Decimal, error) {
	if len(c.Table) == 0 {
		return nil, nil
	}
	out := make(map[int]decimal.Decimal, len(c.Table))
	for year, mult := range c.Table {
		y, err := strconv.Atoi(strings.TrimSpace(year))
		if err != nil {
			return nil, fmt.Errorf("cpi table year %q: %w", year, err)
		}
		out[y] = decimal.NewFromFloat(mult)
	}
	return out, nil
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	// Epic rotates its weekly giveaway at 11:00 ET; one run shortly after
	// catches the new promotion the day it appears.
	v.SetDefault("cron.sync", "0 0 17 * * *")
	v.SetDefault("epic.base_url", "https://store-site-backend-static.ak.epicgames.com")
	v.SetDefault("epic.timeout", "15s")
	v.SetDefault("cheapshark.enabled", true)
	v.SetDefault("cheapshark.base_url", "https://www.cheapshark.com")
	v.SetDefault("cheapshark.timeout", "15s")
	v.SetDefault("cheapshark.candidate_limit", 10)
	v.SetDefault("rawg.enabled", true)
	v.SetDefault("rawg.base_url", "https://api.rawg.io")
	v.SetDefault("rawg.api_key", "")
	v.SetDefault("rawg.timeout", "15s")
	v.SetDefault("rawg.candidate_limit", 10)
	v.SetDefault("sync.workers", 1)
	v.SetDefault("sync.run_on_start", true)
	v.SetDefault("sync.source_timeout", "10s")
	v.SetDefault("sync.source_attempts", 3)
	v.SetDefault("sync.source_backoff", "400ms")
	v.SetDefault("match.threshold", 0.80)
	v.SetDefault("cache.path", "data/price_cache.json")
	v.SetDefault("cache.max_age", "168h")
	v.SetDefault("cpi.version", "2026-baseline")
	v.SetDefault("dataset.keep_unresolved", true)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
