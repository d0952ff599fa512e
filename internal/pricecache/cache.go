// Package pricecache persists the metadata resolved for a game title so that
// repeat promotions of the same game never trigger a second live lookup.
package pricecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Entry is the cached resolution for one normalized title. Pointer fields
// distinguish "absent" from a legitimate zero value (a free-to-keep game can
// have a genuine $0 retail price).
type Entry struct {
	NormalizedTitle string           `json:"normalized_title"`
	Title           string           `json:"title"`
	RetailPrice     *decimal.Decimal `json:"retail_price,omitempty"`
	Publisher       *string          `json:"publisher,omitempty"`
	Rating          *float64         `json:"rating,omitempty"`
	ReleaseDate     *time.Time       `json:"release_date,omitempty"`
	MatchScore      float64          `json:"match_score"`
	Source          string           `json:"source"`
	FetchedAt       time.Time        `json:"fetched_at"`
}

// Cache is a thread-safe write-through cache backed by a single JSON document
// keyed by normalized title.
type Cache struct {
	path    string
	maxAge  time.Duration
	logger  *zap.Logger
	mu      sync.RWMutex
	entries map[string]Entry
}

// New loads the cache at path, or starts empty when the file does not exist
// or cannot be parsed (a corrupt cache is logged and discarded, never fatal).
// An empty path keeps the cache purely in memory.
func New(path string, maxAge time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Cache{
		path:    path,
		maxAge:  maxAge,
		logger:  logger,
		entries: make(map[string]Entry),
	}

	if path == "" {
		return c
	}

	if err := c.load(); err != nil {
		logger.Warn("price cache unreadable, starting empty",
			zap.String("path", path),
			zap.Error(err))
		c.entries = make(map[string]Entry)
	}

	return c
}

// Get returns the entry for the given normalized title. Stale entries are
// still returned; the caller decides with Stale whether to trust them.
func (c *Cache) Get(normalizedTitle string) (Entry, bool) {
	normalizedTitle = strings.TrimSpace(normalizedTitle)
	if normalizedTitle == "" {
		return Entry{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.entries[normalizedTitle]
	return entry, found
}

// Put stores an entry and persists the whole document to disk. A zero
// FetchedAt is stamped with the current time.
func (c *Cache) Put(entry Entry) error {
	entry.NormalizedTitle = strings.TrimSpace(entry.NormalizedTitle)
	if entry.NormalizedTitle == "" {
		return errors.New("normalized title cannot be empty")
	}
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entry.NormalizedTitle] = entry

	if err := c.save(); err != nil {
		return fmt.Errorf("persist price cache: %w", err)
	}

	c.logger.Debug("cached title metadata",
		zap.String("normalized_title", entry.NormalizedTitle),
		zap.String("source", entry.Source),
		zap.Float64("match_score", entry.MatchScore))

	return nil
}

// Stale reports whether the entry is older than the configured maximum age.
// A non-positive maximum age disables expiry.
func (c *Cache) Stale(entry Entry) bool {
	if c.maxAge <= 0 {
		return false
	}
	return time.Since(entry.FetchedAt) > c.maxAge
}

// Len returns the number of cached titles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Flush persists the current document. Put already writes through; Flush
// exists for shutdown paths.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.save(); err != nil {
		return fmt.Errorf("persist price cache: %w", err)
	}
	return nil
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return fmt.Errorf("read cache file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	c.entries = make(map[string]Entry, len(entries))
	for key, entry := range entries {
		if strings.TrimSpace(key) == "" {
			continue
		}
		entry.NormalizedTitle = key
		c.entries[key] = entry
	}

	c.logger.Debug("loaded price cache",
		zap.Int("entries", len(c.entries)),
		zap.String("path", c.path))

	return nil
}

// save writes the document atomically via a temp file. Callers hold the lock.
func (c *Cache) save() error {
	if c.path == "" {
		return nil // in-memory only
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
