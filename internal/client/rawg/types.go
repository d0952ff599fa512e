package rawg

import (
	"encoding/json"
	"fmt"
	"time"
)

// GameSummary is one search result row.
type GameSummary struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// GameDetail is the full record behind a slug. Metacritic is nil for games
// the aggregator has no score for.
type GameDetail struct {
	ID         int64    `json:"id"`
	Slug       string   `json:"slug"`
	Name       string   `json:"name"`
	Released   string   `json:"released"`
	Metacritic *float64 `json:"metacritic"`
	Publishers []struct {
		Name string `json:"name"`
	} `json:"publishers"`
}

// ReleaseDate parses the Released field, which RAWG formats as a plain date.
func (d *GameDetail) ReleaseDate() (time.Time, bool) {
	if d == nil || d.Released == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", d.Released)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Publisher returns the first publisher name, if any.
func (d *GameDetail) Publisher() (string, bool) {
	if d == nil || len(d.Publishers) == 0 || d.Publishers[0].Name == "" {
		return "", false
	}
	return d.Publishers[0].Name, true
}

func parseSearch(body []byte) ([]GameSummary, error) {
	var envelope struct {
		Results []GameSummary `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	return envelope.Results, nil
}

func parseDetail(body []byte) (*GameDetail, error) {
	var detail GameDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("parse game detail: %w", err)
	}
	return &detail, nil
}
