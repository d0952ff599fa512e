// Package cpi restates historical retail prices in present-day dollars using
// a versioned table of consumer-price-index multipliers.
package cpi

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultVersion labels the built-in table.
const DefaultVersion = "2026-baseline"

// Table maps calendar years to the multiplier that restates that year's
// prices in the base year's dollars.
type Table struct {
	version     string
	multipliers map[int]decimal.Decimal
	minYear     int
	maxYear     int
}

// New validates and indexes a multiplier table.
func New(version string, multipliers map[int]decimal.Decimal) (*Table, error) {
	if len(multipliers) == 0 {
		return nil, errors.New("cpi table is empty")
	}

	t := &Table{
		version:     version,
		multipliers: make(map[int]decimal.Decimal, len(multipliers)),
	}
	first := true
	for year, m := range multipliers {
		if !m.IsPositive() {
			return nil, fmt.Errorf("cpi multiplier for %d must be positive, got %s", year, m)
		}
		t.multipliers[year] = m
		if first || year < t.minYear {
			t.minYear = year
		}
		if first || year > t.maxYear {
			t.maxYear = year
		}
		first = false
	}
	return t, nil
}

// Default returns the built-in table restating 2018-2026 prices in 2026
// dollars.
func Default() *Table {
	return &Table{
		version: DefaultVersion,
		multipliers: map[int]decimal.Decimal{
			2018: decimal.RequireFromString("1.32"),
			2019: decimal.RequireFromString("1.29"),
			2020: decimal.RequireFromString("1.27"),
			2021: decimal.RequireFromString("1.22"),
			2022: decimal.RequireFromString("1.12"),
			2023: decimal.RequireFromString("1.08"),
			2024: decimal.RequireFromString("1.04"),
			2025: decimal.RequireFromString("1.01"),
			2026: decimal.RequireFromString("1.00"),
		},
		minYear: 2018,
		maxYear: 2026,
	}
}

// Version identifies the table so stored adjustments can be traced to the
// multipliers that produced them.
func (t *Table) Version() string {
	return t.version
}

// Multiplier returns the multiplier for year. Years outside the covered range
// use the nearest covered year, so very old or future promotions still get a
// defined adjustment instead of silently passing through unadjusted. Gaps
// inside the range fall back to the nearest earlier covered year.
func (t *Table) Multiplier(year int) decimal.Decimal {
	if m, ok := t.multipliers[year]; ok {
		return m
	}
	if year < t.minYear {
		return t.multipliers[t.minYear]
	}
	if year > t.maxYear {
		return t.multipliers[t.maxYear]
	}
	for y := year - 1; y >= t.minYear; y-- {
		if m, ok := t.multipliers[y]; ok {
			return m
		}
	}
	return t.multipliers[t.minYear]
}

// Adjust restates a price from the given year in base-year dollars.
func (t *Table) Adjust(price decimal.Decimal, year int) decimal.Decimal {
	return price.Mul(t.Multiplier(year))
}
