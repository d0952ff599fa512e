// Package source abstracts the secondary catalogs consulted while enriching a
// giveaway: each adapter proposes candidate titles for a storefront hint and
// serves metadata for a chosen candidate.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound reports that a source has no record of the requested title.
// It is terminal: retrying will not make the title appear.
var ErrNotFound = errors.New("title not found at source")

// Metadata is what one source knows about a matched title. Pointer fields
// distinguish absent from a legitimate zero.
type Metadata struct {
	Title       string
	RetailPrice *decimal.Decimal
	Publisher   *string
	Rating      *float64
	ReleaseDate *time.Time
}

// Source is one secondary catalog. Implementations must be safe for
// concurrent use; the sync pipeline fans promotions out across workers.
type Source interface {
	// ID names the source. It doubles as the provenance recorded in the
	// cache, so it must be stable across releases.
	ID() string

	// ListCandidates returns the source's titles resembling the hint. An
	// empty slice with a nil error means the source answered and knows
	// nothing similar.
	ListCandidates(ctx context.Context, hint string) ([]string, error)

	// FetchMetadata resolves a candidate previously returned by
	// ListCandidates. Returns ErrNotFound when the candidate is gone.
	FetchMetadata(ctx context.Context, title string) (Metadata, error)
}
