package source

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gabyferreira/epic-games-savings-analysis/internal/client/cheapshark"
)

// cheapsharkSource is the price authority: it contributes the normal
// (pre-discount) store price and nothing else.
type cheapsharkSource struct {
	client *cheapshark.Client
	limit  int
}

// NewCheapShark adapts a CheapShark client. limit caps how many catalog rows
// a candidate search may return.
func NewCheapShark(client *cheapshark.Client, limit int) Source {
	if limit <= 0 {
		limit = 10
	}
	return &cheapsharkSource{client: client, limit: limit}
}

func (s *cheapsharkSource) ID() string {
	return "cheapshark"
}

func (s *cheapsharkSource) ListCandidates(ctx context.Context, hint string) ([]string, error) {
	games, err := s.client.SearchGames(ctx, hint, s.limit)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(games))
	out := make([]string, 0, len(games))
	for _, game := range games {
		if game.External == "" {
			continue
		}
		if _, dup := seen[game.External]; dup {
			continue
		}
		seen[game.External] = struct{}{}
		out = append(out, game.External)
	}
	return out, nil
}

func (s *cheapsharkSource) FetchMetadata(ctx context.Context, title string) (Metadata, error) {
	deals, err := s.client.SearchDeals(ctx, title, s.limit)
	if err != nil {
		return Metadata{}, err
	}

	// Stores discount from the same list price, so the highest normal price
	// across deals is the closest thing to the retail price.
	var retail *decimal.Decimal
	for _, deal := range deals {
		if !strings.EqualFold(deal.Title, title) {
			continue
		}
		price := deal.NormalPrice.Decimal
		if price.IsNegative() {
			continue
		}
		if retail == nil || price.GreaterThan(*retail) {
			retail = &price
		}
	}
	if retail == nil {
		return Metadata{}, ErrNotFound
	}
	return Metadata{Title: title, RetailPrice: retail}, nil
}
