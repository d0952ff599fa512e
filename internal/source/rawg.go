package source

import (
	"context"
	"strings"

	"github.com/gabyferreira/epic-games-savings-analysis/internal/client/rawg"
)

// rawgSource contributes aggregated rating, publisher and release date.
type rawgSource struct {
	client *rawg.Client
	limit  int
}

// NewRAWG adapts a RAWG client. limit caps how many search rows a candidate
// search may return.
func NewRAWG(client *rawg.Client, limit int) Source {
	if limit <= 0 {
		limit = 10
	}
	return &rawgSource{client: client, limit: limit}
}

func (s *rawgSource) ID() string {
	return "rawg"
}

func (s *rawgSource) ListCandidates(ctx context.Context, hint string) ([]string, error) {
	results, err := s.client.SearchGames(ctx, hint, s.limit)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(results))
	out := make([]string, 0, len(results))
	for _, result := range results {
		if result.Name == "" {
			continue
		}
		if _, dup := seen[result.Name]; dup {
			continue
		}
		seen[result.Name] = struct{}{}
		out = append(out, result.Name)
	}
	return out, nil
}

func (s *rawgSource) FetchMetadata(ctx context.Context, title string) (Metadata, error) {
	results, err := s.client.SearchGames(ctx, title, s.limit)
	if err != nil {
		return Metadata{}, err
	}
	slug := ""
	for _, result := range results {
		if strings.EqualFold(result.Name, title) {
			slug = result.Slug
			break
		}
	}
	if slug == "" {
		return Metadata{}, ErrNotFound
	}

	detail, err := s.client.GetGame(ctx, slug)
	if err != nil {
		return Metadata{}, err
	}

	md := Metadata{Title: title}
	if detail.Metacritic != nil {
		md.Rating = detail.Metacritic
	}
	if publisher, ok := detail.Publisher(); ok {
		md.Publisher = &publisher
	}
	if release, ok := detail.ReleaseDate(); ok {
		md.ReleaseDate = &release
	}
	return md, nil
}
