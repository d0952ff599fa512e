package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gabyferreira/epic-games-savings-analysis/internal/client/cheapshark"
	"github.com/gabyferreira/epic-games-savings-analysis/internal/client/rawg"
)

func TestCheapSharkListCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"gameID": "1", "external": "Rocket League", "cheapest": "9.99"},
			{"gameID": "2", "external": "Rocket League", "cheapest": "9.99"},
			{"gameID": "3", "external": "", "cheapest": "1.00"},
			{"gameID": "4", "external": "Rocket League - GOTY", "cheapest": "14.99"}
		]`))
	}))
	defer srv.Close()

	src := NewCheapShark(cheapshark.NewClient(srv.Client(), srv.URL), 10)
	if src.ID() != "cheapshark" {
		t.Fatalf("ID = %q", src.ID())
	}

	got, err := src.ListCandidates(context.Background(), "rocket league")
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	want := []string{"Rocket League", "Rocket League - GOTY"}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidates = %v, want %v", got, want)
		}
	}
}

func TestCheapSharkFetchMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"title": "ROCKET LEAGUE", "dealID": "a", "storeID": "1", "salePrice": "4.99", "normalPrice": "19.99"},
			{"title": "Rocket League", "dealID": "b", "storeID": "7", "salePrice": "9.99", "normalPrice": "29.99"},
			{"title": "Rocket League Season Pass", "dealID": "c", "storeID": "2", "salePrice": "99.00", "normalPrice": "99.00"}
		]`))
	}))
	defer srv.Close()

	src := NewCheapShark(cheapshark.NewClient(srv.Client(), srv.URL), 10)
	md, err := src.FetchMetadata(context.Background(), "Rocket League")
	if err != nil {
		t.Fatalf("FetchMetadata: %v", err)
	}

	if md.RetailPrice == nil || !md.RetailPrice.Equal(decimal.RequireFromString("29.99")) {
		t.Fatalf("retail price = %v, want highest normal price 29.99", md.RetailPrice)
	}
	if md.Rating != nil || md.Publisher != nil || md.ReleaseDate != nil {
		t.Fatalf("cheapshark must only contribute price, got %+v", md)
	}
}

func TestCheapSharkFetchMetadataNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title": "Something Else", "dealID": "a", "storeID": "1", "salePrice": "1.00", "normalPrice": "2.00"}]`))
	}))
	defer srv.Close()

	src := NewCheapShark(cheapshark.NewClient(srv.Client(), srv.URL), 10)
	_, err := src.FetchMetadata(context.Background(), "Rocket League")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func rawgTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/games", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count": 2, "results": [
			{"id": 1, "slug": "celeste", "name": "Celeste"},
			{"id": 2, "slug": "celeste-classic", "name": "Celeste Classic"}
		]}`))
	})
	mux.HandleFunc("/api/games/celeste", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": 1, "slug": "celeste", "name": "Celeste",
			"released": "2018-01-25", "metacritic": 94,
			"publishers": [{"name": "Maddy Makes Games"}]
		}`))
	})
	return httptest.NewServer(mux)
}

func TestRAWGListCandidates(t *testing.T) {
	srv := rawgTestServer(t)
	defer srv.Close()

	src := NewRAWG(rawg.NewClient(srv.Client(), srv.URL, "k"), 10)
	if src.ID() != "rawg" {
		t.Fatalf("ID = %q", src.ID())
	}

	got, err := src.ListCandidates(context.Background(), "celeste")
	if err != nil {
		t.Fatalf("ListCandidates: %v", err)
	}
	if len(got) != 2 || got[0] != "Celeste" || got[1] != "Celeste Classic" {
		t.Fatalf("candidates = %v", got)
	}
}

func TestRAWGFetchMetadata(t *testing.T) {
	srv := rawgTestServer(t)
	defer srv.Close()

	src := NewRAWG(rawg.NewClient(srv.Client(), srv.URL, "k"), 10)
	md, err := src.FetchMetadata(context.Background(), "Celeste")
	if err != nil {
		t.Fatalf("FetchMetadata: %v", err)
	}

	if md.Rating == nil || *md.Rating != 94 {
		t.Fatalf("rating = %v, want 94", md.Rating)
	}
	if md.Publisher == nil || *md.Publisher != "Maddy Makes Games" {
		t.Fatalf("publisher = %v", md.Publisher)
	}
	want := time.Date(2018, 1, 25, 0, 0, 0, 0, time.UTC)
	if md.ReleaseDate == nil || !md.ReleaseDate.Equal(want) {
		t.Fatalf("release date = %v, want %v", md.ReleaseDate, want)
	}
	if md.RetailPrice != nil {
		t.Fatalf("rawg must not contribute price, got %v", md.RetailPrice)
	}
}

func TestRAWGFetchMetadataNotFound(t *testing.T) {
	srv := rawgTestServer(t)
	defer srv.Close()

	src := NewRAWG(rawg.NewClient(srv.Client(), srv.URL, "k"), 10)
	_, err := src.FetchMetadata(context.Background(), "A Game RAWG Never Indexed")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
