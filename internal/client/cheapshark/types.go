package cheapshark

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Decimal tolerates CheapShark's habit of sending prices as strings.
type Decimal struct {
	decimal.Decimal
}

func (d *Decimal) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		d.Decimal = decimal.Zero
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		val, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		d.Decimal = val
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		d.Decimal = decimal.NewFromFloat(f)
		return nil
	}
	return fmt.Errorf("invalid decimal: %s", string(b))
}

// Game is one /games search result. External is the store-facing title.
type Game struct {
	GameID   string  `json:"gameID"`
	External string  `json:"external"`
	Cheapest Decimal `json:"cheapest"`
}

// Deal is one /deals result across the stores CheapShark tracks.
type Deal struct {
	Title       string  `json:"title"`
	DealID      string  `json:"dealID"`
	StoreID     string  `json:"storeID"`
	SalePrice   Decimal `json:"salePrice"`
	NormalPrice Decimal `json:"normalPrice"`
}

func parseGames(body []byte) ([]Game, error) {
	var games []Game
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("parse games response: %w", err)
	}
	return games, nil
}

func parseDeals(body []byte) ([]Deal, error) {
	var deals []Deal
	if err := json.Unmarshal(body, &deals); err != nil {
		return nil, fmt.Errorf("parse deals response: %w", err)
	}
	return deals, nil
}
