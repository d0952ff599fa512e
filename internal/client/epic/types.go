package epic

import (
	"encoding/json"
	"fmt"
	"time"
)

// Promotion is one currently running 100%-off giveaway. Dates are truncated
// to the UTC day because the giveaway calendar is date-granular.
type Promotion struct {
	Title     string
	StartDate time.Time
	EndDate   time.Time
	Raw       json.RawMessage
}

type feedEnvelope struct {
	Data struct {
		Catalog struct {
			SearchStore struct {
				Elements []json.RawMessage `json:"elements"`
			} `json:"searchStore"`
		} `json:"Catalog"`
	} `json:"data"`
}

type feedElement struct {
	Title      string `json:"title"`
	Promotions *struct {
		PromotionalOffers []struct {
			PromotionalOffers []feedOffer `json:"promotionalOffers"`
		} `json:"promotionalOffers"`
	} `json:"promotions"`
}

type feedOffer struct {
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	DiscountSetting struct {
		DiscountType       string `json:"discountType"`
		DiscountPercentage *int   `json:"discountPercentage"`
	} `json:"discountSetting"`
}

func parsePromotions(body []byte) ([]Promotion, error) {
	var envelope feedEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse promotions feed: %w", err)
	}

	var promos []Promotion
	for _, raw := range envelope.Data.Catalog.SearchStore.Elements {
		var element feedElement
		if err := json.Unmarshal(raw, &element); err != nil {
			continue // tolerate junk elements, the rest of the feed is still usable
		}
		offer, ok := currentFreeOffer(element)
		if !ok {
			continue
		}
		promos = append(promos, Promotion{
			Title:     element.Title,
			StartDate: toUTCDate(offer.StartDate),
			EndDate:   toUTCDate(offer.EndDate),
			Raw:       raw,
		})
	}
	return promos, nil
}

// currentFreeOffer picks the running offer of an element if it is a real
// giveaway. The feed mixes giveaways with ordinary discounts and encodes
// "100% off" as discountPercentage == 0; a missing percentage means the
// element is not free.
func currentFreeOffer(element feedElement) (feedOffer, bool) {
	if element.Promotions == nil || len(element.Promotions.PromotionalOffers) == 0 {
		return feedOffer{}, false
	}
	offers := element.Promotions.PromotionalOffers[0].PromotionalOffers
	if len(offers) == 0 {
		return feedOffer{}, false
	}
	offer := offers[0]
	if offer.DiscountSetting.DiscountPercentage == nil || *offer.DiscountSetting.DiscountPercentage != 0 {
		return feedOffer{}, false
	}
	if offer.StartDate.IsZero() || offer.EndDate.IsZero() {
		return feedOffer{}, false
	}
	return offer, true
}

func toUTCDate(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
