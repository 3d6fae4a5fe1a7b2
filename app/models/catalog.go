package models

import (
	"fmt"
	"strings"
)

// NoPriceData is the fixed summary used when a product carries no price rows.
const NoPriceData = "No price data"

// Group is one release/set on the catalog side. Immutable after fetch; only
// used to scope product/price fetches and to filter by recency.
type Group struct {
	GroupID     int       `json:"groupId"`
	Name        string    `json:"name"`
	PublishedOn Timestamp `json:"publishedOn"`
	ModifiedOn  Timestamp `json:"modifiedOn"`
}

// Product is a raw catalog entry. CleanName is the catalog's own normalized
// spelling, which often differs from Name in punctuation only.
type Product struct {
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	CleanName string `json:"cleanName"`
	ImageURL  string `json:"imageUrl"`
	GroupID   int    `json:"groupId"`
	URL       string `json:"url"`
}

// Price is one quote for a product under one sub-type (Normal, Holofoil, ...).
// All price points are nullable on the wire.
type Price struct {
	ProductID      int      `json:"productId"`
	SubTypeName    string   `json:"subTypeName"`
	LowPrice       *float64 `json:"lowPrice"`
	MidPrice       *float64 `json:"midPrice"`
	HighPrice      *float64 `json:"highPrice"`
	MarketPrice    *float64 `json:"marketPrice"`
	DirectLowPrice *float64 `json:"directLowPrice"`
}

// ProductWithPrice is the denormalized unit the index is built over and the
// unit returned to callers: a product, its full price list and the display
// name of its owning group. Rebuilt wholesale on every refresh cycle.
type ProductWithPrice struct {
	Product
	Prices    []Price `json:"prices"`
	GroupName string  `json:"groupName"`
}

// PrimaryPrice returns the price row for the canonical "Normal" sub-type,
// falling back to the first row when none is tagged Normal. Nil when the
// product has no price rows at all.
func (p *ProductWithPrice) PrimaryPrice() *Price {
	if len(p.Prices) == 0 {
		return nil
	}
	for i := range p.Prices {
		if strings.EqualFold(p.Prices[i].SubTypeName, "Normal") {
			return &p.Prices[i]
		}
	}
	return &p.Prices[0]
}

// PriceSummary renders the non-null price points of the primary price row as
// a pipe-delimited human string.
func (p *ProductWithPrice) PriceSummary() string {
	pr := p.PrimaryPrice()
	if pr == nil {
		return NoPriceData
	}

	var parts []string
	if pr.MarketPrice != nil {
		parts = append(parts, fmt.Sprintf("Market: $%.2f", *pr.MarketPrice))
	}
	if pr.LowPrice != nil {
		parts = append(parts, fmt.Sprintf("Low: $%.2f", *pr.LowPrice))
	}
	if pr.MidPrice != nil {
		parts = append(parts, fmt.Sprintf("Mid: $%.2f", *pr.MidPrice))
	}
	if pr.HighPrice != nil {
		parts = append(parts, fmt.Sprintf("High: $%.2f", *pr.HighPrice))
	}
	if len(parts) == 0 {
		return NoPriceData
	}
	return strings.Join(parts, " | ")
}

// CanonicalURL returns the catalog's own product URL when present, otherwise
// a deterministic fallback built from the product id.
func (p *ProductWithPrice) CanonicalURL() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("https://www.tcgplayer.com/product/%d", p.ProductID)
}

// MarketDelta computes announcement-retail minus market price. The second
// return is false when the product has no market price.
func (p *ProductWithPrice) MarketDelta(retail float64) (float64, bool) {
	pr := p.PrimaryPrice()
	if pr == nil || pr.MarketPrice == nil {
		return 0, false
	}
	return retail - *pr.MarketPrice, true
}
