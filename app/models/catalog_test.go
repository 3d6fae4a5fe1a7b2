package models

import "testing"

func f(v float64) *float64 { return &v }

func TestPrimaryPrice(t *testing.T) {
	testCases := []struct {
		name        string
		prices      []Price
		wantSubType string
		wantNil     bool
	}{
		{
			name: "Prefers Normal sub-type",
			prices: []Price{
				{SubTypeName: "Holofoil", MarketPrice: f(99)},
				{SubTypeName: "Normal", MarketPrice: f(10)},
			},
			wantSubType: "Normal",
		},
		{
			name: "Case-insensitive Normal",
			prices: []Price{
				{SubTypeName: "Reverse Holofoil"},
				{SubTypeName: "normal"},
			},
			wantSubType: "normal",
		},
		{
			name: "Falls back to first row",
			prices: []Price{
				{SubTypeName: "Holofoil"},
				{SubTypeName: "Reverse Holofoil"},
			},
			wantSubType: "Holofoil",
		},
		{
			name:    "No rows",
			prices:  nil,
			wantNil: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := ProductWithPrice{Prices: tc.prices}
			got := p.PrimaryPrice()
			if tc.wantNil {
				if got != nil {
					t.Fatalf("expected nil, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected a price row, got nil")
			}
			if got.SubTypeName != tc.wantSubType {
				t.Errorf("got sub-type %q, want %q", got.SubTypeName, tc.wantSubType)
			}
		})
	}
}

func TestPriceSummary(t *testing.T) {
	testCases := []struct {
		name     string
		product  ProductWithPrice
		expected string
	}{
		{
			name: "All points",
			product: ProductWithPrice{Prices: []Price{{
				SubTypeName: "Normal",
				MarketPrice: f(42.5), LowPrice: f(38), MidPrice: f(44.25), HighPrice: f(60),
			}}},
			expected: "Market: $42.50 | Low: $38.00 | Mid: $44.25 | High: $60.00",
		},
		{
			name: "Nulls omitted",
			product: ProductWithPrice{Prices: []Price{{
				SubTypeName: "Normal",
				MarketPrice: f(42.5),
			}}},
			expected: "Market: $42.50",
		},
		{
			name:     "No rows",
			product:  ProductWithPrice{},
			expected: NoPriceData,
		},
		{
			name: "Row with every point null",
			product: ProductWithPrice{Prices: []Price{{
				SubTypeName: "Normal",
			}}},
			expected: NoPriceData,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.product.PriceSummary(); got != tc.expected {
				t.Errorf("PriceSummary() = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestCanonicalURL(t *testing.T) {
	withURL := ProductWithPrice{Product: Product{ProductID: 501, URL: "https://example.com/p/501"}}
	if got := withURL.CanonicalURL(); got != "https://example.com/p/501" {
		t.Errorf("CanonicalURL() = %q", got)
	}

	withoutURL := ProductWithPrice{Product: Product{ProductID: 501}}
	if got := withoutURL.CanonicalURL(); got != "https://www.tcgplayer.com/product/501" {
		t.Errorf("fallback CanonicalURL() = %q", got)
	}
}

func TestMarketDelta(t *testing.T) {
	p := ProductWithPrice{Prices: []Price{{SubTypeName: "Normal", MarketPrice: f(40)}}}
	delta, ok := p.MarketDelta(49.99)
	if !ok {
		t.Fatal("expected a delta")
	}
	if delta < 9.98 || delta > 10.0 {
		t.Errorf("delta = %v", delta)
	}

	empty := ProductWithPrice{}
	if _, ok := empty.MarketDelta(49.99); ok {
		t.Error("expected no delta without market price")
	}
}
