package index

import (
	"testing"

	"go.uber.org/zap"

	"github.com/tcg-price-bot/app/models"
)

func testCollection() []models.ProductWithPrice {
	return []models.ProductWithPrice{
		{
			Product:   models.Product{ProductID: 1, Name: "Charizard ex Elite Trainer Box", CleanName: "Charizard ex Elite Trainer Box"},
			GroupName: "Obsidian Flames",
		},
		{
			Product:   models.Product{ProductID: 2, Name: "Paldea Evolved Booster Box", CleanName: "Paldea Evolved Booster Box"},
			GroupName: "Paldea Evolved",
		},
		{
			Product:   models.Product{ProductID: 3, Name: "Crown Zenith Tin", CleanName: "Crown Zenith Tin"},
			GroupName: "Crown Zenith",
		},
	}
}

func TestSearch_EmptyIndexReturnsNothing(t *testing.T) {
	idx := NewIndex(DefaultConfig(), zap.NewNop())

	if results := idx.Search("charizard", 5); len(results) != 0 {
		t.Errorf("unbuilt index returned %d results", len(results))
	}
}

func TestSearch_LimitAndMembership(t *testing.T) {
	items := testCollection()
	idx := Build(items, DefaultConfig(), zap.NewNop())

	results := idx.Search("booster box", 1)
	if len(results) > 1 {
		t.Fatalf("limit ignored, got %d results", len(results))
	}
	if len(results) == 0 {
		t.Fatal("expected at least one match for booster box")
	}
	if results[0].Item.ProductID != 2 {
		t.Errorf("best match = %d, want 2", results[0].Item.ProductID)
	}

	known := map[int]bool{1: true, 2: true, 3: true}
	for _, r := range idx.Search("booster box", 10) {
		if !known[r.Item.ProductID] {
			t.Errorf("result %d not in source collection", r.Item.ProductID)
		}
	}
}

func TestSearch_NoisyQueryResolves(t *testing.T) {
	idx := Build(testCollection(), DefaultConfig(), zap.NewNop())

	testCases := []struct {
		name  string
		query string
		want  int
	}{
		{"Word subset", "charizard elite trainer box", 1},
		{"Different casing", "CHARIZARD ELITE TRAINER BOX", 1},
		{"Small typo", "paldea evolvd booster box", 2},
		{"Exact", "Crown Zenith Tin", 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			results := idx.Search(tc.query, 3)
			if len(results) == 0 {
				t.Fatalf("no results for %q", tc.query)
			}
			if results[0].Item.ProductID != tc.want {
				t.Errorf("best match for %q = %d, want %d", tc.query, results[0].Item.ProductID, tc.want)
			}
		})
	}
}

func TestSearch_UnrelatedQueryRejected(t *testing.T) {
	idx := Build(testCollection(), DefaultConfig(), zap.NewNop())

	if results := idx.Search("zzzz qqqq", 5); len(results) != 0 {
		t.Errorf("unrelated query matched %d items", len(results))
	}
}

func TestSearch_ShortQueryIgnored(t *testing.T) {
	idx := Build(testCollection(), DefaultConfig(), zap.NewNop())

	if results := idx.Search("ab", 5); len(results) != 0 {
		t.Errorf("short query should not score, got %d results", len(results))
	}
}

func TestSearch_GroupNameIsIndexed(t *testing.T) {
	idx := Build(testCollection(), DefaultConfig(), zap.NewNop())

	results := idx.Search("obsidian flames", 5)
	found := false
	for _, r := range results {
		if r.Item.ProductID == 1 {
			found = true
		}
	}
	if !found {
		t.Error("expected group-name query to surface product 1")
	}
}

func TestSearch_WeightsBiasRanking(t *testing.T) {
	items := []models.ProductWithPrice{
		{
			Product:   models.Product{ProductID: 10, Name: "Sleeved Charmander", CleanName: "Sleeved Charmander"},
			GroupName: "Twilight Masquerade Booster Box",
		},
		{
			Product:   models.Product{ProductID: 11, Name: "Twilight Masquerade Booster Box", CleanName: "Twilight Masquerade Booster Box"},
			GroupName: "Twilight Masquerade",
		},
	}
	idx := Build(items, DefaultConfig(), zap.NewNop())

	results := idx.Search("twilight masquerade booster box", 5)
	if len(results) < 2 {
		t.Fatalf("expected both items to match, got %d", len(results))
	}
	if results[0].Item.ProductID != 11 {
		t.Errorf("name-field match should outrank group-field match, got %d first", results[0].Item.ProductID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %v then %v", results[0].Score, results[1].Score)
	}
}
