package services

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tcg-price-bot/app/models"
	"github.com/tcg-price-bot/internal/index"
	"github.com/tcg-price-bot/internal/normalizer"
)

type stubFetcher struct{}

func (stubFetcher) FetchGroups(ctx context.Context) ([]models.Group, error) {
	return []models.Group{
		{GroupID: 1, Name: "Obsidian Flames", PublishedOn: models.Timestamp{Time: time.Now().AddDate(0, -1, 0)}},
	}, nil
}

func (stubFetcher) FetchProducts(ctx context.Context, groupID int) ([]models.Product, error) {
	return []models.Product{
		{ProductID: 100, Name: "Charizard ex Elite Trainer Box", CleanName: "Charizard ex Elite Trainer Box", GroupID: 1},
	}, nil
}

func (stubFetcher) FetchPrices(ctx context.Context, groupID int) ([]models.Price, error) {
	market := 42.5
	return []models.Price{
		{ProductID: 100, SubTypeName: "Normal", MarketPrice: &market},
	}, nil
}

func newTestPriceService(t *testing.T) (*PriceService, *QueryCacheService) {
	t.Helper()
	logger := zap.NewNop()

	tn, err := normalizer.NewTextNormalizer()
	if err != nil {
		t.Fatalf("NewTextNormalizer: %v", err)
	}

	controller := index.NewSnapshotController(stubFetcher{}, index.ControllerConfig{
		Validity:    6 * time.Hour,
		MaxGroupAge: 2 * 365 * 24 * time.Hour,
		PacingDelay: time.Millisecond,
	}, index.DefaultConfig(), logger)

	cache := NewQueryCacheService(16, time.Minute, logger)
	return NewPriceService(controller, tn, cache, logger), cache
}

func TestLookup_NormalizesAndResolves(t *testing.T) {
	ps, cache := newTestPriceService(t)

	// Abbreviation-laden announcement text resolves to the catalog entry.
	results, err := ps.Lookup(context.Background(), "Pokemon TCG: Charizard ETB", 3)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected a match")
	}
	if results[0].Item.ProductID != 100 {
		t.Errorf("best match = %d, want 100", results[0].Item.ProductID)
	}
	if cache.Len() != 1 {
		t.Errorf("cache len = %d, want 1", cache.Len())
	}

	// Second identical lookup is served from cache.
	again, err := ps.Lookup(context.Background(), "Pokemon TCG: Charizard ETB", 3)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(again) != len(results) {
		t.Errorf("cached lookup differs: %d vs %d results", len(again), len(results))
	}
}

func TestLookup_EmptyQuery(t *testing.T) {
	ps, _ := newTestPriceService(t)

	results, err := ps.Lookup(context.Background(), "   ", 3)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results for empty query, got %v", results)
	}
}

func TestForceRefresh_PurgesQueryCache(t *testing.T) {
	ps, cache := newTestPriceService(t)

	if _, err := ps.Lookup(context.Background(), "charizard elite trainer box", 3); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if cache.Len() == 0 {
		t.Fatal("expected cached query")
	}

	if err := ps.ForceRefresh(context.Background()); err != nil {
		t.Fatalf("ForceRefresh: %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("cache len after refresh = %d, want 0", cache.Len())
	}
}

func TestGetStats(t *testing.T) {
	ps, _ := newTestPriceService(t)

	stats := ps.GetStats()
	if stats.State != string(index.StateEmpty) {
		t.Errorf("initial state = %s, want %s", stats.State, index.StateEmpty)
	}

	if _, err := ps.Lookup(context.Background(), "charizard elite trainer box", 1); err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	stats = ps.GetStats()
	if stats.State != string(index.StateFresh) {
		t.Errorf("state = %s, want %s", stats.State, index.StateFresh)
	}
	if stats.Products != 1 || stats.Groups != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
