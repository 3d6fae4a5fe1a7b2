package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tcg-price-bot/internal/index"
	"github.com/tcg-price-bot/internal/normalizer"
)

// PriceService resolves free-text product mentions against the catalog
// snapshot: normalize the candidate, make sure the snapshot is fresh enough,
// run the fuzzy search, cache the outcome.
type PriceService struct {
	controller *index.SnapshotController
	normalizer *normalizer.TextNormalizer
	queryCache *QueryCacheService
	logger     *zap.Logger
}

// Stats is the operational view exposed on the admin API.
type Stats struct {
	State         string    `json:"state"`
	BuiltAt       time.Time `json:"built_at,omitempty"`
	AgeSeconds    int64     `json:"age_seconds"`
	Products      int       `json:"products"`
	Groups        int       `json:"groups"`
	CachedQueries int       `json:"cached_queries"`
}

// NewPriceService wires the service together.
func NewPriceService(controller *index.SnapshotController, textNormalizer *normalizer.TextNormalizer, queryCache *QueryCacheService, logger *zap.Logger) *PriceService {
	return &PriceService{
		controller: controller,
		normalizer: textNormalizer,
		queryCache: queryCache,
		logger:     logger,
	}
}

// Lookup resolves a raw candidate string to ranked product matches, best
// first, at most limit of them. An empty result means nothing in the catalog
// cleared the match threshold.
func (ps *PriceService) Lookup(ctx context.Context, raw string, limit int) ([]index.Result, error) {
	query := ps.normalizer.NormalizeSearch(raw)
	if query == "" {
		return nil, nil
	}

	snap, err := ps.controller.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%d|%d|%s", snap.BuiltAt.UnixNano(), limit, query)
	if results, ok := ps.queryCache.Get(key); ok {
		return results, nil
	}

	results := snap.Index.Search(query, limit)
	ps.queryCache.Set(key, results)

	ps.logger.Debug("Resolved product query",
		zap.String("raw", raw),
		zap.String("query", query),
		zap.Int("matches", len(results)))

	return results, nil
}

// ForceRefresh rebuilds the snapshot immediately and drops cached queries.
func (ps *PriceService) ForceRefresh(ctx context.Context) error {
	if _, err := ps.controller.ForceRefresh(ctx); err != nil {
		return err
	}
	ps.queryCache.Purge()
	return nil
}

// GetStats reports snapshot and cache state without triggering a rebuild.
func (ps *PriceService) GetStats() Stats {
	stats := Stats{
		State:         string(ps.controller.State()),
		CachedQueries: ps.queryCache.Len(),
	}
	if snap := ps.controller.Current(); snap != nil {
		stats.BuiltAt = snap.BuiltAt
		stats.AgeSeconds = int64(time.Since(snap.BuiltAt).Seconds())
		stats.Products = len(snap.Products)
		stats.Groups = snap.Groups
	}
	return stats
}
