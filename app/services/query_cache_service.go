package services

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/tcg-price-bot/internal/index"
)

// QueryCacheService keeps recent search results so restock bursts that
// mention the same product repeatedly do not re-score the whole index.
// Entries expire on their own; keys embed the snapshot build time so a
// rebuild naturally invalidates everything cached against the old snapshot.
type QueryCacheService struct {
	cache  *expirable.LRU[string, []index.Result]
	logger *zap.Logger
}

// NewQueryCacheService creates an expirable LRU of the given size and TTL.
func NewQueryCacheService(size int, ttl time.Duration, logger *zap.Logger) *QueryCacheService {
	return &QueryCacheService{
		cache:  expirable.NewLRU[string, []index.Result](size, nil, ttl),
		logger: logger,
	}
}

// Get returns the cached results for key, if any.
func (qcs *QueryCacheService) Get(key string) ([]index.Result, bool) {
	results, ok := qcs.cache.Get(key)
	if ok {
		qcs.logger.Debug("Query cache hit", zap.String("key", key))
	}
	return results, ok
}

// Set stores results under key.
func (qcs *QueryCacheService) Set(key string, results []index.Result) {
	qcs.cache.Add(key, results)
}

// Purge drops every cached entry.
func (qcs *QueryCacheService) Purge() {
	qcs.cache.Purge()
}

// Len reports the number of live entries.
func (qcs *QueryCacheService) Len() int {
	return qcs.cache.Len()
}
