package index

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
	"go.uber.org/zap"

	"github.com/tcg-price-bot/app/models"
	"github.com/tcg-price-bot/internal/normalizer"
)

// Weights bias ranking across the indexed text fields. The full catalog name
// dominates, the catalog's clean name and the owning set name act as
// tie-breakers and fallbacks.
type Weights struct {
	Name      float64
	CleanName float64
	GroupName float64
}

// Config tunes the fuzzy index.
type Config struct {
	Weights Weights
	// Threshold follows the fuzzy-library convention: 0 accepts exact
	// matches only, 1 accepts anything. 0.4 means a candidate needs a
	// normalized similarity of at least 0.6 on some field.
	Threshold float64
	// MinTermLength drops indexed terms and queries shorter than this from
	// scoring entirely.
	MinTermLength int
}

// DefaultConfig is the tuned operating point for restock announcements:
// noisy casing and punctuation accepted, unrelated names rejected.
func DefaultConfig() Config {
	return Config{
		Weights:       Weights{Name: 0.7, CleanName: 0.5, GroupName: 0.3},
		Threshold:     0.4,
		MinTermLength: 3,
	}
}

type indexedField struct {
	term   string
	tokens []string
	weight float64
}

type entry struct {
	item   models.ProductWithPrice
	fields []indexedField
}

// Index is a weighted multi-field approximate-text index over a snapshot's
// product collection. Immutable once built; rebuilds produce a new Index.
type Index struct {
	entries []entry
	config  Config
	logger  *zap.Logger
}

// NewIndex returns an empty, unbuilt index. Searching it yields no results
// and a warning until Build is called on a product collection.
func NewIndex(config Config, logger *zap.Logger) *Index {
	return &Index{config: config, logger: logger}
}

// Build constructs the index over the given collection, preserving its
// order. Terms are ASCII-folded and lowercased so scoring is insensitive to
// casing and diacritics.
func Build(items []models.ProductWithPrice, config Config, logger *zap.Logger) *Index {
	idx := NewIndex(config, logger)
	idx.entries = make([]entry, 0, len(items))

	for _, item := range items {
		e := entry{item: item}
		e.addField(item.Name, config.Weights.Name, config.MinTermLength)
		e.addField(item.CleanName, config.Weights.CleanName, config.MinTermLength)
		e.addField(item.GroupName, config.Weights.GroupName, config.MinTermLength)
		idx.entries = append(idx.entries, e)
	}

	return idx
}

func (e *entry) addField(raw string, weight float64, minLen int) {
	term := normalizer.FoldASCII(strings.TrimSpace(raw))
	if len(term) < minLen {
		return
	}
	e.fields = append(e.fields, indexedField{
		term:   term,
		tokens: strings.Fields(term),
		weight: weight,
	})
}

// Result is one ranked match.
type Result struct {
	Item  models.ProductWithPrice
	Score float64
}

// Len reports the number of indexed products.
func (idx *Index) Len() int { return len(idx.entries) }

// Search resolves a free-text query to the best-matching products, best
// first, truncated to limit. An unbuilt index returns an empty result set.
func (idx *Index) Search(query string, limit int) []Result {
	if len(idx.entries) == 0 {
		idx.logger.Warn("Search index not initialized, returning no results")
		return nil
	}

	q := normalizer.FoldASCII(strings.TrimSpace(query))
	if len(q) < idx.config.MinTermLength {
		return nil
	}
	qTokens := strings.Fields(q)

	minSimilarity := 1.0 - idx.config.Threshold

	var results []Result
	for _, e := range idx.entries {
		var best, rank float64
		for _, f := range e.fields {
			sim := fieldSimilarity(q, qTokens, f)
			if sim > best {
				best = sim
			}
			if weighted := sim * f.weight; weighted > rank {
				rank = weighted
			}
		}
		// Acceptance is on raw similarity; weights only bias the ranking.
		if best >= minSimilarity {
			results = append(results, Result{Item: e.item, Score: rank})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// fieldSimilarity scores a query against one indexed field. Whole-term edit
// similarity handles short names; the sliding token window handles partial
// matches against long names ("charizard elite trainer box" inside
// "Charizard ex Elite Trainer Box - Obsidian Flames").
func fieldSimilarity(query string, queryTokens []string, f indexedField) float64 {
	best := stringSimilarity(query, f.term)

	n := len(queryTokens)
	if n > 0 && len(f.tokens) > n {
		for i := 0; i+n <= len(f.tokens); i++ {
			window := strings.Join(f.tokens[i:i+n], " ")
			if sim := stringSimilarity(query, window); sim > best {
				best = sim
			}
		}
	}

	return best
}

// stringSimilarity combines Jaro-Winkler (transposition tolerant, favors
// shared prefixes) with normalized Levenshtein and keeps the better of the
// two.
func stringSimilarity(a, b string) float64 {
	jaro := smetrics.JaroWinkler(a, b, 0.7, 4)

	dist := levenshtein.ComputeDistance(a, b)
	maxLen := math.Max(float64(len(a)), float64(len(b)))
	lev := 0.0
	if maxLen > 0 {
		lev = 1.0 - float64(dist)/maxLen
	}

	return math.Max(jaro, lev)
}
