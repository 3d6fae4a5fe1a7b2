package index

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tcg-price-bot/app/models"
)

// State of the controller's snapshot lifecycle.
type State string

const (
	StateEmpty      State = "empty"
	StateFresh      State = "fresh"
	StateStale      State = "stale"
	StateRebuilding State = "rebuilding"
)

// Fetcher is the remote catalog surface the controller rebuilds from.
// Implemented by catalog.Client.
type Fetcher interface {
	FetchGroups(ctx context.Context) ([]models.Group, error)
	FetchProducts(ctx context.Context, groupID int) ([]models.Product, error)
	FetchPrices(ctx context.Context, groupID int) ([]models.Price, error)
}

// Snapshot is the atomic bundle of denormalized records plus the fuzzy index
// built over them. Read-only to all consumers, replaced wholesale on
// rebuild.
type Snapshot struct {
	Products []models.ProductWithPrice
	Index    *Index
	Groups   int
	BuiltAt  time.Time
}

// ControllerConfig tunes the refresh policy.
type ControllerConfig struct {
	// Validity is how long a built snapshot serves queries before the next
	// query triggers a rebuild.
	Validity time.Duration
	// MaxGroupAge drops groups published further back than this from the
	// rebuild entirely.
	MaxGroupAge time.Duration
	// PacingDelay is the fixed wait between per-group fetch rounds. The
	// mirror is a shared unauthenticated endpoint; pacing is politeness,
	// not correctness.
	PacingDelay time.Duration
}

// DefaultControllerConfig matches the production operating point.
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		Validity:    6 * time.Hour,
		MaxGroupAge: 2 * 365 * 24 * time.Hour,
		PacingDelay: 100 * time.Millisecond,
	}
}

// SnapshotController owns the time-windowed validity of the built index.
// While a rebuild runs the previous snapshot stays fully queryable; the swap
// happens in one step after the rebuild succeeds.
type SnapshotController struct {
	fetcher     Fetcher
	config      ControllerConfig
	indexConfig Config
	logger      *zap.Logger

	mu         sync.Mutex
	snapshot   *Snapshot
	rebuilding bool
	done       chan struct{}
	rebuildErr error

	now func() time.Time
}

// NewSnapshotController starts in the Empty state; the first query triggers
// the first rebuild.
func NewSnapshotController(fetcher Fetcher, config ControllerConfig, indexConfig Config, logger *zap.Logger) *SnapshotController {
	return &SnapshotController{
		fetcher:     fetcher,
		config:      config,
		indexConfig: indexConfig,
		logger:      logger,
		now:         time.Now,
	}
}

// State reports the current lifecycle state.
func (sc *SnapshotController) State() State {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.stateLocked()
}

func (sc *SnapshotController) stateLocked() State {
	switch {
	case sc.rebuilding:
		return StateRebuilding
	case sc.snapshot == nil:
		return StateEmpty
	case sc.now().Sub(sc.snapshot.BuiltAt) >= sc.config.Validity:
		return StateStale
	default:
		return StateFresh
	}
}

// Current returns whatever snapshot is published right now, nil when Empty.
// Never triggers a rebuild.
func (sc *SnapshotController) Current() *Snapshot {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.snapshot
}

// Acquire returns a queryable snapshot, rebuilding first when the snapshot
// is empty or its validity window has lapsed. Callers arriving during a
// rebuild get the previous snapshot when one exists, otherwise they wait for
// the in-flight rebuild.
func (sc *SnapshotController) Acquire(ctx context.Context) (*Snapshot, error) {
	sc.mu.Lock()

	if sc.rebuilding {
		if sc.snapshot != nil {
			snap := sc.snapshot
			sc.mu.Unlock()
			return snap, nil
		}
		return sc.waitLocked(ctx)
	}

	if state := sc.stateLocked(); state == StateFresh {
		snap := sc.snapshot
		sc.mu.Unlock()
		return snap, nil
	}

	return sc.rebuildLocked(ctx)
}

// ForceRefresh rebuilds regardless of freshness. When a rebuild is already
// in flight it waits for that one instead of starting another.
func (sc *SnapshotController) ForceRefresh(ctx context.Context) (*Snapshot, error) {
	sc.mu.Lock()
	if sc.rebuilding {
		return sc.waitLocked(ctx)
	}
	return sc.rebuildLocked(ctx)
}

// waitLocked blocks on the in-flight rebuild. Called with mu held, returns
// with mu released.
func (sc *SnapshotController) waitLocked(ctx context.Context) (*Snapshot, error) {
	done := sc.done
	sc.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.rebuildErr != nil {
		return nil, sc.rebuildErr
	}
	return sc.snapshot, nil
}

// rebuildLocked runs a full rebuild. Called with mu held, returns with mu
// released.
func (sc *SnapshotController) rebuildLocked(ctx context.Context) (*Snapshot, error) {
	sc.rebuilding = true
	sc.done = make(chan struct{})
	done := sc.done
	sc.mu.Unlock()

	snap, err := sc.rebuild(ctx)

	sc.mu.Lock()
	sc.rebuilding = false
	sc.rebuildErr = err
	if err == nil {
		// Atomic publish: index and records swap together.
		sc.snapshot = snap
	}
	close(done)
	sc.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return snap, nil
}

// rebuild performs the full fetch-merge-index cycle. A single group's
// failure is logged and skipped; a groups-list failure aborts the rebuild.
func (sc *SnapshotController) rebuild(ctx context.Context) (*Snapshot, error) {
	start := sc.now()
	sc.logger.Info("Starting catalog snapshot rebuild")

	groups, err := sc.fetcher.FetchGroups(ctx)
	if err != nil {
		sc.logger.Error("Failed to fetch group list", zap.Error(err))
		return nil, err
	}

	retained := sc.filterGroups(groups)
	sc.logger.Info("Fetched catalog groups",
		zap.Int("total", len(groups)),
		zap.Int("retained", len(retained)))

	var accumulated []models.ProductWithPrice
	fetched := 0
	for _, group := range retained {
		select {
		case <-time.After(sc.config.PacingDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		merged, err := sc.fetchGroup(ctx, group)
		if err != nil {
			sc.logger.Warn("Skipping group after fetch failure",
				zap.Int("group_id", group.GroupID),
				zap.String("group", group.Name),
				zap.Error(err))
			continue
		}
		accumulated = append(accumulated, merged...)
		fetched++
	}

	snap := &Snapshot{
		Products: accumulated,
		Index:    Build(accumulated, sc.indexConfig, sc.logger),
		Groups:   fetched,
		BuiltAt:  sc.now(),
	}

	sc.logger.Info("Catalog snapshot rebuilt",
		zap.Int("products", len(accumulated)),
		zap.Int("groups", fetched),
		zap.Duration("duration", sc.now().Sub(start)))

	return snap, nil
}

// filterGroups keeps groups published within the recency window, sorted most
// recently published first. The sort is stable so fetch order breaks ties.
func (sc *SnapshotController) filterGroups(groups []models.Group) []models.Group {
	cutoff := sc.now().Add(-sc.config.MaxGroupAge)

	retained := make([]models.Group, 0, len(groups))
	for _, g := range groups {
		if g.PublishedOn.After(cutoff) {
			retained = append(retained, g)
		}
	}

	sort.SliceStable(retained, func(i, j int) bool {
		return retained[i].PublishedOn.After(retained[j].PublishedOn.Time)
	})

	return retained
}

// fetchGroup fetches one group's products and prices concurrently with each
// other, waits for both, then joins prices to products by product id.
func (sc *SnapshotController) fetchGroup(ctx context.Context, group models.Group) ([]models.ProductWithPrice, error) {
	var (
		products []models.Product
		prices   []models.Price
	)
	errCh := make(chan error, 2)

	go func() {
		var err error
		products, err = sc.fetcher.FetchProducts(ctx, group.GroupID)
		errCh <- err
	}()
	go func() {
		var err error
		prices, err = sc.fetcher.FetchPrices(ctx, group.GroupID)
		errCh <- err
	}()

	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			// Drain the second goroutine before returning.
			if i == 0 {
				<-errCh
			}
			return nil, err
		}
	}

	byProduct := make(map[int][]models.Price, len(products))
	for _, p := range prices {
		byProduct[p.ProductID] = append(byProduct[p.ProductID], p)
	}

	merged := make([]models.ProductWithPrice, 0, len(products))
	matched := 0
	for _, product := range products {
		rows := byProduct[product.ProductID]
		if rows != nil {
			matched++
		}
		merged = append(merged, models.ProductWithPrice{
			Product:   product,
			Prices:    rows,
			GroupName: group.Name,
		})
	}

	if orphans := len(byProduct) - matched; orphans > 0 {
		// Price rows whose product id is absent from the product list are
		// dropped from the snapshot.
		sc.logger.Debug("Dropped orphan price rows",
			zap.Int("group_id", group.GroupID),
			zap.Int("orphans", orphans))
	}

	return merged, nil
}
