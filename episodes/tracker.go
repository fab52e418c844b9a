package episodes

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/crossover/rickmorty"
)

// Snapshot is the read model exposed to presentation code
type Snapshot struct {
	Filters Filters
	Loading bool
	Err     error
	HasAny  bool
	HasBoth bool
}

// Tracker keeps the latest Filters for the current pair of characters.
// Results from an Update that has been superseded by a newer one are dropped.
type Tracker struct {
	reconciler *Reconciler
	logger     zerolog.Logger

	mu         sync.RWMutex
	generation uint64
	filters    Filters
	loading    bool
	err        error
	hasFirst   bool
	hasSecond  bool
}

// NewTracker creates a tracker with empty filters
func NewTracker(reconciler *Reconciler, logger zerolog.Logger) *Tracker {
	return &Tracker{
		reconciler: reconciler,
		logger:     logger,
		filters:    Empty(),
	}
}

// Update recomputes the filters for a and b. On failure the previous filters
// are replaced with empty ones and the error is kept for Snapshot.
func (t *Tracker) Update(ctx context.Context, a, b *rickmorty.Character) error {
	t.mu.Lock()
	t.generation++
	gen := t.generation
	t.loading = true
	t.err = nil
	t.hasFirst = a != nil
	t.hasSecond = b != nil
	t.mu.Unlock()

	filters, err := t.reconciler.Reconcile(ctx, a, b)

	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.generation {
		t.logger.Debug().Uint64("generation", gen).Msg("Discarding superseded episode filters")
		return nil
	}

	t.loading = false
	if err != nil {
		t.filters = Empty()
		t.err = err
		return err
	}
	t.filters = filters
	return nil
}

// Snapshot returns the current read model
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return Snapshot{
		Filters: t.filters,
		Loading: t.loading,
		Err:     t.err,
		HasAny:  t.hasFirst || t.hasSecond,
		HasBoth: t.hasFirst && t.hasSecond,
	}
}
