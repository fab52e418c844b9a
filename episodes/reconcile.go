package episodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/crossover/rickmorty"
)

// ErrReconcile is returned for any failure while computing Filters. The
// underlying fetch error is wrapped.
var ErrReconcile = errors.New("error filtering episodes")

// EpisodeSource fetches the episodes a character appears in
type EpisodeSource interface {
	GetEpisodesForCharacter(ctx context.Context, ch rickmorty.Character) ([]rickmorty.Episode, error)
}

// Filters partitions the episodes of two characters. No episode id appears in
// more than one sequence.
type Filters struct {
	FirstOnly  []rickmorty.Episode
	Shared     []rickmorty.Episode
	SecondOnly []rickmorty.Episode
}

// Empty returns a Filters with three empty, non-nil sequences
func Empty() Filters {
	return Filters{
		FirstOnly:  []rickmorty.Episode{},
		Shared:     []rickmorty.Episode{},
		SecondOnly: []rickmorty.Episode{},
	}
}

// Len returns the number of distinct episodes across all three sequences
func (f Filters) Len() int {
	return len(f.FirstOnly) + len(f.Shared) + len(f.SecondOnly)
}

// Sorted returns a copy with every sequence ordered by episode code
func (f Filters) Sorted() Filters {
	return Filters{
		FirstOnly:  Sort(f.FirstOnly),
		Shared:     Sort(f.Shared),
		SecondOnly: Sort(f.SecondOnly),
	}
}

// Reconciler computes episode partitions for up to two characters
type Reconciler struct {
	source EpisodeSource
	logger zerolog.Logger
}

// NewReconciler creates a reconciler on top of an episode source
func NewReconciler(source EpisodeSource, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		source: source,
		logger: logger.With().Str("component", "reconciler").Logger(),
	}
}

// Reconcile fetches the episodes of a and b and partitions them. Either
// character may be nil. Both episode lists are fetched concurrently and a
// failure of either fails the whole call with no partial result.
func (r *Reconciler) Reconcile(ctx context.Context, a, b *rickmorty.Character) (Filters, error) {
	switch {
	case a == nil && b == nil:
		return Empty(), nil
	case b == nil:
		eps, err := r.fetch(ctx, *a)
		if err != nil {
			return Filters{}, err
		}
		f := Empty()
		f.FirstOnly = eps
		return f, nil
	case a == nil:
		eps, err := r.fetch(ctx, *b)
		if err != nil {
			return Filters{}, err
		}
		f := Empty()
		f.SecondOnly = eps
		return f, nil
	}

	var first, second []rickmorty.Episode

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		eps, err := r.fetch(gctx, *a)
		first = eps
		return err
	})
	g.Go(func() error {
		eps, err := r.fetch(gctx, *b)
		second = eps
		return err
	})
	if err := g.Wait(); err != nil {
		return Filters{}, err
	}

	f := Partition(first, second)

	r.logger.Debug().
		Int("first", a.ID).
		Int("second", b.ID).
		Int("first_only", len(f.FirstOnly)).
		Int("shared", len(f.Shared)).
		Int("second_only", len(f.SecondOnly)).
		Msg("Reconciled episodes")

	return f, nil
}

func (r *Reconciler) fetch(ctx context.Context, ch rickmorty.Character) ([]rickmorty.Episode, error) {
	eps, err := r.source.GetEpisodesForCharacter(ctx, ch)
	if err != nil {
		r.logger.Error().Err(err).Int("character", ch.ID).Msg("Error fetching episodes")
		return nil, fmt.Errorf("%w: character %d: %w", ErrReconcile, ch.ID, err)
	}
	return dedupe(eps), nil
}

// Partition splits two episode lists into episodes only in first, episodes in
// both (in first's order) and episodes only in second. Each list is
// de-duplicated by id first, keeping the first occurrence.
func Partition(first, second []rickmorty.Episode) Filters {
	first, second = dedupe(first), dedupe(second)

	inFirst := make(map[int]struct{}, len(first))
	for _, ep := range first {
		inFirst[ep.ID] = struct{}{}
	}
	inSecond := make(map[int]struct{}, len(second))
	for _, ep := range second {
		inSecond[ep.ID] = struct{}{}
	}

	f := Empty()
	for _, ep := range first {
		if _, ok := inSecond[ep.ID]; ok {
			f.Shared = append(f.Shared, ep)
		} else {
			f.FirstOnly = append(f.FirstOnly, ep)
		}
	}
	for _, ep := range second {
		if _, ok := inFirst[ep.ID]; !ok {
			f.SecondOnly = append(f.SecondOnly, ep)
		}
	}
	return f
}

func dedupe(eps []rickmorty.Episode) []rickmorty.Episode {
	seen := make(map[int]struct{}, len(eps))
	out := make([]rickmorty.Episode, 0, len(eps))
	for _, ep := range eps {
		if _, ok := seen[ep.ID]; ok {
			continue
		}
		seen[ep.ID] = struct{}{}
		out = append(out, ep)
	}
	return out
}
