// Package episodes compares the episode lists of two characters.
//
// A Reconciler fetches each selected character's episodes, de-duplicates
// them by id and partitions them into three disjoint sequences: episodes only
// the first character appears in, episodes both appear in, and episodes only
// the second appears in.
//
//	r := episodes.NewReconciler(api, logger)
//	filters, err := r.Reconcile(ctx, &rick, &morty)
//	if errors.Is(err, episodes.ErrReconcile) {
//		// no partial result is returned
//	}
//	shared := episodes.Sort(filters.Shared)
//
// Sort orders episodes by the season and episode numbers in their code
// ("S01E02"). It is stable, and codes that do not match keep their position
// relative to the input.
//
// Tracker wraps a Reconciler as a read model that is recomputed whenever the
// selection changes; a result from a superseded Update never overwrites a
// newer one.
package episodes
