// Package pagination presents upstream character pages at an independent,
// client-facing page size.
//
// The upstream API pages at a size chosen by the server. A Paginator keeps an
// accumulating buffer of everything fetched so far and re-slices it:
//
//	p := pagination.New(api, 12, logger)
//	if err := p.Load(ctx, rickmorty.CharacterFilter{Status: rickmorty.StatusAlive}); err != nil {
//		// View().State is StateError and View().Error holds the user-facing message
//	}
//
//	_ = p.NextPage(ctx)
//	view := p.View()
//
// # Backfill
//
// After every change to the buffer or the current page the visible window is
// recomputed. When the window reaches the end of the buffer and upstream has
// more pages, the next upstream page is fetched and appended. The fetch runs
// inline only when the window is not yet covered by the buffer; otherwise it
// runs in the background and Wait can be used to observe its completion.
//
// # Error Handling
//
// A 404 for upstream page 1 means the filter matched nothing: the view is
// empty, TotalPages is 0 and no error is reported. A 404 while backfilling
// marks upstream as exhausted. Any other failure moves the paginator into
// StateError with FetchErrorMessage and leaves the buffer as it was; Retry
// starts again from upstream page 1.
//
// Responses that arrive after Load or Retry has started a newer fetch are
// discarded.
package pagination
