package pagination

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/s0up4200/crossover/httpclient"
	"github.com/s0up4200/crossover/rickmorty"
)

// DefaultPageSize is the client-facing page size used when none is configured
const DefaultPageSize = 12

// FetchErrorMessage is the user-facing message for any non-404 listing failure
const FetchErrorMessage = "Failed to fetch characters"

// State is the lifecycle state of a Paginator
type State int

const (
	StateLoading State = iota
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// PageSource fetches one upstream page of characters
type PageSource interface {
	GetCharacters(ctx context.Context, page int, filter rickmorty.CharacterFilter) (*rickmorty.CharacterPage, error)
}

// View is a read-only snapshot of the paginator
type View struct {
	Characters    []rickmorty.Character
	CurrentPage   int
	TotalPages    int
	TotalCount    int
	State         State
	Error         string
	Filter        rickmorty.CharacterFilter
	CanGoNext     bool
	CanGoPrevious bool
}

// Paginator re-slices an accumulating buffer of upstream pages into a
// client-facing page size, fetching further upstream pages as the visible
// window reaches the end of the buffer.
type Paginator struct {
	source   PageSource
	pageSize int
	logger   zerolog.Logger

	mu          sync.Mutex
	generation  uint64
	filter      rickmorty.CharacterFilter
	buffer      []rickmorty.Character
	visible     []rickmorty.Character
	currentPage int
	totalPages  int
	totalCount  int
	countKnown  bool
	cursor      int
	apiPages    int
	inFlight    bool
	fetchDone   chan struct{}
	bgDone      chan struct{}
	state       State
	errMsg      string
	lastErr     error
}

// New creates a paginator in the loading state. A non-positive page size
// falls back to DefaultPageSize.
func New(source PageSource, pageSize int, logger zerolog.Logger) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Paginator{
		source:      source,
		pageSize:    pageSize,
		logger:      logger.With().Str("component", "paginator").Logger(),
		currentPage: 1,
		state:       StateLoading,
	}
}

// PageSize returns the client-facing page size
func (p *Paginator) PageSize() int {
	return p.pageSize
}

// Load resets the buffer for the given filter and fetches upstream page 1.
// Any response still in flight for a previous filter is discarded when it lands.
func (p *Paginator) Load(ctx context.Context, filter rickmorty.CharacterFilter) error {
	return p.restart(ctx, filter)
}

// Retry discards the buffer and cursor and refetches upstream page 1 with the
// last filter.
func (p *Paginator) Retry(ctx context.Context) error {
	p.mu.Lock()
	filter := p.filter
	p.mu.Unlock()
	return p.restart(ctx, filter)
}

// NextPage advances one page if a next page exists. It blocks on an upstream
// fetch only when the new page has no buffered data yet.
func (p *Paginator) NextPage(ctx context.Context) error {
	p.mu.Lock()
	if p.currentPage >= p.totalPages {
		p.mu.Unlock()
		return nil
	}
	p.currentPage++
	p.mu.Unlock()

	return p.settle(ctx)
}

// PreviousPage moves back one page if the current page is not the first
func (p *Paginator) PreviousPage() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.currentPage <= 1 {
		return
	}
	p.currentPage--
	p.reconcile()
}

// Wait blocks until background backfills have completed
func (p *Paginator) Wait() {
	for {
		p.mu.Lock()
		done := p.bgDone
		p.mu.Unlock()
		if done == nil {
			return
		}
		<-done
	}
}

// Err returns the cause of the last failed fetch, if the paginator is in the error state
func (p *Paginator) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateError {
		return nil
	}
	return p.lastErr
}

// View returns a snapshot of the current page
func (p *Paginator) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	chars := make([]rickmorty.Character, len(p.visible))
	copy(chars, p.visible)

	return View{
		Characters:    chars,
		CurrentPage:   p.currentPage,
		TotalPages:    p.totalPages,
		TotalCount:    p.totalCount,
		State:         p.state,
		Error:         p.errMsg,
		Filter:        p.filter,
		CanGoNext:     p.currentPage < p.totalPages,
		CanGoPrevious: p.currentPage > 1,
	}
}

func (p *Paginator) restart(ctx context.Context, filter rickmorty.CharacterFilter) error {
	p.mu.Lock()
	p.generation++
	gen := p.generation
	p.filter = filter
	p.buffer = nil
	p.visible = nil
	p.currentPage = 1
	p.totalPages = 0
	p.totalCount = 0
	p.countKnown = false
	p.cursor = 1
	p.apiPages = 0
	done := p.startFetch()
	p.state = StateLoading
	p.errMsg = ""
	p.lastErr = nil
	p.mu.Unlock()

	resp, err := p.source.GetCharacters(ctx, 1, filter)

	p.mu.Lock()
	p.finishFetch(done)
	if gen != p.generation {
		p.mu.Unlock()
		p.logger.Debug().Uint64("generation", gen).Msg("Discarding stale listing response")
		return nil
	}
	p.inFlight = false

	if err != nil {
		if isNotFound(err) {
			p.logger.Debug().Str("name", filter.Name).Str("status", string(filter.Status)).Msg("No characters match filter")
			p.buffer = nil
			p.countKnown = true
			p.state = StateReady
			p.reconcile()
			p.mu.Unlock()
			return nil
		}
		p.fail(err)
		p.mu.Unlock()
		return err
	}

	p.buffer = append([]rickmorty.Character(nil), resp.Results...)
	p.absorbInfo(resp.Info)
	p.state = StateReady
	p.mu.Unlock()

	return p.settle(ctx)
}

// settle recomputes the window and runs any backfill that is due. Backfills
// for a window that is not covered by the buffer run inline; the rest run in
// the background.
func (p *Paginator) settle(ctx context.Context) error {
	for {
		p.mu.Lock()
		due, blocking := p.reconcile()
		if !due {
			p.mu.Unlock()
			return nil
		}
		if p.inFlight {
			pending := p.fetchDone
			p.mu.Unlock()
			if !blocking || pending == nil {
				return nil
			}
			select {
			case <-pending:
			case <-ctx.Done():
				return ctx.Err()
			}

			p.mu.Lock()
			busy := p.inFlight
			p.mu.Unlock()
			if busy {
				// a reload owns the buffer now
				return nil
			}
			continue
		}

		gen := p.generation
		page := p.cursor + 1
		filter := p.filter
		done := p.startFetch()

		if !blocking {
			p.bgDone = done
			p.mu.Unlock()
			go func() {
				_ = p.backfill(ctx, gen, page, filter, done)
			}()
			return nil
		}
		p.mu.Unlock()

		if err := p.backfill(ctx, gen, page, filter, done); err != nil {
			return err
		}
	}
}

func (p *Paginator) backfill(ctx context.Context, gen uint64, page int, filter rickmorty.CharacterFilter, done chan struct{}) error {
	p.logger.Debug().Int("upstream_page", page).Msg("Backfilling buffer")

	resp, err := p.source.GetCharacters(ctx, page, filter)

	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.finishFetch(done)

	if gen != p.generation {
		p.logger.Debug().Int("upstream_page", page).Uint64("generation", gen).Msg("Discarding stale backfill response")
		return nil
	}
	p.inFlight = false

	if err != nil {
		if isNotFound(err) {
			p.logger.Debug().Int("upstream_page", page).Msg("Upstream exhausted")
			p.apiPages = p.cursor
			p.totalCount = len(p.buffer)
			p.reconcile()
			return nil
		}
		p.fail(err)
		return err
	}

	p.buffer = append(p.buffer, resp.Results...)
	p.cursor = page
	p.absorbInfo(resp.Info)
	p.state = StateReady
	p.errMsg = ""
	p.lastErr = nil
	p.reconcile()
	return nil
}

// reconcile recomputes the visible slice and total pages from the buffer and
// current page. It reports whether a backfill is due and whether the visible
// window is missing data. Must be called with mu held.
func (p *Paginator) reconcile() (due bool, blocking bool) {
	if p.countKnown {
		p.totalPages = ceilDiv(p.totalCount, p.pageSize)
	} else {
		p.totalPages = ceilDiv(len(p.buffer), p.pageSize)
	}

	if p.currentPage < 1 {
		p.currentPage = 1
	}
	if p.totalPages > 0 && p.currentPage > p.totalPages {
		p.currentPage = p.totalPages
	}

	start := (p.currentPage - 1) * p.pageSize
	end := start + p.pageSize

	lo, hi := min(start, len(p.buffer)), min(end, len(p.buffer))
	p.visible = p.buffer[lo:hi]

	if p.state == StateError {
		return false, false
	}
	due = end >= len(p.buffer) && p.cursor < p.apiPages
	return due, due && end > len(p.buffer)
}

// startFetch marks a fetch as in flight and returns the channel closed when it
// lands. Must be called with mu held.
func (p *Paginator) startFetch() chan struct{} {
	done := make(chan struct{})
	p.inFlight = true
	p.fetchDone = done
	return done
}

// finishFetch releases waiters on done. Must be called with mu held.
func (p *Paginator) finishFetch(done chan struct{}) {
	if p.fetchDone == done {
		p.fetchDone = nil
	}
	if p.bgDone == done {
		p.bgDone = nil
	}
	close(done)
}

func (p *Paginator) absorbInfo(info rickmorty.PageInfo) {
	p.apiPages = info.Pages
	p.totalCount = info.Count
	p.countKnown = true
}

func (p *Paginator) fail(err error) {
	p.logger.Error().Err(err).Msg("Error fetching characters")
	p.state = StateError
	p.errMsg = FetchErrorMessage
	p.lastErr = err
	p.reconcile()
}

func isNotFound(err error) bool {
	var herr *httpclient.Error
	return errors.As(err, &herr) && herr.IsNotFound()
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}
