package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/crossover/rickmorty"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if workers > 0 {
			e.workerCount = workers
		}
	}
}

// WithBatchSize sets the chunk size below which evaluation stays sequential
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// ConcurrentEvaluator evaluates a filter over characters in parallel chunks,
// preserving input order
type ConcurrentEvaluator struct {
	workerCount int
	batchSize   int
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workerCount: runtime.GOMAXPROCS(0),
		batchSize:   100,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate returns the characters matching filter, in input order
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, chars []rickmorty.Character) ([]rickmorty.Character, error) {
	if len(chars) == 0 {
		return []rickmorty.Character{}, nil
	}

	if len(chars) < e.batchSize {
		return Apply(filter, chars), nil
	}

	chunkSize := max(len(chars)/e.workerCount, e.batchSize)
	chunks := (len(chars) + chunkSize - 1) / chunkSize
	results := make([][]rickmorty.Character, chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerCount)

	for i := range chunks {
		start := i * chunkSize
		end := min(start+chunkSize, len(chars))

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Apply(filter, chars[start:end])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	matches := make([]rickmorty.Character, 0, total)
	for _, r := range results {
		matches = append(matches, r...)
	}
	return matches, nil
}

// Apply returns the characters matching filter, in input order. A nil filter matches everything.
func Apply(filter Filter, chars []rickmorty.Character) []rickmorty.Character {
	if filter == nil {
		out := make([]rickmorty.Character, len(chars))
		copy(out, chars)
		return out
	}

	matches := make([]rickmorty.Character, 0, len(chars))
	for _, ch := range chars {
		if filter.Evaluate(ch) {
			matches = append(matches, ch)
		}
	}
	return matches
}
