package filter

import (
	"context"

	"github.com/s0up4200/crossover/rickmorty"
)

// Filter defines the basic interface for character filters
type Filter interface {
	// Evaluate checks if a character matches the filter criteria
	Evaluate(ch rickmorty.Character) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the expression the filter was compiled from
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// Evaluator evaluates filters against characters
type Evaluator interface {
	// Evaluate returns the characters matching filter, in input order
	Evaluate(ctx context.Context, filter CompiledFilter, chars []rickmorty.Character) ([]rickmorty.Character, error)
}
