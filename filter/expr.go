package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/crossover/rickmorty"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	custom     map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.custom, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		custom: make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type exprCompiler struct {
	custom map[string]any
	cache  *lruCache[CompiledFilter]
}

// Compile compiles an expression into an executable filter. Shorthand
// expressions such as `status:alive species:"Human"` are rewritten first.
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	source := expression
	if IsShorthand(expression) {
		converted, err := ConvertShorthand(expression)
		if err != nil {
			return nil, &CompilationError{
				Expression: expression,
				Reason:     "invalid shorthand",
				Err:        err,
			}
		}
		source = converted
	}

	// a zero character gives the checker the type of every field and helper
	env := createRuntimeEnvironment(rickmorty.Character{}, c.custom)

	program, err := expr.Compile(source,
		expr.Env(env),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		custom:     c.custom,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate evaluates the filter against a character. Runtime errors count as no match.
func (f *exprFilter) Evaluate(ch rickmorty.Character) bool {
	ok, err := f.Run(ch)
	return err == nil && ok
}

// Run evaluates the filter and reports runtime errors
func (f *exprFilter) Run(ch rickmorty.Character) (bool, error) {
	result, err := expr.Run(f.program, createRuntimeEnvironment(ch, f.custom))
	if err != nil {
		return false, &EvaluationError{
			Expression:    f.expression,
			CharacterName: ch.Name,
			Err:           err,
		}
	}
	matched, ok := result.(bool)
	if !ok {
		return false, &EvaluationError{
			Expression:    f.expression,
			CharacterName: ch.Name,
			Err:           fmt.Errorf("expression returned %T, not bool", result),
		}
	}
	return matched, nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

func addHelperFunctions(env map[string]any) {
	env["contains"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWith"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	env["endsWith"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	env["lower"] = strings.ToLower
	env["upper"] = strings.ToUpper
	env["daysSince"] = func(t time.Time) int {
		return int(time.Since(t).Hours() / 24)
	}
	env["now"] = time.Now
}

func createRuntimeEnvironment(ch rickmorty.Character, custom map[string]any) map[string]any {
	env := make(map[string]any, 32)

	addHelperFunctions(env)
	maps.Copy(env, custom)

	env["Character"] = ch

	episodeIDs := ch.EpisodeIDs()
	env["inEpisode"] = func(id int) bool {
		return slices.Contains(episodeIDs, id)
	}
	env["isAlive"] = func() bool { return ch.Status == rickmorty.StatusAlive }
	env["isDead"] = func() bool { return ch.Status == rickmorty.StatusDead }

	env["ID"] = ch.ID
	env["Name"] = ch.Name
	env["Status"] = string(ch.Status)
	env["Species"] = ch.Species
	env["Type"] = ch.Type
	env["Gender"] = ch.Gender
	env["Origin"] = ch.Origin.Name
	env["Location"] = ch.Location.Name
	env["EpisodeCount"] = len(ch.Episode)
	env["Created"] = ch.Created

	return env
}
