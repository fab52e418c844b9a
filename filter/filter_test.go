package filter

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/expr-lang/expr"

	"github.com/s0up4200/crossover/rickmorty"
)

func testCharacter() rickmorty.Character {
	return rickmorty.Character{
		ID:       1,
		Name:     "Rick Sanchez",
		Status:   rickmorty.StatusAlive,
		Species:  "Human",
		Gender:   "Male",
		Origin:   rickmorty.Location{Name: "Earth (C-137)"},
		Location: rickmorty.Location{Name: "Citadel of Ricks"},
		Episode: []string{
			"https://rickandmortyapi.com/api/episode/1",
			"https://rickandmortyapi.com/api/episode/2",
			"https://rickandmortyapi.com/api/episode/28",
		},
	}
}

var testCompiler = NewExprCompiler(WithCache(100))

func generateTestCharacters(n int) []rickmorty.Character {
	species := []string{"Human", "Alien", "Robot"}
	statuses := []rickmorty.Status{rickmorty.StatusAlive, rickmorty.StatusDead, rickmorty.StatusUnknown}

	chars := make([]rickmorty.Character, n)
	for i := range chars {
		eps := make([]string, i%7)
		for j := range eps {
			eps[j] = fmt.Sprintf("https://rickandmortyapi.com/api/episode/%d", j+1)
		}
		chars[i] = rickmorty.Character{
			ID:      i + 1,
			Name:    fmt.Sprintf("Character %d", i+1),
			Species: species[i%len(species)],
			Status:  statuses[i%len(statuses)],
			Episode: eps,
		}
	}
	return chars
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `contains(Name, "rick")`,
		},
		{
			name:        "empty expression",
			expression:  "  ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `contains(Name, "unclosed`,
			wantErr:    true,
		},
		{
			name:        "non-boolean result",
			expression:  `Name`,
			wantErr:     true,
			errContains: "failed to compile expression",
		},
		{
			name:        "undefined identifier",
			expression:  `Nickname`,
			wantErr:     true,
			errContains: "failed to compile expression",
		},
		{
			name:        "undefined identifier in comparison",
			expression:  `Nickname == "Pickle Rick"`,
			wantErr:     true,
			errContains: "failed to compile expression",
		},
		{
			name:       "shorthand",
			expression: `status:alive AND species:"Human"`,
		},
		{
			name:        "invalid shorthand",
			expression:  `episode:pilot`,
			wantErr:     true,
			errContains: "invalid shorthand",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := testCompiler.Compile(tt.expression)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error but got none")
				}
				var cerr *CompilationError
				if !errors.As(err, &cerr) {
					t.Errorf("expected *CompilationError, got %T", err)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if filter == nil {
				t.Fatal("expected filter but got nil")
			}
		})
	}
}

func TestFilterEvaluation(t *testing.T) {
	ch := testCharacter()

	tests := []struct {
		name       string
		expression string
		expected   bool
	}{
		{"species equality", `Species == "Human"`, true},
		{"case-insensitive contains", `contains(Name, "RICK")`, true},
		{"starts with", `startsWith(Name, "rick")`, true},
		{"ends with", `endsWith(Name, "smith")`, false},
		{"status helper", `isAlive() and not isDead()`, true},
		{"episode count", `EpisodeCount == 3`, true},
		{"in episode", `inEpisode(28)`, true},
		{"not in episode", `inEpisode(29)`, false},
		{"origin", `contains(Origin, "earth")`, true},
		{"nested record", `Character.Location.Name == "Citadel of Ricks"`, true},
		{"lower", `lower(Gender) == "male"`, true},
		{"shorthand", `name:"sanchez" AND status!:dead`, true},
		{"shorthand count", `episodes:>=4`, false},
		{"shorthand episode", `episode:1 OR episode:99`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := testCompiler.Compile(tt.expression)
			if err != nil {
				t.Fatalf("failed to compile filter: %v", err)
			}

			if result := filter.Evaluate(ch); result != tt.expected {
				t.Errorf("expected %v but got %v for expression %q", tt.expected, result, tt.expression)
			}
		})
	}
}

func TestManagerApplyUndefinedIdentifier(t *testing.T) {
	manager := NewManager()
	chars := []rickmorty.Character{{ID: 1, Name: "Rick"}}

	_, err := manager.Apply(context.Background(), "Nickname", chars)
	var cerr *CompilationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *CompilationError, got %v", err)
	}
}

func TestRunNonBooleanResult(t *testing.T) {
	env := createRuntimeEnvironment(rickmorty.Character{}, nil)
	program, err := expr.Compile(`Name`, expr.Env(env))
	if err != nil {
		t.Fatalf("failed to compile: %v", err)
	}

	f := &exprFilter{expression: `Name`, program: program}
	ch := testCharacter()

	matched, err := f.Run(ch)
	var everr *EvaluationError
	if !errors.As(err, &everr) {
		t.Fatalf("expected *EvaluationError, got %v", err)
	}
	if matched {
		t.Error("non-boolean result should not match")
	}
	if everr.CharacterName != ch.Name {
		t.Errorf("unexpected character name %q", everr.CharacterName)
	}
	if f.Evaluate(ch) {
		t.Error("Evaluate should treat a non-boolean result as no match")
	}
}

func TestCustomFunctions(t *testing.T) {
	compiler := NewExprCompiler(WithCustomFunctions(map[string]any{
		"isCitadel": func(location string) bool { return strings.Contains(location, "Citadel") },
	}))

	filter, err := compiler.Compile(`isCitadel(Location)`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}
	if !filter.Evaluate(testCharacter()) {
		t.Error("expected custom function to match")
	}
}

func TestConvertShorthand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`name:"rick" AND status!:dead`, `contains(Name, "rick") and not (lower(Status) == "dead")`},
		{`species:Alien OR gender:female`, `lower(Species) == "alien" or lower(Gender) == "female"`},
		{`episode:28`, `inEpisode(28)`},
		{`episodes:>=10`, `EpisodeCount >= 10`},
		{`episodes:3`, `EpisodeCount == 3`},
		{`NOT location:"Citadel of Ricks"`, `not contains(Location, "citadel of ricks")`},
		{``, ``},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ConvertShorthand(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := ConvertShorthand(`episode:pilot`); err == nil {
		t.Error("expected error for non-numeric episode id")
	}
}

func TestIsShorthand(t *testing.T) {
	if !IsShorthand(`status:alive`) {
		t.Error("expected status:alive to be shorthand")
	}
	if IsShorthand(`Status == "Alive"`) {
		t.Error("expected expr syntax not to be shorthand")
	}
}

func TestApply(t *testing.T) {
	chars := generateTestCharacters(30)

	filter, err := testCompiler.Compile(`Species == "Alien"`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	matches := Apply(filter, chars)
	if len(matches) != 10 {
		t.Fatalf("expected 10 matches but got %d", len(matches))
	}
	for i, ch := range matches {
		if ch.ID != 3*i+2 {
			t.Errorf("match %d: expected id %d, got %d", i, 3*i+2, ch.ID)
		}
	}

	if all := Apply(nil, chars); len(all) != len(chars) {
		t.Errorf("nil filter should match everything, got %d", len(all))
	}
}

func TestConcurrentEvaluation(t *testing.T) {
	chars := generateTestCharacters(1000)

	filter, err := testCompiler.Compile(`isAlive() and EpisodeCount > 2`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	evaluator := NewConcurrentEvaluator(WithWorkers(4), WithBatchSize(50))
	matches, err := evaluator.Evaluate(context.Background(), filter, chars)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	expected := Apply(filter, chars)
	if !reflect.DeepEqual(matches, expected) {
		t.Errorf("concurrent result differs from sequential: %d vs %d matches", len(matches), len(expected))
	}
}

func TestConcurrentEvaluationCancelled(t *testing.T) {
	chars := generateTestCharacters(1000)
	filter, err := testCompiler.Compile(`isAlive()`)
	if err != nil {
		t.Fatalf("failed to compile filter: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	evaluator := NewConcurrentEvaluator(WithWorkers(2), WithBatchSize(10))
	if _, err := evaluator.Evaluate(ctx, filter, chars); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFilterManager(t *testing.T) {
	manager := NewManager()
	ctx := context.Background()

	presets := map[string]string{
		"aliens":   `Species == "Alien"`,
		"living":   `status:alive`,
		"regulars": `EpisodeCount >= 5`,
	}
	if err := manager.RegisterPresets(presets); err != nil {
		t.Fatalf("failed to register presets: %v", err)
	}

	names := manager.Presets()
	if !reflect.DeepEqual(names, []string{"aliens", "living", "regulars"}) {
		t.Errorf("unexpected preset names %v", names)
	}

	chars := generateTestCharacters(60)
	matches, err := manager.ApplyPreset(ctx, "living", chars)
	if err != nil {
		t.Fatalf("failed to apply preset: %v", err)
	}
	if len(matches) != 20 {
		t.Errorf("expected 20 living characters, got %d", len(matches))
	}

	if _, err := manager.ApplyPreset(ctx, "missing", chars); !errors.Is(err, ErrPresetNotFound) {
		t.Errorf("expected ErrPresetNotFound, got %v", err)
	}

	adhoc, err := manager.Apply(ctx, `ID <= 3`, chars)
	if err != nil {
		t.Fatalf("failed to apply expression: %v", err)
	}
	if len(adhoc) != 3 {
		t.Errorf("expected 3 matches, got %d", len(adhoc))
	}
}

func TestRegisterPresetsAllOrNothing(t *testing.T) {
	manager := NewManager()

	err := manager.RegisterPresets(map[string]string{
		"good": `isAlive()`,
		"bad":  `contains(`,
	})
	if err == nil {
		t.Fatal("expected error for invalid preset")
	}
	if len(manager.Presets()) != 0 {
		t.Errorf("expected no presets registered, got %v", manager.Presets())
	}
}

func TestCacheEffectiveness(t *testing.T) {
	compiler := NewExprCompiler(WithCache(10))
	expression := `isAlive() and EpisodeCount > 2`

	first, err := compiler.Compile(expression)
	if err != nil {
		t.Fatalf("first compilation failed: %v", err)
	}
	second, err := compiler.Compile(expression)
	if err != nil {
		t.Fatalf("second compilation failed: %v", err)
	}
	if first != second {
		t.Error("expected cached filter to be reused")
	}

	if compiler.Size() != 1 {
		t.Errorf("expected cache size 1 but got %d", compiler.Size())
	}

	compiler.Clear()
	if compiler.Size() != 0 {
		t.Errorf("expected cache size 0 after clear but got %d", compiler.Size())
	}
}

func TestLRUEviction(t *testing.T) {
	cache := newLRUCache[int](2)
	cache.Put("a", 1)
	cache.Put("b", 2)

	if v, ok := cache.Get("a"); !ok || v != 1 {
		t.Fatalf("expected a=1, got %v %v", v, ok)
	}

	cache.Put("c", 3)
	if _, ok := cache.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := cache.Get("a"); !ok {
		t.Error("expected a to survive eviction")
	}

	hits, misses := cache.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %d and %d", hits, misses)
	}
}
