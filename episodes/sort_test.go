package episodes

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/s0up4200/crossover/rickmorty"
)

func withCodes(codes ...string) []rickmorty.Episode {
	eps := make([]rickmorty.Episode, len(codes))
	for i, c := range codes {
		eps[i] = rickmorty.Episode{ID: i + 1, Code: c}
	}
	return eps
}

func codes(eps []rickmorty.Episode) []string {
	out := make([]string, len(eps))
	for i, ep := range eps {
		out[i] = ep.Code
	}
	return out
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		code    string
		season  int
		episode int
		ok      bool
	}{
		{"S01E01", 1, 1, true},
		{"S03E10", 3, 10, true},
		{"S10E02", 10, 2, true},
		{"xS2E7x", 2, 7, true},
		{"Special", 0, 0, false},
		{"S01", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			season, episode, ok := ParseCode(tt.code)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.season, season)
			assert.Equal(t, tt.episode, episode)
		})
	}
}

func TestSort(t *testing.T) {
	in := withCodes("S02E01", "S01E02", "S01E01", "S02E02")

	got := Sort(in)
	assert.Equal(t, []string{"S01E01", "S01E02", "S02E01", "S02E02"}, codes(got))

	// input is not modified
	assert.Equal(t, []string{"S02E01", "S01E02", "S01E01", "S02E02"}, codes(in))
}

func TestSortNumericNotLexical(t *testing.T) {
	got := Sort(withCodes("S01E10", "S01E09", "S10E01", "S02E01"))
	assert.Equal(t, []string{"S01E09", "S01E10", "S02E01", "S10E01"}, codes(got))
}

func TestSortIsStable(t *testing.T) {
	in := withCodes("S01E02", "S01E01", "S01E02", "S01E01")

	got := Sort(in)
	assert.Equal(t, []string{"S01E01", "S01E01", "S01E02", "S01E02"}, codes(got))
	assert.Equal(t, []int{2, 4, 1, 3}, episodeIDs(got))
}

func TestSortIsIdempotent(t *testing.T) {
	once := Sort(withCodes("S03E01", "S01E05", "S02E02", "S01E01", "S03E01"))
	twice := Sort(once)
	assert.Equal(t, once, twice)
}

func TestSortIsIdempotentWithMixedCodes(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 62))

	for trial := range 500 {
		n := 21 + r.IntN(60)
		in := make([]string, n)
		for i := range in {
			if r.IntN(8) == 0 {
				in[i] = fmt.Sprintf("Special %d", i)
				continue
			}
			in[i] = fmt.Sprintf("S%02dE%02d", 1+r.IntN(5), 1+r.IntN(10))
		}

		once := Sort(withCodes(in...))
		twice := Sort(once)
		if !assert.Equal(t, codes(once), codes(twice), "trial %d", trial) {
			return
		}
		assert.Equal(t, episodeIDs(once), episodeIDs(twice), "trial %d", trial)
	}
}

func TestSortUnparseableCodesKeepTheirIndex(t *testing.T) {
	got := Sort(withCodes("S02E01", "Special", "S01E03", "Finale", "S01E01"))
	assert.Equal(t, []string{"S01E01", "Special", "S01E03", "Finale", "S02E01"}, codes(got))
}

func TestSortKeepsUnparseableCodes(t *testing.T) {
	got := Sort(withCodes("Special", "S02E01", "S01E01"))

	assert.Len(t, got, 3)
	assert.Equal(t, []string{"Special", "S01E01", "S02E01"}, codes(got))

	allBad := withCodes("Pilot", "Special", "Finale")
	assert.Equal(t, codes(allBad), codes(Sort(allBad)))
}

func TestSortEmpty(t *testing.T) {
	assert.Empty(t, Sort(nil))
	assert.NotNil(t, Sort(nil))
}

func TestFiltersSorted(t *testing.T) {
	f := Filters{
		FirstOnly:  withCodes("S02E01", "S01E01"),
		Shared:     withCodes("S03E03"),
		SecondOnly: nil,
	}

	sorted := f.Sorted()
	assert.Equal(t, []string{"S01E01", "S02E01"}, codes(sorted.FirstOnly))
	assert.Equal(t, []string{"S03E03"}, codes(sorted.Shared))
	assert.Empty(t, sorted.SecondOnly)
}
