package episodes

import (
	"regexp"
	"slices"
	"strconv"

	"github.com/s0up4200/crossover/rickmorty"
)

var codePattern = regexp.MustCompile(`S(\d+)E(\d+)`)

// ParseCode extracts the season and episode numbers from a code like "S01E02"
func ParseCode(code string) (season, episode int, ok bool) {
	m := codePattern.FindStringSubmatch(code)
	if m == nil {
		return 0, 0, false
	}

	season, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	episode, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return season, episode, true
}

// Compare orders two episodes by season, then by episode within the season.
// A pair where either code does not parse compares equal.
func Compare(a, b rickmorty.Episode) int {
	as, ae, aok := ParseCode(a.Code)
	bs, be, bok := ParseCode(b.Code)
	if !aok || !bok {
		return 0
	}
	if as != bs {
		return as - bs
	}
	return ae - be
}

// Sort returns a copy of eps ordered by Compare. Equal elements keep their
// input order. Episodes whose code does not parse keep their index and are
// never dropped; the parseable ones are ordered around them.
func Sort(eps []rickmorty.Episode) []rickmorty.Episode {
	out := slices.Clone(eps)
	if out == nil {
		return []rickmorty.Episode{}
	}

	type keyed struct {
		season, episode int
		ep              rickmorty.Episode
	}

	var positions []int
	var parsed []keyed
	for i, ep := range out {
		if season, episode, ok := ParseCode(ep.Code); ok {
			positions = append(positions, i)
			parsed = append(parsed, keyed{season: season, episode: episode, ep: ep})
		}
	}

	slices.SortStableFunc(parsed, func(a, b keyed) int {
		if a.season != b.season {
			return a.season - b.season
		}
		return a.episode - b.episode
	})

	for i, pos := range positions {
		out[pos] = parsed[i].ep
	}
	return out
}
