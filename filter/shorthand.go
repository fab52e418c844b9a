package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	shorthandDetect = regexp.MustCompile(`\b(name|status|species|type|gender|origin|location|episode|episodes)!?:`)

	// field(!?):"quoted value" or field(!?):bare
	shorthandTerm = regexp.MustCompile(`\b(name|status|species|type|gender|origin|location|episode)(!?):(?:"([^"]*)"|([^\s()"]+))`)

	// episodes:>N, episodes:<=N, episodes:N
	shorthandCount = regexp.MustCompile(`\bepisodes:(>=|<=|>|<|=)?(\d+)`)
)

// ConvertShorthand rewrites field:value shorthand into an expr expression.
//
//	name:"rick" AND status!:dead   ->  contains(Name, "rick") and not (lower(Status) == "dead")
//	episode:28                     ->  inEpisode(28)
//	episodes:>10                   ->  EpisodeCount > 10
func ConvertShorthand(shorthand string) (string, error) {
	if strings.TrimSpace(shorthand) == "" {
		return "", nil
	}

	out := strings.ReplaceAll(shorthand, " AND ", " and ")
	out = strings.ReplaceAll(out, " OR ", " or ")
	out = strings.ReplaceAll(out, "NOT ", "not ")

	out = shorthandCount.ReplaceAllStringFunc(out, func(match string) string {
		m := shorthandCount.FindStringSubmatch(match)
		op := m[1]
		switch op {
		case "":
			op = "=="
		case "=":
			op = "=="
		}
		return fmt.Sprintf("EpisodeCount %s %s", op, m[2])
	})

	var convErr error
	out = shorthandTerm.ReplaceAllStringFunc(out, func(match string) string {
		m := shorthandTerm.FindStringSubmatch(match)
		field, negate, value := m[1], m[2] == "!", m[3]
		if value == "" {
			value = m[4]
		}

		term, err := shorthandExpr(field, value)
		if err != nil && convErr == nil {
			convErr = err
		}
		if negate {
			return "not (" + term + ")"
		}
		return term
	})
	if convErr != nil {
		return "", convErr
	}

	return out, nil
}

func shorthandExpr(field, value string) (string, error) {
	quoted := strconv.Quote(strings.ToLower(value))

	switch field {
	case "name":
		return fmt.Sprintf("contains(Name, %s)", quoted), nil
	case "origin":
		return fmt.Sprintf("contains(Origin, %s)", quoted), nil
	case "location":
		return fmt.Sprintf("contains(Location, %s)", quoted), nil
	case "status":
		return fmt.Sprintf("lower(Status) == %s", quoted), nil
	case "species":
		return fmt.Sprintf("lower(Species) == %s", quoted), nil
	case "type":
		return fmt.Sprintf("lower(Type) == %s", quoted), nil
	case "gender":
		return fmt.Sprintf("lower(Gender) == %s", quoted), nil
	case "episode":
		id, err := strconv.Atoi(value)
		if err != nil {
			return "", fmt.Errorf("episode id must be a number, got %q", value)
		}
		return fmt.Sprintf("inEpisode(%d)", id), nil
	default:
		return "", fmt.Errorf("unknown field %q", field)
	}
}

// IsShorthand reports whether an expression uses field:value shorthand
func IsShorthand(expression string) bool {
	return shorthandDetect.MatchString(expression)
}
