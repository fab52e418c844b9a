package format

import (
	"fmt"
	"strings"

	"github.com/s0up4200/crossover/episodes"
	"github.com/s0up4200/crossover/pagination"
	"github.com/s0up4200/crossover/rickmorty"
)

const (
	branch     = "├"
	lastBranch = "╰"
	dash       = "──"
	pipe       = "│"
)

// Options controls how much detail is printed
type Options struct {
	ShowDetails  bool
	ShowEpisodes bool
}

// ConsoleFormatter renders characters and episodes as console trees
type ConsoleFormatter struct {
	opts Options
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(opts Options) *ConsoleFormatter {
	return &ConsoleFormatter{opts: opts}
}

// FormatCharacterPage formats one client-facing page of characters
func (f *ConsoleFormatter) FormatCharacterPage(view pagination.View) string {
	switch {
	case view.State == pagination.StateError:
		return fmt.Sprintf("%s. Press r to retry.\n", view.Error)
	case view.State == pagination.StateLoading:
		return "Loading characters...\n"
	case len(view.Characters) == 0:
		return "No characters found\n"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "\nCharacters (page %d of %d, %d total)", view.CurrentPage, view.TotalPages, view.TotalCount)
	if desc := describeFilter(view.Filter); desc != "" {
		fmt.Fprintf(&sb, " [%s]", desc)
	}
	sb.WriteString(":\n\n")

	for i, ch := range view.Characters {
		isLast := i == len(view.Characters)-1
		f.writeCharacter(&sb, ch, isLast)
		if !isLast {
			sb.WriteString(pipe + "\n")
		}
	}

	sb.WriteString("\n")
	var nav []string
	if view.CanGoPrevious {
		nav = append(nav, "p: previous")
	}
	if view.CanGoNext {
		nav = append(nav, "n: next")
	}
	if len(nav) > 0 {
		fmt.Fprintf(&sb, "%s\n", strings.Join(nav, " | "))
	}

	return sb.String()
}

// FormatCharacters formats a plain list of characters
func (f *ConsoleFormatter) FormatCharacters(chars []rickmorty.Character) string {
	if len(chars) == 0 {
		return "No characters found\n"
	}

	var sb strings.Builder
	sb.WriteString("\nCharacter")
	if len(chars) != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " (%d):\n\n", len(chars))

	for i, ch := range chars {
		isLast := i == len(chars)-1
		f.writeCharacter(&sb, ch, isLast)
		if !isLast {
			sb.WriteString(pipe + "\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatCharacter formats a single character with all of its details
func (f *ConsoleFormatter) FormatCharacter(ch rickmorty.Character) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "#%d %s\n", ch.ID, ch.Name)
	fmt.Fprintf(&sb, "  Status:   %s\n", ch.Status)
	fmt.Fprintf(&sb, "  Species:  %s\n", speciesLine(ch))
	if ch.Gender != "" {
		fmt.Fprintf(&sb, "  Gender:   %s\n", ch.Gender)
	}
	if ch.Origin.Name != "" {
		fmt.Fprintf(&sb, "  Origin:   %s\n", ch.Origin.Name)
	}
	if ch.Location.Name != "" {
		fmt.Fprintf(&sb, "  Location: %s\n", ch.Location.Name)
	}
	fmt.Fprintf(&sb, "  Episodes: %d\n", len(ch.Episode))

	return sb.String()
}

// FormatEpisodes formats a titled episode list
func (f *ConsoleFormatter) FormatEpisodes(title string, eps []rickmorty.Episode) string {
	var sb strings.Builder
	f.writeEpisodes(&sb, title, eps)
	return sb.String()
}

// FormatEpisodeCast formats an episode with the characters appearing in it
func (f *ConsoleFormatter) FormatEpisodeCast(ep rickmorty.Episode, cast []rickmorty.Character) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s %s", ep.Code, ep.Name)
	if ep.AirDate != "" {
		fmt.Fprintf(&sb, " (%s)", ep.AirDate)
	}
	fmt.Fprintf(&sb, "\nCast (%d):\n", len(cast))

	for i, ch := range cast {
		prefix := branch
		if i == len(cast)-1 {
			prefix = lastBranch
		}
		fmt.Fprintf(&sb, "%s%s %s [%s]\n", prefix, dash, ch.Name, ch.Status)
	}

	return sb.String()
}

// FormatComparison formats the episode partition of two characters. Either may be nil.
func (f *ConsoleFormatter) FormatComparison(a, b *rickmorty.Character, filters episodes.Filters) string {
	if a == nil && b == nil {
		return "No characters selected\n"
	}

	var sb strings.Builder

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Character #1: %s\n", nameOrEmpty(a))
	fmt.Fprintf(&sb, "Character #2: %s\n", nameOrEmpty(b))

	if a != nil {
		f.writeEpisodes(&sb, fmt.Sprintf("Only %s", a.Name), filters.FirstOnly)
	}
	if a != nil && b != nil {
		f.writeEpisodes(&sb, "Shared", filters.Shared)
	}
	if b != nil {
		f.writeEpisodes(&sb, fmt.Sprintf("Only %s", b.Name), filters.SecondOnly)
	}

	return sb.String()
}

func (f *ConsoleFormatter) writeCharacter(sb *strings.Builder, ch rickmorty.Character, isLast bool) {
	prefix := branch
	indent := pipe + "   "
	if isLast {
		prefix = lastBranch
		indent = "    "
	}

	fmt.Fprintf(sb, "%s%s #%d %s [%s]\n", prefix, dash, ch.ID, ch.Name, ch.Status)

	if !f.opts.ShowDetails {
		return
	}

	fmt.Fprintf(sb, "%s%s\n", indent, speciesLine(ch))
	if ch.Location.Name != "" {
		fmt.Fprintf(sb, "%sLast seen: %s\n", indent, ch.Location.Name)
	}
	if f.opts.ShowEpisodes {
		fmt.Fprintf(sb, "%sEpisodes: %d\n", indent, len(ch.Episode))
	}
}

func (f *ConsoleFormatter) writeEpisodes(sb *strings.Builder, title string, eps []rickmorty.Episode) {
	fmt.Fprintf(sb, "\n%s (%d):\n", title, len(eps))
	if len(eps) == 0 {
		fmt.Fprintf(sb, "%s%s none\n", lastBranch, dash)
		return
	}

	for i, ep := range eps {
		prefix := branch
		if i == len(eps)-1 {
			prefix = lastBranch
		}
		fmt.Fprintf(sb, "%s%s %s %s", prefix, dash, ep.Code, ep.Name)
		if f.opts.ShowDetails && ep.AirDate != "" {
			fmt.Fprintf(sb, " (%s)", ep.AirDate)
		}
		sb.WriteString("\n")
	}
}

func speciesLine(ch rickmorty.Character) string {
	if ch.Type != "" {
		return fmt.Sprintf("%s (%s)", ch.Species, ch.Type)
	}
	return ch.Species
}

func nameOrEmpty(c *rickmorty.Character) string {
	if c == nil {
		return "(empty)"
	}
	return fmt.Sprintf("%s (#%d)", c.Name, c.ID)
}

func describeFilter(f rickmorty.CharacterFilter) string {
	var parts []string
	if f.Name != "" {
		parts = append(parts, fmt.Sprintf("name=%q", f.Name))
	}
	if f.Status != "" {
		parts = append(parts, "status="+f.Status.QueryValue())
	}
	return strings.Join(parts, ", ")
}
