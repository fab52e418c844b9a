package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/crossover/filter"
	"github.com/s0up4200/crossover/format"
	"github.com/s0up4200/crossover/pagination"
	"github.com/s0up4200/crossover/rickmorty"
	"github.com/s0up4200/crossover/selection"
)

var (
	charPage        int
	charName        string
	charStatus      string
	charWhere       string
	charPreset      string
	charInteractive bool
	charDetails     bool
)

// charactersCmd represents the characters command
var charactersCmd = &cobra.Command{
	Use:     "characters",
	Aliases: []string{"chars", "ls"},
	Short:   "List characters page by page",
	Long: `List characters from the Rick and Morty API.

Upstream pages are re-sliced into pages of pagination.items_per_page.
--name and --status are sent to the API, while --where and --preset narrow
the displayed page locally using a filter expression.

In interactive mode the following commands are read from stdin:
  n, p        next / previous page
  r           retry after a failed fetch
  a <id>      select character <id> as Character #1
  b <id>      select character <id> as Character #2
  x a|b       clear one slot, c clears both
  q           quit`,
	RunE: runCharacters,
}

func init() {
	rootCmd.AddCommand(charactersCmd)

	charactersCmd.Flags().IntVar(&charPage, "page", 1, "page to display")
	charactersCmd.Flags().StringVar(&charName, "name", "", "filter by name (substring, server side)")
	charactersCmd.Flags().StringVar(&charStatus, "status", "", "filter by status: alive, dead or unknown")
	charactersCmd.Flags().StringVarP(&charWhere, "where", "w", "", "filter expression applied to the displayed page")
	charactersCmd.Flags().StringVarP(&charPreset, "preset", "f", "", "use a filter preset from config")
	charactersCmd.Flags().BoolVarP(&charInteractive, "interactive", "i", false, "browse pages and select characters interactively")
	charactersCmd.Flags().BoolVar(&charDetails, "details", false, "show origin and episode count")
}

func runCharacters(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	status, err := rickmorty.ParseStatus(charStatus)
	if err != nil {
		return err
	}
	query := rickmorty.CharacterFilter{Name: charName, Status: status}

	narrow, err := resolvePageFilter()
	if err != nil {
		return err
	}

	pager := pagination.New(api, cfg.Pagination.ItemsPerPage, logger)
	formatter := format.NewConsoleFormatter(format.Options{ShowDetails: charDetails})
	out := cmd.OutOrStdout()

	if err := pager.Load(ctx, query); err != nil {
		logger.Error().Err(err).Msg("Failed to load characters")
	}

	for pager.View().CurrentPage < charPage && pager.View().CanGoNext {
		if err := pager.NextPage(ctx); err != nil {
			logger.Error().Err(err).Int("page", pager.View().CurrentPage).Msg("Failed to load page")
			break
		}
	}

	if !charInteractive {
		defer pager.Wait()
		if err := renderPage(ctx, out, formatter, pager.View(), narrow); err != nil {
			return err
		}
		if cause := pager.Err(); cause != nil {
			return fmt.Errorf("%s: %w", pagination.FetchErrorMessage, cause)
		}
		return nil
	}

	session := newComparison(ctx, api, formatter, out, cmd.ErrOrStderr(), logger)
	return browse(ctx, cmd.InOrStdin(), out, pager, session, formatter, narrow)
}

// browse runs the interactive page loop until q or end of input
func browse(ctx context.Context, in io.Reader, out io.Writer, pager *pagination.Paginator, session *comparison, formatter *format.ConsoleFormatter, narrow pageFilter) error {
	defer pager.Wait()

	if err := renderPage(ctx, out, formatter, pager.View(), narrow); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "q", "quit", "exit":
			return nil
		case "n", "next":
			if err := pager.NextPage(ctx); err != nil {
				logger.Debug().Err(err).Msg("Next page failed")
			}
		case "p", "prev", "previous":
			pager.PreviousPage()
		case "r", "retry":
			if err := pager.Retry(ctx); err != nil {
				logger.Debug().Err(err).Msg("Retry failed")
			}
		case "a", "b":
			if len(fields) < 2 {
				fmt.Fprintln(out, "Usage: a <id> | b <id>")
				continue
			}
			if err := selectCharacter(ctx, pager.View(), session, fields[0], fields[1]); err != nil {
				if !errors.Is(err, selection.ErrAlreadySelected) {
					fmt.Fprintf(out, "Error: %v\n", err)
				}
				continue
			}
			session.render()
			continue
		case "x":
			if len(fields) < 2 {
				fmt.Fprintln(out, "Usage: x a | x b")
				continue
			}
			switch strings.ToLower(fields[1]) {
			case "a", "1":
				session.selection.ClearFirst()
			case "b", "2":
				session.selection.ClearSecond()
			default:
				fmt.Fprintf(out, "Unknown slot: %s\n", fields[1])
				continue
			}
			session.render()
			continue
		case "c", "clear":
			session.selection.ClearAll()
			session.render()
			continue
		default:
			fmt.Fprintf(out, "Unknown command: %s\n", fields[0])
			continue
		}

		if err := renderPage(ctx, out, formatter, pager.View(), narrow); err != nil {
			return err
		}
	}
}

// selectCharacter resolves id against the visible page, falling back to the
// API, and places it in the requested slot
func selectCharacter(ctx context.Context, view pagination.View, session *comparison, slot, rawID string) error {
	id, err := strconv.Atoi(rawID)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid character id: %s", rawID)
	}

	var ch *rickmorty.Character
	for i := range view.Characters {
		if view.Characters[i].ID == id {
			ch = &view.Characters[i]
			break
		}
	}
	if ch == nil {
		ch, err = api.GetCharacter(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get character %d: %w", id, err)
		}
	}

	if slot == "a" {
		return session.selection.SelectFirst(*ch)
	}
	return session.selection.SelectSecond(*ch)
}

// pageFilter narrows a page locally with either an ad-hoc expression or a
// registered preset. The zero value matches everything.
type pageFilter struct {
	where  string
	preset string
}

func (f pageFilter) String() string {
	if f.preset != "" {
		return "preset:" + f.preset
	}
	return f.where
}

func (f pageFilter) apply(ctx context.Context, chars []rickmorty.Character) ([]rickmorty.Character, error) {
	switch {
	case f.preset != "":
		return filterManager.ApplyPreset(ctx, f.preset, chars)
	case f.where != "":
		return filterManager.Apply(ctx, f.where, chars)
	default:
		return chars, nil
	}
}

// renderPage narrows the visible page with narrow, if set, and prints it
func renderPage(ctx context.Context, out io.Writer, formatter *format.ConsoleFormatter, view pagination.View, narrow pageFilter) error {
	if narrow != (pageFilter{}) && view.State == pagination.StateReady && len(view.Characters) > 0 {
		matched, err := narrow.apply(ctx, view.Characters)
		if err != nil {
			return fmt.Errorf("failed to apply filter: %w", err)
		}
		logger.Debug().
			Stringer("filter", narrow).
			Int("matched", len(matched)).
			Int("page_size", len(view.Characters)).
			Msg("Filtered page")
		view.Characters = matched
	}

	fmt.Fprint(out, formatter.FormatCharacterPage(view))
	return nil
}

// resolvePageFilter picks the page filter from flags, --where taking priority
// over --preset. Both are checked before anything is fetched.
func resolvePageFilter() (pageFilter, error) {
	if charWhere != "" {
		if _, err := filterManager.Compile(charWhere); err != nil {
			return pageFilter{}, fmt.Errorf("invalid filter: %w", err)
		}
		return pageFilter{where: charWhere}, nil
	}

	if charPreset != "" {
		name := strings.ToLower(charPreset)
		if _, ok := filterManager.Preset(name); !ok {
			return pageFilter{}, fmt.Errorf("%w: %q (available: %s)", filter.ErrPresetNotFound, charPreset, strings.Join(filterManager.Presets(), ", "))
		}
		return pageFilter{preset: name}, nil
	}

	return pageFilter{}, nil
}
