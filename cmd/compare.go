package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/crossover/format"
	"github.com/s0up4200/crossover/rickmorty"
	"github.com/s0up4200/crossover/selection"
)

var compareDetails bool

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare <id> [id]",
	Short: "Compare the episodes of one or two characters",
	Long: `Select one or two characters by id and list their episodes.

With two characters the episodes are split into those only the first
appears in, those both appear in and those only the second appears in.
Each list is ordered by season and episode.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().BoolVar(&compareDetails, "details", false, "show air dates")
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ids := make([]int, len(args))
	for i, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid character id: %s", arg)
		}
		ids[i] = id
	}

	chars := make([]*rickmorty.Character, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			ch, err := api.GetCharacter(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to get character %d: %w", id, err)
			}
			chars[i] = ch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	formatter := format.NewConsoleFormatter(format.Options{ShowDetails: compareDetails})
	session := newComparison(ctx, api, formatter, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)

	if err := session.selection.SelectFirst(*chars[0]); err != nil {
		return err
	}
	if len(chars) > 1 {
		if err := session.selection.SelectSecond(*chars[1]); err != nil && !errors.Is(err, selection.ErrAlreadySelected) {
			return err
		}
	}

	session.render()

	if err := session.tracker.Snapshot().Err; err != nil {
		return err
	}
	return nil
}
