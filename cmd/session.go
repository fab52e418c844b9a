package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/s0up4200/crossover/episodes"
	"github.com/s0up4200/crossover/format"
	"github.com/s0up4200/crossover/rickmorty"
	"github.com/s0up4200/crossover/selection"
)

// comparison ties a two-slot selection to the episode tracker so that every
// applied change recomputes and prints the episode partition
type comparison struct {
	selection *selection.Selection
	tracker   *episodes.Tracker
	formatter *format.ConsoleFormatter
	out       io.Writer
	logger    zerolog.Logger
}

func newComparison(ctx context.Context, source episodes.EpisodeSource, formatter *format.ConsoleFormatter, out, notices io.Writer, logger zerolog.Logger) *comparison {
	notifier := selection.NotifierFunc(func(msg string) {
		fmt.Fprintln(notices, msg)
	})

	c := &comparison{
		selection: selection.New(notifier),
		tracker:   episodes.NewTracker(episodes.NewReconciler(source, logger), logger),
		formatter: formatter,
		out:       out,
		logger:    logger,
	}

	c.selection.OnChange(func(first, second *rickmorty.Character) {
		if err := c.tracker.Update(ctx, first, second); err != nil {
			c.logger.Error().Err(err).Msg("Failed to compare episodes")
		}
	})

	return c
}

// render prints the current comparison, or the failure notice if the last
// update failed
func (c *comparison) render() {
	snap := c.tracker.Snapshot()
	if snap.Err != nil {
		fmt.Fprintf(c.out, "Error filtering episodes: %v\n", snap.Err)
		return
	}
	fmt.Fprint(c.out, c.formatter.FormatComparison(c.selection.First(), c.selection.Second(), snap.Filters.Sorted()))
}
