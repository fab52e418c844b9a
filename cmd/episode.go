package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/crossover/episodes"
	"github.com/s0up4200/crossover/format"
	"github.com/s0up4200/crossover/rickmorty"
)

var (
	episodeCast    bool
	episodeWorkers int
)

// episodeCmd represents the episode command
var episodeCmd = &cobra.Command{
	Use:     "episode <id>...",
	Aliases: []string{"ep"},
	Short:   "Show episodes and their cast",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runEpisode,
}

func init() {
	rootCmd.AddCommand(episodeCmd)

	episodeCmd.Flags().BoolVar(&episodeCast, "cast", true, "list the characters appearing in each episode")
	episodeCmd.Flags().IntVar(&episodeWorkers, "workers", 4, "number of concurrent cast lookups")
}

func runEpisode(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid episode id: %s", arg)
		}
		ids = append(ids, id)
	}

	eps, err := api.GetEpisodes(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to get episodes: %w", err)
	}
	eps = episodes.Sort(eps)

	formatter := format.NewConsoleFormatter(format.Options{ShowDetails: true})
	out := cmd.OutOrStdout()

	if !episodeCast {
		fmt.Fprint(out, formatter.FormatEpisodes("Episodes", eps))
		return nil
	}

	casts := make([][]rickmorty.Character, len(eps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(episodeWorkers, 1))
	for i, ep := range eps {
		g.Go(func() error {
			cast, err := api.GetCharactersByIDs(gctx, ep.CharacterIDs())
			if err != nil {
				return fmt.Errorf("failed to get cast of %s: %w", ep.Code, err)
			}
			casts[i] = cast
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, ep := range eps {
		fmt.Fprint(out, formatter.FormatEpisodeCast(ep, casts[i]))
	}

	logger.Debug().Int("episodes", len(eps)).Msg("Listed episodes")
	return nil
}
