package commands

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zeu5/doomgym/doom"
	"github.com/zeu5/doomgym/types"
)

const (
	plotWindowKey = "plot-window"
	parallelKey   = "parallel"
)

// comparePolicies runs every policy on its own engine session
func comparePolicies(ctx context.Context, out io.Writer, fs afero.Fs) error {
	newGame, err := gameFactory()
	if err != nil {
		return err
	}
	tally := &tallyRecorder{}
	recorder, err := buildRecorder(fs, tally)
	if err != nil {
		return err
	}
	defer recorder.Close()

	c := types.NewComparison(comparisonConfig(fs, out, recorder))
	c.AddAnalysis("Scores", types.ScoreAnalyzerCtor(), types.StatsComparator(out))
	c.AddAnalysis("Milestones", types.MilestoneAnalyzerCtor(
		types.TerminalMilestone(),
		types.ScoreMilestone("positive_score", 1),
	), types.MilestoneComparator(fs, config.GetString(saveKey), out))
	if save := config.GetString(saveKey); save != "" {
		c.AddAnalysis("Plot", types.ScoreAnalyzerCtor(), types.ScorePlotComparator(fs, save, config.GetInt(plotWindowKey)))
	}

	weights, err := actionWeights()
	if err != nil {
		return err
	}
	envs := make([]*doom.Env, 0, len(types.PolicyNames))
	closeAll := func() error {
		var errs []error
		for _, env := range envs {
			errs = append(errs, env.Close())
		}
		return errors.Join(errs...)
	}
	for _, name := range types.PolicyNames {
		policy, err := types.NewPolicy(name, weights, config.GetUint64(seedKey))
		if err != nil {
			return errors.Join(err, closeAll())
		}
		env, err := newEnv(newGame, envOptions(fs)...)
		if err != nil {
			return errors.Join(err, closeAll())
		}
		envs = append(envs, env)
		c.AddExperiment(types.NewExperiment(name, policy, env))
	}

	start := time.Now()
	err = c.Run(ctx)
	printTally(out, tally, time.Since(start))
	return errors.Join(err, closeAll())
}

func CompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare every policy on a scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := interruptContext()
			defer stop()
			return comparePolicies(ctx, cmd.OutOrStdout(), afero.NewOsFs())
		},
	}
	cmd.Flags().StringSlice(weightsKey, nil, "Action weights of the weighted policy")
	cmd.Flags().Uint64(seedKey, 0, "Random seed, the clock when zero")
	cmd.Flags().Int(plotWindowKey, 10, "Moving average window of the score plots")
	cmd.Flags().Bool(parallelKey, false, "Run the policies concurrently, one engine session each")
	cmd.Flags().Bool(renderKey, false, "Render every step as a png frame")
	cmd.Flags().Bool(automapKey, false, "Render the automap next to the screen")
	cmd.Flags().String(framesKey, "frames", "Folder the rendered frames go to")
	return cmd
}
