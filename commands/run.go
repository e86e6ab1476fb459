package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zeu5/doomgym/doom"
	"github.com/zeu5/doomgym/types"
)

const (
	policyKey  = "policy"
	weightsKey = "weights"
	seedKey    = "seed"
	renderKey  = "render"
	automapKey = "automap"
)

// envOptions are the adapter options of the render flags
func envOptions(fs afero.Fs) []doom.Option {
	opts := []doom.Option{doom.WithAutomap(config.GetBool(automapKey))}
	if config.GetBool(renderKey) {
		opts = append(opts, doom.WithViewer(doom.FrameDumperFactory(fs, config.GetString(framesKey))))
	}
	return opts
}

// actionWeights parses the weights of the weighted policy
func actionWeights() ([]float64, error) {
	raw := config.GetStringSlice(weightsKey)
	weights := make([]float64, len(raw))
	for i, w := range raw {
		v, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %q: %w", w, err)
		}
		weights[i] = v
	}
	return weights, nil
}

func renderMode() types.RenderMode {
	if config.GetBool(automapKey) {
		return types.RenderAutomap
	}
	return types.RenderHuman
}

func comparisonConfig(fs afero.Fs, out io.Writer, recorder types.Recorder) *types.ComparisonConfig {
	return &types.ComparisonConfig{
		Runs:                   config.GetInt(runsKey),
		Episodes:               config.GetInt(episodesKey),
		Horizon:                config.GetInt(horizonKey),
		RecordPath:             config.GetString(saveKey),
		Fs:                     fs,
		Timeout:                config.GetDuration(timeoutKey),
		Recorder:               recorder,
		Render:                 config.GetBool(renderKey),
		RenderMode:             renderMode(),
		Out:                    out,
		Parallel:               config.GetBool(parallelKey),
		ConsecutiveErrorsAbort: config.GetInt(consecutiveErrKey),
	}
}

// runPolicy runs the configured policy on the configured scenario
func runPolicy(ctx context.Context, out io.Writer, fs afero.Fs) error {
	newGame, err := gameFactory()
	if err != nil {
		return err
	}
	policyName := config.GetString(policyKey)
	weights, err := actionWeights()
	if err != nil {
		return err
	}
	policy, err := types.NewPolicy(policyName, weights, config.GetUint64(seedKey))
	if err != nil {
		return err
	}

	tally := &tallyRecorder{}
	recorder, err := buildRecorder(fs, tally)
	if err != nil {
		return err
	}
	defer recorder.Close()

	env, err := newEnv(newGame, envOptions(fs)...)
	if err != nil {
		return err
	}
	defer env.Close()

	c := types.NewComparison(comparisonConfig(fs, out, recorder))
	c.AddAnalysis("Scores", types.ScoreAnalyzerCtor(), types.StatsComparator(out))
	c.AddExperiment(types.NewExperiment(policyName, policy, env))

	start := time.Now()
	err = c.Run(ctx)
	printTally(out, tally, time.Since(start))
	return err
}

func printTally(out io.Writer, tally *tallyRecorder, elapsed time.Duration) {
	color.New(color.FgGreen, color.Bold).Fprintf(out, "Ran %s episodes (%s steps, %s terminal) in %s\n",
		humanize.Comma(tally.Episodes), humanize.Comma(tally.Steps), humanize.Comma(tally.Terminal),
		elapsed.Round(time.Millisecond))
	if tally.Failed > 0 {
		color.New(color.FgRed).Fprintf(out, "%s episodes failed or timed out\n", humanize.Comma(tally.Failed))
	}
}

func RunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a policy on a scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := interruptContext()
			defer stop()
			return runPolicy(ctx, cmd.OutOrStdout(), afero.NewOsFs())
		},
	}
	cmd.Flags().StringP(policyKey, "p", "random", fmt.Sprintf("Policy, one of %v", types.PolicyNames))
	cmd.Flags().StringSlice(weightsKey, nil, "Action weights of the weighted policy")
	cmd.Flags().Uint64(seedKey, 0, "Random seed, the clock when zero")
	cmd.Flags().Bool(renderKey, false, "Render every step as a png frame")
	cmd.Flags().Bool(automapKey, false, "Render the automap next to the screen")
	cmd.Flags().String(framesKey, "frames", "Folder the rendered frames go to")
	return cmd
}
