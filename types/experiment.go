package types

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/zeu5/doomgym/util"
)

var log = logrus.WithField("component", "experiment")

type experimentRunConfig struct {
	// execution configuration
	CurrentRun int
	Episodes   int
	Horizon    int
	Analyzers  []Analyzer
	Timeout    time.Duration
	Context    context.Context
	Recorder   Recorder
	Render     bool
	RenderMode RenderMode

	// threshold to abort the experiment
	ConsecutiveErrorsAbort int

	Out               io.Writer
	LongestExpNameLen int
}

// Experiment encapsulates the different parameters to configure an agent and analyze the traces
type Experiment struct {
	Name        string
	policy      Policy
	environment Environment
}

// NewExperiment creates a new experiment instance
func NewExperiment(name string, policy Policy, environment Environment) *Experiment {
	return &Experiment{
		Name:        name,
		policy:      policy,
		environment: environment,
	}
}

// Run the experiment for the specified number of episodes, feeding every
// trace to the analyzers and every summary to the recorder
func (e *Experiment) Run(rConfig *experimentRunConfig) {
	select {
	case <-rConfig.Context.Done():
		return
	default:
	}

	agent := NewAgent(&AgentConfig{
		Episodes:    rConfig.Episodes,
		Horizon:     rConfig.Horizon,
		Policy:      e.policy,
		Environment: e.environment,
		Render:      rConfig.Render,
		RenderMode:  rConfig.RenderMode,
	})
	actions := e.environment.ActionSpace().N

	totalSteps := 0
	totalTimeout := 0
	totalWithError := 0
	totalTerminal := 0
	consecutiveErrors := 0
	EPPadding := len(strconv.Itoa(rConfig.Episodes))

	for episode := 0; episode < rConfig.Episodes; episode++ {
		select {
		case <-rConfig.Context.Done():
			return
		default:
		}

		eCtx := NewEpisodeContext(rConfig.Context, rConfig.Timeout, rConfig.CurrentRun, episode, e.Name)
		e.runEpisode(eCtx, agent)
		totalSteps += eCtx.Timesteps

		if eCtx.TimedOut {
			totalTimeout += 1
		}
		if eCtx.Err != nil {
			totalWithError += 1
			consecutiveErrors += 1
			log.WithFields(logrus.Fields{
				"experiment": e.Name,
				"episode":    episode,
			}).WithError(eCtx.Err).Warn("episode failed")
		} else {
			consecutiveErrors = 0
		}
		if eCtx.Terminal {
			totalTerminal += 1
		}

		for _, a := range rConfig.Analyzers {
			a.Analyze(rConfig.CurrentRun, episode, e.Name, eCtx)
		}
		if rConfig.Recorder != nil {
			if err := rConfig.Recorder.Record(eCtx.Summary(actions)); err != nil {
				log.WithError(err).Warn("unable to record episode")
			}
		}

		// terminal execution display
		fmt.Fprintf(rConfig.Out, "\rExp:%*s, Eps:%*d/%d, Steps:%d, Score:%9.2f, Terminal:%*d, TOut:%*d, Err:%*d",
			rConfig.LongestExpNameLen, e.Name, EPPadding, episode+1, rConfig.Episodes, totalSteps, eCtx.Score,
			EPPadding, totalTerminal, EPPadding, totalTimeout, EPPadding, totalWithError)

		if consecutiveErrors >= rConfig.ConsecutiveErrorsAbort {
			fmt.Fprintf(rConfig.Out, "\n Aborting experiment %s : %d consecutive errors\n", e.Name, consecutiveErrors)
			break
		}
	}
	fmt.Fprintln(rConfig.Out, "")
}

func (e *Experiment) runEpisode(eCtx *EpisodeContext, agent *Agent) {
	defer eCtx.Cancel()
	defer func() {
		if r := recover(); r != nil {
			eCtx.SetError(fmt.Errorf("%v", r))
		}
	}()
	agent.RunEpisode(eCtx)
}

// Reset forgets what the policy learned
func (e *Experiment) Reset() {
	e.policy.Reset()
}

// Generic Dataset that contains information after processing the episodes
type DataSet interface{}

// Analyzer compresses the information in the episodes to a DataSet
type Analyzer interface {
	// Run, episode, experiment, finished episode
	Analyze(int, int, string, *EpisodeContext)
	// Resulting dataset
	DataSet() DataSet
	// Reset the analyzer
	Reset()
}

// AnalyzerCtor creates a fresh analyzer for every experiment of a run
type AnalyzerCtor func() Analyzer

// Comparator differentiates between different datasets with associated names
// run, experiment names, datasets
type Comparator func(int, []string, []DataSet)

func NoopComparator() Comparator {
	return func(_ int, _ []string, _ []DataSet) {}
}

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Runs     int // number of runs
	Episodes int // number of episodes
	Horizon  int // maximum number of steps per episode

	RecordPath string        // path to store the results
	Fs         afero.Fs      // filesystem the results go to, the OS by default
	Timeout    time.Duration // timeout for each episode
	Recorder   Recorder      // optional sink for episode summaries
	Render     bool          // render after every step
	RenderMode RenderMode    // what to render, the screen by default
	Out        io.Writer     // progress output, stdout by default

	// run the experiments of a run concurrently, one goroutine each
	Parallel bool
	// refresh interval of the progress lines in parallel mode
	PrintInterval time.Duration

	// threshold to abort an experiment
	ConsecutiveErrorsAbort int
}

// Comparison contains the different experiments to compare
// The episodes obtained from the experiments are analyzed
// The analyzed datasets are then compared
type Comparison struct {
	Experiments []*Experiment
	analyzers   map[string]AnalyzerCtor
	comparators map[string]Comparator
	names       []string
	cConfig     *ComparisonConfig
}

// NewComparison creates a comparison instance
func NewComparison(config *ComparisonConfig) *Comparison {
	if config.Fs == nil {
		config.Fs = afero.NewOsFs()
	}
	if config.Out == nil {
		config.Out = os.Stdout
	}
	if config.Runs <= 0 {
		config.Runs = 1
	}
	if config.ConsecutiveErrorsAbort <= 0 {
		config.ConsecutiveErrorsAbort = 10
	}
	if config.PrintInterval <= 0 {
		config.PrintInterval = time.Second
	}
	return &Comparison{
		Experiments: make([]*Experiment, 0),
		analyzers:   make(map[string]AnalyzerCtor),
		comparators: make(map[string]Comparator),
		names:       make([]string, 0),
		cConfig:     config,
	}
}

// AddAnalysis adds an analyzer and comparator to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer AnalyzerCtor, comparator Comparator) {
	if _, ok := c.analyzers[name]; !ok {
		c.names = append(c.names, name)
	}
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

// Add experiments to compare
func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// record the configuration of the comparison
func (c *Comparison) recordConfig() error {
	cfg := c.cConfig
	if cfg.RecordPath == "" {
		return nil
	}
	out := make(map[string]interface{})
	out["runs"] = cfg.Runs
	out["episodes"] = cfg.Episodes
	out["horizon"] = cfg.Horizon
	if cfg.Timeout != 0 {
		out["timeout"] = cfg.Timeout.String()
	}
	experiments := make([]string, 0)
	for _, e := range c.Experiments {
		experiments = append(experiments, e.Name)
	}
	out["experiments"] = experiments
	out["analyzers"] = c.names
	out["parallel"] = cfg.Parallel

	bs, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return util.WriteToFile(cfg.Fs, path.Join(cfg.RecordPath, "comparison_config.json"), string(bs))
}

// Run the comparison
func (c *Comparison) Run(ctx context.Context) error {
	if err := c.recordConfig(); err != nil { // store configuration details to a file
		return fmt.Errorf("recording comparison config: %w", err)
	}

	longestNameLen := 0
	names := make([]string, len(c.Experiments))
	for i, e := range c.Experiments {
		names[i] = e.Name
		if len(e.Name) > longestNameLen {
			longestNameLen = len(e.Name)
		}
	}

	for run := 0; run < c.cConfig.Runs; run++ {
		fmt.Fprintf(c.cConfig.Out, "Run %d\n", run+1)
		var results []map[string]DataSet
		var err error
		if c.cConfig.Parallel {
			results, err = c.runParallel(ctx, run, longestNameLen)
		} else {
			results, err = c.runSequential(ctx, run, longestNameLen)
		}
		if err != nil {
			return err
		}
		for _, name := range c.names {
			datasets := make([]DataSet, len(c.Experiments))
			for i := range c.Experiments {
				datasets[i] = results[i][name]
			}
			c.comparators[name](run, names, datasets)
		}
	}
	return nil
}

func (c *Comparison) runSequential(ctx context.Context, run int, longestNameLen int) ([]map[string]DataSet, error) {
	results := make([]map[string]DataSet, len(c.Experiments))
	for i := range c.Experiments {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		results[i] = c.runExperiment(ctx, run, i, longestNameLen, c.cConfig.Out, c.cConfig.Recorder)
	}
	return results, nil
}

// runExperiment runs the i-th experiment with fresh analyzers and returns their datasets by analysis name
func (c *Comparison) runExperiment(ctx context.Context, run, i, longestNameLen int, out io.Writer, recorder Recorder) map[string]DataSet {
	e := c.Experiments[i]
	analyzers := make([]Analyzer, len(c.names))
	for j, name := range c.names {
		analyzers[j] = c.analyzers[name]()
	}

	rCfg := c.prepareRunConfig(ctx, run, longestNameLen)
	rCfg.Analyzers = analyzers
	rCfg.Out = out
	rCfg.Recorder = recorder
	e.Run(rCfg)
	e.Reset()

	datasets := make(map[string]DataSet, len(c.names))
	for j, name := range c.names {
		datasets[name] = analyzers[j].DataSet()
	}
	return datasets
}

// prepare the run configuration for the experiment
func (c *Comparison) prepareRunConfig(ctx context.Context, run int, longestExpNameLen int) *experimentRunConfig {
	return &experimentRunConfig{
		CurrentRun:             run,
		Episodes:               c.cConfig.Episodes,
		Horizon:                c.cConfig.Horizon,
		Analyzers:              make([]Analyzer, 0),
		Timeout:                c.cConfig.Timeout,
		Context:                ctx,
		Recorder:               c.cConfig.Recorder,
		Render:                 c.cConfig.Render,
		RenderMode:             c.cConfig.RenderMode,
		ConsecutiveErrorsAbort: c.cConfig.ConsecutiveErrorsAbort,
		Out:                    c.cConfig.Out,
		LongestExpNameLen:      longestExpNameLen,
	}
}
