package doom

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/zeu5/doomgym/engine"
	"github.com/zeu5/doomgym/types"
)

const (
	// FrameSkip is the number of engine tics every action is held for
	FrameSkip = 4
	// ScoreKey holds the episode score in the info of the final step
	ScoreKey = "score"
	// DefaultScenarioDir holds the scenario configuration files
	DefaultScenarioDir = "scenarios"
	// Resolution of the frames
	Resolution = engine.RES_640X480
)

// ErrActionOutOfRange is returned when an action index is outside the space
var ErrActionOutOfRange = errors.New("action out of range")

type options struct {
	scenarioDir string
	newViewer   ViewerFactory
	automap     bool
}

type Option func(*options)

// WithScenarioDir sets the directory the scenario configs are loaded from
func WithScenarioDir(dir string) Option {
	return func(o *options) {
		o.scenarioDir = dir
	}
}

// WithViewer sets how the viewer is created on the first Render. Without
// one, Render shows nothing.
func WithViewer(factory ViewerFactory) Option {
	return func(o *options) {
		o.newViewer = factory
	}
}

// WithAutomap enables the automap buffer the automap render mode needs
func WithAutomap(enabled bool) Option {
	return func(o *options) {
		o.automap = enabled
	}
}

// Env adapts an engine session to types.Environment. It is not safe for
// concurrent use.
type Env struct {
	game     engine.Game
	scenario Scenario

	actionSpace      types.Discrete
	observationSpace types.Box

	score     float64
	viewer    Viewer
	newViewer ViewerFactory

	log *logrus.Entry
}

var _ types.Environment = &Env{}

// New configures and initializes the game for the scenario of the given
// level. The Env owns the game from then on and releases it on Close.
func New(level int, game engine.Game, opts ...Option) (*Env, error) {
	scenario, err := LookupScenario(level)
	if err != nil {
		return nil, err
	}
	o := &options{
		scenarioDir: DefaultScenarioDir,
	}
	for _, opt := range opts {
		opt(o)
	}

	configPath := filepath.Join(o.scenarioDir, scenario.Config)
	setup := []struct {
		name string
		call func() error
	}{
		{"screen resolution", func() error { return game.SetScreenResolution(Resolution) }},
		{"depth buffer", func() error { return game.SetDepthBufferEnabled(false) }},
		{"labels buffer", func() error { return game.SetLabelsBufferEnabled(false) }},
		{"automap buffer", func() error { return game.SetAutomapBufferEnabled(o.automap) }},
		{"objects info", func() error { return game.SetObjectsInfoEnabled(false) }},
		{"sectors info", func() error { return game.SetSectorsInfoEnabled(false) }},
		{"config", func() error { return game.LoadConfig(configPath) }},
		{"window", func() error { return game.SetWindowVisible(false) }},
		{"init", game.Init},
	}
	for _, s := range setup {
		if err := s.call(); err != nil {
			return nil, fmt.Errorf("setting up %s for scenario %s: %w", s.name, scenario.Name, err)
		}
	}

	e := &Env{
		game:        game,
		scenario:    scenario,
		actionSpace: types.Discrete{N: scenario.Actions},
		observationSpace: types.Box{
			Low:   0,
			High:  255,
			Shape: []int{game.ScreenHeight(), game.ScreenWidth(), game.ScreenChannels()},
		},
		newViewer: o.newViewer,
		log: logrus.WithFields(logrus.Fields{
			"component": "env",
			"scenario":  scenario.Name,
		}),
	}
	e.log.WithField("observation_shape", e.observationSpace.Shape).Debug("environment ready")
	return e, nil
}

func (e *Env) Scenario() Scenario {
	return e.scenario
}

func (e *Env) ActionSpace() types.Discrete {
	return e.actionSpace
}

func (e *Env) ObservationSpace() types.Box {
	return e.observationSpace
}

// Score is the sum of the rewards since the last Reset
func (e *Env) Score() float64 {
	return e.score
}

// Step holds the one hot encoding of the action for FrameSkip tics. Once
// the episode is finished the engine has no state to show, so the
// observation is all zeros.
//
// The action must lie in [0, N). Anything else, negative values included,
// fails with ErrActionOutOfRange and never reaches the engine: negative
// actions are not counted from the end of the button list.
func (e *Env) Step(action int) (*types.StepResult, error) {
	buttons, err := OneHot(action, e.actionSpace.N)
	if err != nil {
		return nil, err
	}
	reward, err := e.game.MakeAction(buttons, FrameSkip)
	if err != nil {
		return nil, fmt.Errorf("making action %d: %w", action, err)
	}
	done, err := e.game.IsEpisodeFinished()
	if err != nil {
		return nil, fmt.Errorf("checking episode end: %w", err)
	}

	var obs types.Observation
	if !done {
		obs, err = e.currentObservation()
		if err != nil {
			return nil, err
		}
	} else {
		obs = e.observationSpace.Zero()
	}

	e.score += reward

	info := types.Info{}
	if done {
		info[ScoreKey] = e.score
	}
	return &types.StepResult{
		Observation: obs,
		Reward:      reward,
		Done:        done,
		Info:        info,
	}, nil
}

// Reset starts a new episode and zeroes the score
func (e *Env) Reset() (types.Observation, error) {
	if err := e.game.NewEpisode(); err != nil {
		return types.Observation{}, fmt.Errorf("starting episode: %w", err)
	}
	e.score = 0
	return e.currentObservation()
}

func (e *Env) currentObservation() (types.Observation, error) {
	state, err := e.game.GetState()
	if err != nil {
		return types.Observation{}, fmt.Errorf("reading state: %w", err)
	}
	obs := toObservation(state.Screen)
	if !obs.HasShape(e.observationSpace.Shape) {
		return types.Observation{}, fmt.Errorf("engine screen %v does not match observation space %v",
			obs.Shape, e.observationSpace.Shape)
	}
	return obs, nil
}

// Render shows the current frame, with the automap next to it in
// automap mode. It is best effort: any failure, such as rendering before
// the first Reset, is logged and dropped.
func (e *Env) Render(mode types.RenderMode) {
	if err := e.render(mode); err != nil {
		e.log.WithError(err).WithField("mode", mode).Debug("render skipped")
	}
}

func (e *Env) render(mode types.RenderMode) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
	}()

	state, err := e.game.GetState()
	if err != nil {
		return err
	}
	screen := state.Screen
	if mode == types.RenderAutomap {
		if state.Automap == nil {
			return errors.New("automap buffer not enabled")
		}
		screen, err = concatWidth(screen, *state.Automap)
		if err != nil {
			return err
		}
	}
	obs := toObservation(screen)

	if e.viewer == nil {
		if e.newViewer == nil {
			return errors.New("no viewer configured")
		}
		viewer, err := e.newViewer()
		if err != nil {
			return fmt.Errorf("creating viewer: %w", err)
		}
		e.viewer = viewer
	}
	return e.viewer.Show(obs)
}

// KeysToAction is the fixed key mapping, see the package function
func (e *Env) KeysToAction() map[KeyCombo]int {
	return KeysToAction()
}

// Close releases the viewer, if any, and the engine session
func (e *Env) Close() error {
	var errs []error
	if e.viewer != nil {
		if err := e.viewer.Close(); err != nil {
			errs = append(errs, err)
		}
		e.viewer = nil
	}
	if err := e.game.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
