package types

import (
	"fmt"
	"time"
)

type AgentConfig struct {
	Episodes    int
	Horizon     int
	Policy      Policy
	Environment Environment
	// Render the environment after every step
	Render     bool
	RenderMode RenderMode
}

// RL Agent configured with the corresponding
// policy and environment
type Agent struct {
	config      *AgentConfig
	policy      Policy
	environment Environment
}

// Instantiates a new Agent
func NewAgent(config *AgentConfig) *Agent {
	if config.RenderMode == "" {
		config.RenderMode = RenderHuman
	}
	return &Agent{
		config:      config,
		policy:      config.Policy,
		environment: config.Environment,
	}
}

// RunEpisode runs a single episode until the environment reports done,
// the horizon is reached or the episode context ends. Results are stored
// in eCtx.
func (a *Agent) RunEpisode(eCtx *EpisodeContext) {
	start := time.Now()
	defer func() {
		eCtx.RunDuration = time.Since(start)
		eCtx.Score = eCtx.Trace.Score()
	}()

	obs, err := a.environment.Reset()
	if err != nil {
		eCtx.SetError(fmt.Errorf("reset: %w", err))
		return
	}
	space := a.environment.ActionSpace()

	for i := 0; i < a.config.Horizon; i++ {
		select {
		case <-eCtx.Context.Done():
			eCtx.SetTimedOut()
			return
		default:
		}

		action, ok := a.policy.NextAction(i, obs, space)
		if !ok {
			eCtx.Declined = true
			break
		}
		stepStart := time.Now()
		result, err := a.environment.Step(action)
		eCtx.StepTimes = append(eCtx.StepTimes, time.Since(stepStart))
		if err != nil {
			eCtx.SetError(fmt.Errorf("step %d: %w", i, err))
			return
		}
		if a.config.Render {
			a.environment.Render(a.config.RenderMode)
		}
		a.policy.Update(i, action, result)
		eCtx.Trace.Append(i, action, result)
		eCtx.Timesteps += 1

		if result.Done {
			eCtx.Terminal = true
			break
		}
		obs = result.Observation
	}
	if !eCtx.Terminal && !eCtx.Declined {
		eCtx.HorizonEnd = true
	}
	a.policy.UpdateIteration(eCtx.Episode, eCtx.Trace)
}
