package types

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunEpisodeUntilDone(t *testing.T) {
	env := newCountingEnv(3, 5)
	policy := &fixedPolicy{action: 2}
	agent := NewAgent(&AgentConfig{Horizon: 100, Policy: policy, Environment: env})

	eCtx := NewEpisodeContext(context.Background(), 0, 0, 0, "fixed")
	defer eCtx.Cancel()
	agent.RunEpisode(eCtx)

	require.NoError(t, eCtx.Err)
	assert.True(t, eCtx.Terminal)
	assert.False(t, eCtx.HorizonEnd)
	assert.Equal(t, 5, eCtx.Timesteps)
	assert.Equal(t, float64(15), eCtx.Score)
	assert.Equal(t, 5, eCtx.Trace.Len())
	assert.Equal(t, 5, policy.updates)
	assert.Equal(t, 1, policy.iterations)
	assert.Len(t, eCtx.StepTimes, 5)
	assert.Empty(t, env.renders)
}

func TestRunEpisodeHorizon(t *testing.T) {
	env := newCountingEnv(3, 50)
	agent := NewAgent(&AgentConfig{Horizon: 4, Policy: &fixedPolicy{}, Environment: env, Render: true})

	eCtx := NewEpisodeContext(context.Background(), 0, 0, 0, "fixed")
	defer eCtx.Cancel()
	agent.RunEpisode(eCtx)

	assert.True(t, eCtx.HorizonEnd)
	assert.False(t, eCtx.Terminal)
	assert.Equal(t, 4, eCtx.Timesteps)
	assert.Equal(t, []RenderMode{RenderHuman, RenderHuman, RenderHuman, RenderHuman}, env.renders)
}

func TestRunEpisodeStepError(t *testing.T) {
	env := newCountingEnv(3, 50)
	env.failAt = 2
	agent := NewAgent(&AgentConfig{Horizon: 10, Policy: &fixedPolicy{}, Environment: env})

	eCtx := NewEpisodeContext(context.Background(), 0, 0, 0, "fixed")
	defer eCtx.Cancel()
	agent.RunEpisode(eCtx)

	assert.ErrorContains(t, eCtx.Err, "engine failure")
	assert.False(t, eCtx.Valid())
	assert.Equal(t, 2, eCtx.Timesteps)
}

func TestRunEpisodeCancelled(t *testing.T) {
	env := newCountingEnv(3, 50)
	agent := NewAgent(&AgentConfig{Horizon: 10, Policy: &fixedPolicy{}, Environment: env})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	eCtx := NewEpisodeContext(ctx, time.Second, 0, 0, "fixed")
	defer eCtx.Cancel()
	agent.RunEpisode(eCtx)

	assert.True(t, eCtx.TimedOut)
	assert.Zero(t, eCtx.Timesteps)
	assert.Equal(t, 1, env.resets)
}

func TestEpisodeSummary(t *testing.T) {
	env := newCountingEnv(3, 3)
	agent := NewAgent(&AgentConfig{Horizon: 10, Policy: &fixedPolicy{action: 1}, Environment: env})

	eCtx := NewEpisodeContext(context.Background(), 0, 2, 7, "fixed")
	defer eCtx.Cancel()
	agent.RunEpisode(eCtx)

	s := eCtx.Summary(3)
	assert.Equal(t, "fixed", s.Experiment)
	assert.Equal(t, 2, s.Run)
	assert.Equal(t, 7, s.Episode)
	assert.Equal(t, 3, s.Steps)
	assert.Equal(t, float64(6), s.Score)
	assert.True(t, s.Terminal)
	assert.Empty(t, s.Error)
	assert.Equal(t, []int{0, 3, 0}, s.ActionCounts)
}

// decliningPolicy acts until step stopAt and then has nothing to offer
type decliningPolicy struct {
	fixedPolicy
	stopAt int
}

func (d *decliningPolicy) NextAction(step int, _ Observation, _ Discrete) (int, bool) {
	return d.action, step < d.stopAt
}

func TestRunEpisodePolicyDeclines(t *testing.T) {
	env := newCountingEnv(3, 50)
	policy := &decliningPolicy{stopAt: 2}
	agent := NewAgent(&AgentConfig{Horizon: 10, Policy: policy, Environment: env})

	eCtx := NewEpisodeContext(context.Background(), 0, 0, 0, "declining")
	defer eCtx.Cancel()
	agent.RunEpisode(eCtx)

	require.NoError(t, eCtx.Err)
	assert.True(t, eCtx.Declined)
	assert.False(t, eCtx.HorizonEnd)
	assert.False(t, eCtx.Terminal)
	assert.Equal(t, 2, eCtx.Timesteps)
	assert.Equal(t, 1, policy.iterations)
	assert.True(t, eCtx.Summary(3).Declined)
}

func TestRunEpisodeHorizonIsNotDeclined(t *testing.T) {
	env := newCountingEnv(3, 50)
	agent := NewAgent(&AgentConfig{Horizon: 3, Policy: &decliningPolicy{stopAt: 3}, Environment: env})

	eCtx := NewEpisodeContext(context.Background(), 0, 0, 0, "declining")
	defer eCtx.Cancel()
	agent.RunEpisode(eCtx)

	assert.True(t, eCtx.HorizonEnd)
	assert.False(t, eCtx.Declined)
}
