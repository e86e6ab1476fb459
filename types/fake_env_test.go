package types

import (
	"errors"
)

// countingEnv pays action+1 per step and finishes after length steps
type countingEnv struct {
	actions int
	length  int
	failAt  int

	steps   int
	resets  int
	renders []RenderMode
	closed  bool
}

var _ Environment = &countingEnv{}

func newCountingEnv(actions, length int) *countingEnv {
	return &countingEnv{actions: actions, length: length, failAt: -1}
}

func (c *countingEnv) Reset() (Observation, error) {
	c.resets += 1
	c.steps = 0
	return c.ObservationSpace().Zero(), nil
}

func (c *countingEnv) Step(action int) (*StepResult, error) {
	if c.steps == c.failAt {
		return nil, errors.New("engine failure")
	}
	c.steps += 1
	done := c.steps >= c.length
	info := Info{}
	if done {
		info["score"] = 0
	}
	return &StepResult{
		Observation: c.ObservationSpace().Zero(),
		Reward:      float64(action + 1),
		Done:        done,
		Info:        info,
	}, nil
}

func (c *countingEnv) Render(mode RenderMode) {
	c.renders = append(c.renders, mode)
}

func (c *countingEnv) ActionSpace() Discrete {
	return Discrete{N: c.actions}
}

func (c *countingEnv) ObservationSpace() Box {
	return Box{Low: 0, High: 255, Shape: []int{2, 2, 1}}
}

func (c *countingEnv) Close() error {
	c.closed = true
	return nil
}

// fixedPolicy always picks the same action
type fixedPolicy struct {
	action     int
	updates    int
	iterations int
}

var _ Policy = &fixedPolicy{}

func (f *fixedPolicy) UpdateIteration(_ int, _ *Trace) { f.iterations += 1 }

func (f *fixedPolicy) NextAction(_ int, _ Observation, _ Discrete) (int, bool) {
	return f.action, true
}

func (f *fixedPolicy) Update(_ int, _ int, _ *StepResult) { f.updates += 1 }

func (f *fixedPolicy) Reset() {}
