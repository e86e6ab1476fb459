package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomPolicyStaysInSpace(t *testing.T) {
	p := NewRandomPolicy(42)
	space := Discrete{N: 7}
	seen := make(map[int]bool)
	for i := 0; i < 500; i++ {
		a, ok := p.NextAction(i, Observation{}, space)
		require.True(t, ok)
		require.True(t, space.Contains(a))
		seen[a] = true
	}
	assert.Len(t, seen, 7)

	_, ok := p.NextAction(0, Observation{}, Discrete{})
	assert.False(t, ok)
}

func TestRandomPolicySeeded(t *testing.T) {
	a, b := NewRandomPolicy(9), NewRandomPolicy(9)
	space := Discrete{N: 20}
	for i := 0; i < 50; i++ {
		x, _ := a.NextAction(i, Observation{}, space)
		y, _ := b.NextAction(i, Observation{}, space)
		assert.Equal(t, x, y)
	}
}

func TestWeightedPolicySkipsZeroWeights(t *testing.T) {
	p, err := NewWeightedPolicy([]float64{0, 1, 0}, 3)
	require.NoError(t, err)
	space := Discrete{N: 4}
	seen := make(map[int]bool)
	for i := 0; i < 300; i++ {
		a, ok := p.NextAction(i, Observation{}, space)
		require.True(t, ok)
		seen[a] = true
	}
	// action 3 has no weight and defaults to 1
	assert.Equal(t, map[int]bool{1: true, 3: true}, seen)
}

func TestWeightedPolicyRejectsInvalidWeights(t *testing.T) {
	cases := map[string][]float64{
		"negative": {-1, 1, 1},
		"nan":      {1, math.NaN()},
		"inf":      {math.Inf(1), 1},
		"neg inf":  {math.Inf(-1)},
		"all zero": {0, 0, 0},
	}
	for name, weights := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := NewWeightedPolicy(weights, 1)
			assert.ErrorIs(t, err, ErrInvalidWeights)
			assert.Nil(t, p)

			policy, err := NewPolicy("weighted", weights, 1)
			assert.ErrorIs(t, err, ErrInvalidWeights)
			assert.True(t, policy == nil)
		})
	}
}

func TestWeightedPolicyDefaultsToUniform(t *testing.T) {
	p, err := NewWeightedPolicy(nil, 1)
	require.NoError(t, err)
	seen := make(map[int]bool)
	for i := 0; i < 300; i++ {
		a, ok := p.NextAction(i, Observation{}, Discrete{N: 3})
		require.True(t, ok)
		seen[a] = true
	}
	assert.Len(t, seen, 3)
}

func TestSoftMaxRewardPolicyLearnsMeans(t *testing.T) {
	p := NewSoftMaxRewardPolicy(0.1, 5)
	p.Update(0, 1, &StepResult{Reward: 10})
	p.Update(1, 1, &StepResult{Reward: 20})
	p.Update(2, 0, &StepResult{Reward: -4})
	assert.Equal(t, float64(15), p.Values[1])
	assert.Equal(t, float64(-4), p.Values[0])

	counts := make([]int, 3)
	for i := 0; i < 200; i++ {
		a, ok := p.NextAction(i, Observation{}, Discrete{N: 3})
		require.True(t, ok)
		counts[a] += 1
	}
	assert.Greater(t, counts[1], 190)

	p.Reset()
	assert.Empty(t, p.Values)
}

func TestNewPolicy(t *testing.T) {
	for _, name := range PolicyNames {
		p, err := NewPolicy(name, nil, 1)
		require.NoError(t, err)
		assert.NotNil(t, p)
	}
	_, err := NewPolicy("greedy", nil, 1)
	assert.Error(t, err)
}
