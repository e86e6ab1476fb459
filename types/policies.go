package types

import (
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Policy picks actions from observations and learns from step results
type Policy interface {
	// UpdateIteration is called at the end of every episode
	UpdateIteration(int, *Trace)
	NextAction(int, Observation, Discrete) (int, bool)
	Update(int, int, *StepResult)
	Reset()
}

func newSource(seed uint64) rand.Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.NewSource(seed)
}

// RandomPolicy picks actions uniformly
type RandomPolicy struct {
	rand *rand.Rand
}

var _ Policy = &RandomPolicy{}

// NewRandomPolicy seeds from the clock when seed is zero
func NewRandomPolicy(seed uint64) *RandomPolicy {
	return &RandomPolicy{
		rand: rand.New(newSource(seed)),
	}
}

func (r *RandomPolicy) Reset() {}

func (r *RandomPolicy) UpdateIteration(_ int, _ *Trace) {}

func (r *RandomPolicy) NextAction(_ int, _ Observation, space Discrete) (int, bool) {
	if space.N <= 0 {
		return 0, false
	}
	return space.Sample(r.rand), true
}

func (r *RandomPolicy) Update(_ int, _ int, _ *StepResult) {}

// WeightedPolicy samples actions with fixed relative weights. Actions
// without a weight get weight 1. Weights beyond the action space are
// ignored, and when the ones left are all zero the policy declines to act.
type WeightedPolicy struct {
	weights []float64
	src     rand.Source
}

var _ Policy = &WeightedPolicy{}

// ErrInvalidWeights is returned for weights that cannot be sampled from
var ErrInvalidWeights = errors.New("invalid action weights")

// NewWeightedPolicy rejects negative, NaN or infinite weights and weights
// that are all zero. No weights at all means uniform sampling.
func NewWeightedPolicy(weights []float64, seed uint64) (*WeightedPolicy, error) {
	if err := validateWeights(weights); err != nil {
		return nil, err
	}
	return &WeightedPolicy{
		weights: weights,
		src:     newSource(seed),
	}, nil
}

func validateWeights(weights []float64) error {
	if len(weights) == 0 {
		return nil
	}
	sum := 0.0
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("%w: weight %d is %v", ErrInvalidWeights, i, w)
		}
		sum += w
	}
	if sum == 0 {
		return fmt.Errorf("%w: all weights are zero", ErrInvalidWeights)
	}
	return nil
}

func (w *WeightedPolicy) Reset() {}

func (w *WeightedPolicy) UpdateIteration(_ int, _ *Trace) {}

func (w *WeightedPolicy) NextAction(_ int, _ Observation, space Discrete) (int, bool) {
	if space.N <= 0 {
		return 0, false
	}
	weights := make([]float64, space.N)
	for i := range weights {
		weights[i] = 1
		if i < len(w.weights) {
			weights[i] = w.weights[i]
		}
	}
	return sampleuv.NewWeighted(weights, w.src).Take()
}

func (w *WeightedPolicy) Update(_ int, _ int, _ *StepResult) {}

// SoftMaxRewardPolicy keeps the mean reward of every action across
// episodes and samples actions with a softmax over those means.
// Observations are ignored, making it a multi-armed bandit.
type SoftMaxRewardPolicy struct {
	Values      map[int]float64
	counts      map[int]int
	temperature float64
	src         rand.Source
}

var _ Policy = &SoftMaxRewardPolicy{}

func NewSoftMaxRewardPolicy(temperature float64, seed uint64) *SoftMaxRewardPolicy {
	if temperature <= 0 {
		temperature = 1
	}
	return &SoftMaxRewardPolicy{
		Values:      make(map[int]float64),
		counts:      make(map[int]int),
		temperature: temperature,
		src:         newSource(seed),
	}
}

func (s *SoftMaxRewardPolicy) Reset() {
	s.Values = make(map[int]float64)
	s.counts = make(map[int]int)
}

func (s *SoftMaxRewardPolicy) UpdateIteration(_ int, _ *Trace) {}

func (s *SoftMaxRewardPolicy) NextAction(_ int, _ Observation, space Discrete) (int, bool) {
	if space.N <= 0 {
		return 0, false
	}
	max := math.Inf(-1)
	for a := 0; a < space.N; a++ {
		if v := s.Values[a] / s.temperature; v > max {
			max = v
		}
	}
	weights := make([]float64, space.N)
	for a := range weights {
		// shifted by the max to keep exp finite
		weights[a] = math.Exp(s.Values[a]/s.temperature - max)
	}
	return sampleuv.NewWeighted(weights, s.src).Take()
}

func (s *SoftMaxRewardPolicy) Update(_ int, action int, result *StepResult) {
	s.counts[action] += 1
	cur := s.Values[action]
	s.Values[action] = cur + (result.Reward-cur)/float64(s.counts[action])
}

// PolicyNames lists the names accepted by NewPolicy
var PolicyNames = []string{"random", "weighted", "softmax"}

// NewPolicy builds a policy by name
func NewPolicy(name string, weights []float64, seed uint64) (Policy, error) {
	switch name {
	case "random":
		return NewRandomPolicy(seed), nil
	case "weighted":
		p, err := NewWeightedPolicy(weights, seed)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "softmax":
		return NewSoftMaxRewardPolicy(1, seed), nil
	default:
		return nil, fmt.Errorf("unknown policy %q, expecting one of %v", name, PolicyNames)
	}
}
