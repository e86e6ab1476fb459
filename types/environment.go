package types

// RenderMode selects what Render shows
type RenderMode string

const (
	// RenderHuman shows the screen buffer
	RenderHuman RenderMode = "human"
	// RenderAutomap shows the screen buffer with the automap next to it
	RenderAutomap RenderMode = "automap"
)

// Info carries auxiliary values of a step, keyed by name
type Info map[string]float64

// StepResult is what an environment returns for one action
type StepResult struct {
	Observation Observation
	Reward      float64
	Done        bool
	Info        Info
}

// Environment an agent interacts with through discrete actions
type Environment interface {
	// Reset starts a new episode and returns the first observation
	Reset() (Observation, error)
	// Step applies the action with the given index
	Step(int) (*StepResult, error)
	// Render shows the current frame; it never fails
	Render(RenderMode)
	ActionSpace() Discrete
	ObservationSpace() Box
	// Close releases the underlying session
	Close() error
}
