package engine

import (
	"fmt"
)

// MemoryConfig configures a MemoryGame
type MemoryConfig struct {
	// EpisodeTics is the number of tics after which an episode finishes
	EpisodeTics int
	// ButtonWeights is the reward per tic of each pressed button.
	// Button i is worth i when the slice is shorter than the action.
	ButtonWeights []float64
	// Buttons, when positive, is the number of buttons MakeAction expects
	Buttons int
}

// MemoryGame is a deterministic in-process Game. It renders a byte
// pattern instead of a scene and pays a fixed reward per pressed button,
// which is enough to exercise adapters and agents without an engine.
type MemoryGame struct {
	config MemoryConfig

	Resolution    ScreenResolution
	Format        ScreenFormat
	DepthBuffer   bool
	LabelsBuffer  bool
	AutomapBuffer bool
	ObjectsInfo   bool
	SectorsInfo   bool
	WindowVisible bool
	ConfigPath    string

	// Actions and Tics record every MakeAction call in order
	Actions [][]float64
	Tics    []int
	// Episodes counts NewEpisode calls
	Episodes int

	initialized bool
	closed      bool
	running     bool
	tic         int
}

var _ Game = &MemoryGame{}

func NewMemoryGame(config MemoryConfig) *MemoryGame {
	if config.EpisodeTics <= 0 {
		config.EpisodeTics = 100
	}
	return &MemoryGame{
		config:     config,
		Resolution: RES_320X240,
		Format:     CRCGCB,
		Actions:    make([][]float64, 0),
		Tics:       make([]int, 0),
	}
}

func (m *MemoryGame) setting() error {
	if m.closed {
		return ErrClosed
	}
	if m.initialized {
		return ErrAlreadyInitialized
	}
	return nil
}

func (m *MemoryGame) SetScreenResolution(r ScreenResolution) error {
	if err := m.setting(); err != nil {
		return err
	}
	if !r.Valid() {
		return fmt.Errorf("invalid screen resolution %s", r)
	}
	m.Resolution = r
	return nil
}

func (m *MemoryGame) SetScreenFormat(f ScreenFormat) error {
	if err := m.setting(); err != nil {
		return err
	}
	m.Format = f
	return nil
}

func (m *MemoryGame) SetDepthBufferEnabled(v bool) error {
	if err := m.setting(); err != nil {
		return err
	}
	m.DepthBuffer = v
	return nil
}

func (m *MemoryGame) SetLabelsBufferEnabled(v bool) error {
	if err := m.setting(); err != nil {
		return err
	}
	m.LabelsBuffer = v
	return nil
}

func (m *MemoryGame) SetAutomapBufferEnabled(v bool) error {
	if err := m.setting(); err != nil {
		return err
	}
	m.AutomapBuffer = v
	return nil
}

func (m *MemoryGame) SetObjectsInfoEnabled(v bool) error {
	if err := m.setting(); err != nil {
		return err
	}
	m.ObjectsInfo = v
	return nil
}

func (m *MemoryGame) SetSectorsInfoEnabled(v bool) error {
	if err := m.setting(); err != nil {
		return err
	}
	m.SectorsInfo = v
	return nil
}

func (m *MemoryGame) SetWindowVisible(v bool) error {
	if err := m.setting(); err != nil {
		return err
	}
	m.WindowVisible = v
	return nil
}

func (m *MemoryGame) LoadConfig(path string) error {
	if err := m.setting(); err != nil {
		return err
	}
	m.ConfigPath = path
	return nil
}

func (m *MemoryGame) Init() error {
	if err := m.setting(); err != nil {
		return err
	}
	m.initialized = true
	return nil
}

func (m *MemoryGame) ready() error {
	if m.closed {
		return ErrClosed
	}
	if !m.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (m *MemoryGame) NewEpisode() error {
	if err := m.ready(); err != nil {
		return err
	}
	m.Episodes += 1
	m.running = true
	m.tic = 0
	return nil
}

func (m *MemoryGame) MakeAction(buttons []float64, tics int) (float64, error) {
	if err := m.ready(); err != nil {
		return 0, err
	}
	if m.config.Buttons > 0 && len(buttons) != m.config.Buttons {
		return 0, fmt.Errorf("expected %d buttons, got %d", m.config.Buttons, len(buttons))
	}
	if tics <= 0 {
		return 0, fmt.Errorf("tics must be positive, got %d", tics)
	}
	recorded := make([]float64, len(buttons))
	copy(recorded, buttons)
	m.Actions = append(m.Actions, recorded)
	m.Tics = append(m.Tics, tics)

	if !m.running {
		return 0, nil
	}

	perTic := float64(0)
	for i, b := range buttons {
		perTic += b * m.weight(i)
	}
	run := tics
	if left := m.config.EpisodeTics - m.tic; run > left {
		run = left
	}
	m.tic += run
	if m.tic >= m.config.EpisodeTics {
		m.running = false
	}
	return perTic * float64(run), nil
}

func (m *MemoryGame) weight(i int) float64 {
	if i < len(m.config.ButtonWeights) {
		return m.config.ButtonWeights[i]
	}
	return float64(i)
}

func (m *MemoryGame) GetState() (*State, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	if !m.running {
		return nil, ErrNoState
	}
	screen := m.frame()
	state := &State{
		Number: m.tic,
		Screen: screen,
	}
	if m.AutomapBuffer {
		automap := mirror(screen)
		state.Automap = &automap
	}
	return state, nil
}

// frame fills the screen with a pattern that shifts with every tic
func (m *MemoryGame) frame() Buffer {
	b := NewBuffer(m.ScreenChannels(), m.ScreenHeight(), m.ScreenWidth())
	for c := 0; c < b.Channels; c++ {
		for y := 0; y < b.Height; y++ {
			row := (c*b.Height + y) * b.Width
			for x := 0; x < b.Width; x++ {
				b.Data[row+x] = uint8(x + 2*y + 64*c + m.tic)
			}
		}
	}
	return b
}

func mirror(src Buffer) Buffer {
	dst := NewBuffer(src.Channels, src.Height, src.Width)
	for c := 0; c < src.Channels; c++ {
		for y := 0; y < src.Height; y++ {
			row := (c*src.Height + y) * src.Width
			for x := 0; x < src.Width; x++ {
				dst.Data[row+x] = src.Data[row+src.Width-1-x]
			}
		}
	}
	return dst
}

func (m *MemoryGame) IsEpisodeFinished() (bool, error) {
	if err := m.ready(); err != nil {
		return false, err
	}
	return !m.running, nil
}

func (m *MemoryGame) ScreenHeight() int {
	return m.Resolution.Height()
}

func (m *MemoryGame) ScreenWidth() int {
	return m.Resolution.Width()
}

func (m *MemoryGame) ScreenChannels() int {
	return m.Format.Channels()
}

func (m *MemoryGame) Close() error {
	m.closed = true
	m.running = false
	return nil
}
