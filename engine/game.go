package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNoState is returned by GetState when no episode is running,
	// including right after the episode has finished.
	ErrNoState = errors.New("no game state available")
	// ErrNotInitialized is returned by calls that need Init first
	ErrNotInitialized = errors.New("game not initialized")
	// ErrAlreadyInitialized is returned by setters invoked after Init
	ErrAlreadyInitialized = errors.New("game already initialized")
	// ErrClosed is returned by any call made after Close
	ErrClosed = errors.New("game closed")
)

// Game is a live engine session. The calling convention follows the
// native engine: configure, load a scenario config, Init, then alternate
// NewEpisode / MakeAction until the episode finishes.
//
// A Game is owned by a single caller and is not safe for concurrent use.
type Game interface {
	SetScreenResolution(ScreenResolution) error
	SetScreenFormat(ScreenFormat) error
	SetDepthBufferEnabled(bool) error
	SetLabelsBufferEnabled(bool) error
	SetAutomapBufferEnabled(bool) error
	SetObjectsInfoEnabled(bool) error
	SetSectorsInfoEnabled(bool) error
	SetWindowVisible(bool) error

	// LoadConfig points the session at a scenario configuration file.
	// The file is interpreted by the engine.
	LoadConfig(path string) error
	Init() error

	NewEpisode() error
	// MakeAction holds the button activations for the given number of
	// tics and returns the reward collected over those tics.
	MakeAction(buttons []float64, tics int) (float64, error)
	GetState() (*State, error)
	IsEpisodeFinished() (bool, error)

	ScreenHeight() int
	ScreenWidth() int
	ScreenChannels() int

	Close() error
}

// Buffer is a raw frame as produced by the engine, channel first.
type Buffer struct {
	Channels int     `json:"channels"`
	Height   int     `json:"height"`
	Width    int     `json:"width"`
	Data     []uint8 `json:"data"`
}

// NewBuffer allocates a zeroed channel first buffer
func NewBuffer(channels, height, width int) Buffer {
	return Buffer{
		Channels: channels,
		Height:   height,
		Width:    width,
		Data:     make([]uint8, channels*height*width),
	}
}

// Validate checks that the data length agrees with the dimensions
func (b Buffer) Validate() error {
	if b.Channels <= 0 || b.Height <= 0 || b.Width <= 0 {
		return fmt.Errorf("invalid buffer dimensions %dx%dx%d", b.Channels, b.Height, b.Width)
	}
	if len(b.Data) != b.Channels*b.Height*b.Width {
		return fmt.Errorf("buffer holds %d bytes, dimensions %dx%dx%d need %d",
			len(b.Data), b.Channels, b.Height, b.Width, b.Channels*b.Height*b.Width)
	}
	return nil
}

// At returns the value at channel c, row y, column x
func (b Buffer) At(c, y, x int) uint8 {
	return b.Data[(c*b.Height+y)*b.Width+x]
}

// State of the running episode
type State struct {
	// Number is the tic count of the current episode
	Number  int     `json:"number"`
	Screen  Buffer  `json:"screen"`
	Automap *Buffer `json:"automap,omitempty"`
}
