package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/imdario/mergo"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "engine")

// ProcessConfig configures the engine bridge process backing a ProcessGame
type ProcessConfig struct {
	// BinaryPath of the engine bridge executable
	BinaryPath string
	// Addr the bridge listens on, passed to it as --addr
	Addr string
	// WorkingDir is created for the process and removed on Close
	WorkingDir string
	// RequestTimeout bounds every call made to the bridge
	RequestTimeout time.Duration
	// StartTimeout bounds the wait for the bridge to answer pings
	StartTimeout time.Duration
	// Args are appended to the bridge command line
	Args []string
}

var defaultProcessConfig = ProcessConfig{
	BinaryPath:     "vizdoom-bridge",
	Addr:           "127.0.0.1:7777",
	WorkingDir:     filepath.Join(os.TempDir(), "doomgym"),
	RequestTimeout: 10 * time.Second,
	StartTimeout:   10 * time.Second,
}

// SetDefaults fills every unset field from the defaults
func (c *ProcessConfig) SetDefaults() error {
	return mergo.Merge(c, defaultProcessConfig)
}

func (c *ProcessConfig) commandArgs() []string {
	args := []string{
		"--addr", c.Addr,
		"--dir", c.WorkingDir,
	}
	return append(args, c.Args...)
}

// ProcessGame is a Game served by an engine bridge process. The bridge
// embeds the native engine and exposes its calls as a JSON over HTTP
// protocol, see bridge.go.
type ProcessGame struct {
	config *ProcessConfig
	client *bridgeClient

	process *exec.Cmd
	cancel  context.CancelFunc
	stdout  *syncBuffer
	stderr  *syncBuffer

	settings    settingsRequest
	initialized bool
	closed      bool
	height      int
	width       int
	channels    int
}

var _ Game = &ProcessGame{}

// StartProcessGame launches the bridge and waits until it answers
func StartProcessGame(config *ProcessConfig) (*ProcessGame, error) {
	if err := config.SetDefaults(); err != nil {
		return nil, fmt.Errorf("engine process config: %w", err)
	}
	if err := os.MkdirAll(config.WorkingDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating engine working dir: %w", err)
	}

	g := attachProcessGame(config, newBridgeClient(config.Addr, config.RequestTimeout))
	if err := g.startProcess(); err != nil {
		return nil, err
	}

	if err := g.waitReady(config.StartTimeout); err != nil {
		g.stop()
		_, stderr := g.Logs()
		return nil, fmt.Errorf("engine bridge did not become ready: %w\n%s", err, stderr)
	}
	log.WithField("addr", config.Addr).Info("engine bridge ready")
	return g, nil
}

// startProcess launches the bridge without waiting for it. Its output is
// collected for Logs while it runs.
func (g *ProcessGame) startProcess() error {
	ctx, cancel := context.WithCancel(context.Background())
	g.process = exec.CommandContext(ctx, g.config.BinaryPath, g.config.commandArgs()...)
	g.process.Dir = g.config.WorkingDir
	g.cancel = cancel
	g.stdout = new(syncBuffer)
	g.stderr = new(syncBuffer)
	g.process.Stdout = g.stdout
	g.process.Stderr = g.stderr

	log.WithFields(logrus.Fields{
		"binary": g.config.BinaryPath,
		"addr":   g.config.Addr,
	}).Debug("starting engine bridge")
	if err := g.process.Start(); err != nil {
		cancel()
		g.process = nil
		return fmt.Errorf("starting engine bridge %q: %w", g.config.BinaryPath, err)
	}
	return nil
}

// syncBuffer is written by the exec copying goroutines while Logs reads it
type syncBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}

// attachProcessGame wraps an already running bridge
func attachProcessGame(config *ProcessConfig, client *bridgeClient) *ProcessGame {
	return &ProcessGame{
		config: config,
		client: client,
		cancel: func() {},
		settings: settingsRequest{
			Resolution: RES_320X240.String(),
			Format:     CRCGCB.String(),
		},
	}
}

func (g *ProcessGame) waitReady(timeout time.Duration) error {
	deadline := time.After(timeout)
	var lastErr error
	for {
		if lastErr = g.client.ping(); lastErr == nil {
			return nil
		}
		select {
		case <-deadline:
			return lastErr
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// Logs returns what the bridge process wrote so far
func (g *ProcessGame) Logs() (string, string) {
	if g.stdout == nil || g.stderr == nil {
		return "", ""
	}
	return g.stdout.String(), g.stderr.String()
}

func (g *ProcessGame) setting() error {
	if g.closed {
		return ErrClosed
	}
	if g.initialized {
		return ErrAlreadyInitialized
	}
	return nil
}

func (g *ProcessGame) SetScreenResolution(r ScreenResolution) error {
	if err := g.setting(); err != nil {
		return err
	}
	if !r.Valid() {
		return fmt.Errorf("invalid screen resolution %s", r)
	}
	g.settings.Resolution = r.String()
	return nil
}

func (g *ProcessGame) SetScreenFormat(f ScreenFormat) error {
	if err := g.setting(); err != nil {
		return err
	}
	g.settings.Format = f.String()
	return nil
}

func (g *ProcessGame) SetDepthBufferEnabled(v bool) error {
	if err := g.setting(); err != nil {
		return err
	}
	g.settings.DepthBuffer = v
	return nil
}

func (g *ProcessGame) SetLabelsBufferEnabled(v bool) error {
	if err := g.setting(); err != nil {
		return err
	}
	g.settings.LabelsBuffer = v
	return nil
}

func (g *ProcessGame) SetAutomapBufferEnabled(v bool) error {
	if err := g.setting(); err != nil {
		return err
	}
	g.settings.AutomapBuffer = v
	return nil
}

func (g *ProcessGame) SetObjectsInfoEnabled(v bool) error {
	if err := g.setting(); err != nil {
		return err
	}
	g.settings.ObjectsInfo = v
	return nil
}

func (g *ProcessGame) SetSectorsInfoEnabled(v bool) error {
	if err := g.setting(); err != nil {
		return err
	}
	g.settings.SectorsInfo = v
	return nil
}

func (g *ProcessGame) SetWindowVisible(v bool) error {
	if err := g.setting(); err != nil {
		return err
	}
	g.settings.WindowVisible = v
	return nil
}

func (g *ProcessGame) LoadConfig(path string) error {
	if err := g.setting(); err != nil {
		return err
	}
	g.settings.ConfigPath = path
	return nil
}

// Init sends the accumulated settings to the bridge, which loads the
// config and initializes the engine.
func (g *ProcessGame) Init() error {
	if err := g.setting(); err != nil {
		return err
	}
	reply, err := g.client.init(g.settings)
	if err != nil {
		return err
	}
	g.height, g.width, g.channels = reply.Height, reply.Width, reply.Channels
	g.initialized = true
	log.WithFields(logrus.Fields{
		"config": g.settings.ConfigPath,
		"screen": fmt.Sprintf("%dx%dx%d", g.height, g.width, g.channels),
	}).Debug("engine initialized")
	return nil
}

func (g *ProcessGame) ready() error {
	if g.closed {
		return ErrClosed
	}
	if !g.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (g *ProcessGame) NewEpisode() error {
	if err := g.ready(); err != nil {
		return err
	}
	return g.client.newEpisode()
}

func (g *ProcessGame) MakeAction(buttons []float64, tics int) (float64, error) {
	if err := g.ready(); err != nil {
		return 0, err
	}
	return g.client.action(buttons, tics)
}

func (g *ProcessGame) GetState() (*State, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	return g.client.state()
}

func (g *ProcessGame) IsEpisodeFinished() (bool, error) {
	if err := g.ready(); err != nil {
		return false, err
	}
	return g.client.finished()
}

func (g *ProcessGame) ScreenHeight() int {
	return g.height
}

func (g *ProcessGame) ScreenWidth() int {
	return g.width
}

func (g *ProcessGame) ScreenChannels() int {
	return g.channels
}

// Close asks the bridge to shut the engine down, then kills the process
// and removes the working directory.
func (g *ProcessGame) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true

	started := g.process != nil
	var errs []error
	if g.initialized {
		if err := g.client.close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := g.stop(); err != nil {
		errs = append(errs, err)
	}
	if started && g.config.WorkingDir != "" {
		if err := os.RemoveAll(g.config.WorkingDir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *ProcessGame) stop() error {
	if g.process == nil {
		return nil
	}
	g.cancel()
	err := g.process.Wait()
	g.process = nil
	if err != nil && err.Error() != "signal: killed" && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("engine bridge exited: %w", err)
	}
	return nil
}
