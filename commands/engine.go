package commands

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/zeu5/doomgym/doom"
	"github.com/zeu5/doomgym/engine"
	"github.com/zeu5/doomgym/server"
)

const (
	processEngine = "process"
	memoryEngine  = "memory"
)

var engineKinds = []string{processEngine, memoryEngine}

// gameFactory returns a factory of engine sessions as configured. Every
// bridge process gets its own port and working directory.
func gameFactory() (server.GameFactory, error) {
	kind := config.GetString(engineKey)
	switch kind {
	case memoryEngine:
		tics := config.GetInt(engineEpisodeKey)
		return func() (engine.Game, error) {
			return engine.NewMemoryGame(engine.MemoryConfig{EpisodeTics: tics}), nil
		}, nil
	case processEngine:
	default:
		return nil, fmt.Errorf("unknown engine %q, expecting one of %v", kind, engineKinds)
	}

	host, portS, err := net.SplitHostPort(config.GetString(engineAddrKey))
	if err != nil {
		return nil, fmt.Errorf("invalid engine address: %w", err)
	}
	port, err := strconv.Atoi(portS)
	if err != nil {
		return nil, fmt.Errorf("invalid engine port %q: %w", portS, err)
	}

	dir := config.GetString(engineDirKey)
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "doomgym")
	}

	var started int64
	return func() (engine.Game, error) {
		i := int(atomic.AddInt64(&started, 1) - 1)
		return engine.StartProcessGame(&engine.ProcessConfig{
			BinaryPath:     config.GetString(engineBinaryKey),
			Addr:           net.JoinHostPort(host, strconv.Itoa(port+i)),
			WorkingDir:     filepath.Join(dir, strconv.Itoa(i)),
			RequestTimeout: config.GetDuration(engineTimeoutKey),
		})
	}, nil
}

// newEnv starts an engine session and wraps it for the configured level
func newEnv(newGame server.GameFactory, opts ...doom.Option) (*doom.Env, error) {
	game, err := newGame()
	if err != nil {
		return nil, fmt.Errorf("starting engine: %w", err)
	}
	opts = append([]doom.Option{doom.WithScenarioDir(config.GetString(scenarioDirKey))}, opts...)
	env, err := doom.New(config.GetInt(levelKey), game, opts...)
	if err != nil {
		game.Close()
		return nil, err
	}
	return env, nil
}
