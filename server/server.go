// Package server exposes environments over HTTP so that trainers written
// in any language can drive them
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/zeu5/doomgym/doom"
	"github.com/zeu5/doomgym/engine"
	"github.com/zeu5/doomgym/types"
)

var log = logrus.WithField("component", "server")

var ErrUnknownInstance = errors.New("unknown instance")

// GameFactory creates the engine session of a new environment
type GameFactory func() (engine.Game, error)

type Config struct {
	Addr        string
	ScenarioDir string
	NewGame     GameFactory
	// Viewer used by step requests asking to render, frames are dropped when nil
	Viewer doom.ViewerFactory
}

// instance serializes the calls to its environment
type instance struct {
	lock  sync.Mutex
	level int
	env   *doom.Env
}

type Server struct {
	config Config
	router *gin.Engine
	server *http.Server

	lock      sync.Mutex
	instances map[string]*instance
}

func New(config Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	s := &Server{
		config:    config,
		router:    r,
		instances: make(map[string]*instance),
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	r.Use(cors.New(corsConfig))
	r.Use(ginErrorHandlerMiddleware)
	r.Use(ginLoggerMiddleware)
	r.Use(gin.Recovery())

	v1 := r.Group("/v1")
	v1.GET("/scenarios", s.handleScenarios)
	v1.GET("/keys", s.handleKeys)
	v1.POST("/envs", s.handleCreate)
	v1.GET("/envs", s.handleList)

	envs := v1.Group("/envs/:id")
	envs.POST("/reset", s.handleReset)
	envs.POST("/step", s.handleStep)
	envs.GET("/action_space", s.handleActionSpace)
	envs.GET("/observation_space", s.handleObservationSpace)
	envs.POST("/close", s.handleClose)

	s.server = &http.Server{
		Addr:    config.Addr,
		Handler: r,
	}
	return s
}

// Handler serves the API without listening
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down and closes every
// remaining environment
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.config.Addr).Info("serving environments")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.Close()
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.server.Shutdown(shutdownCtx)
	return errors.Join(err, s.Close())
}

// Close closes every environment
func (s *Server) Close() error {
	s.lock.Lock()
	instances := s.instances
	s.instances = make(map[string]*instance)
	s.lock.Unlock()

	var errs []error
	for id, inst := range instances {
		inst.lock.Lock()
		if err := inst.env.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", id, err))
		}
		inst.lock.Unlock()
	}
	return errors.Join(errs...)
}

func (s *Server) get(id string) (*instance, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	inst, ok := s.instances[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstance, id)
	}
	return inst, nil
}

// withInstance runs f holding the lock of the instance named in the path
func (s *Server) withInstance(c *gin.Context, f func(*instance)) {
	inst, err := s.get(c.Param("id"))
	if err != nil {
		abort(c, http.StatusNotFound, err)
		return
	}
	inst.lock.Lock()
	defer inst.lock.Unlock()
	f(inst)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, doom.ErrLevelOutOfRange), errors.Is(err, doom.ErrActionOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownInstance):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleScenarios(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"scenarios": doom.Scenarios})
}

func (s *Server) handleKeys(c *gin.Context) {
	keys := make(map[string]int)
	for combo, action := range doom.KeysToAction() {
		keys[string(combo)] = action
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

type createRequest struct {
	Level *int `json:"level" binding:"required"`
}

func (s *Server) handleCreate(c *gin.Context) {
	req := createRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, fmt.Errorf("failed to unmarshal request: %w", err))
		return
	}
	if _, err := doom.LookupScenario(*req.Level); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if s.config.NewGame == nil {
		abort(c, http.StatusInternalServerError, errors.New("no engine configured"))
		return
	}
	game, err := s.config.NewGame()
	if err != nil {
		abort(c, http.StatusInternalServerError, fmt.Errorf("creating engine session: %w", err))
		return
	}

	opts := []doom.Option{doom.WithViewer(s.config.Viewer)}
	if s.config.ScenarioDir != "" {
		opts = append(opts, doom.WithScenarioDir(s.config.ScenarioDir))
	}
	env, err := doom.New(*req.Level, game, opts...)
	if err != nil {
		game.Close()
		abort(c, statusOf(err), err)
		return
	}

	id := uuid.NewString()
	s.lock.Lock()
	s.instances[id] = &instance{level: *req.Level, env: env}
	s.lock.Unlock()

	log.WithFields(logrus.Fields{"instance": id, "scenario": env.Scenario().Name}).Info("environment created")
	c.JSON(http.StatusOK, gin.H{"instance_id": id})
}

type instanceInfo struct {
	ID       string `json:"instance_id"`
	Level    int    `json:"level"`
	Scenario string `json:"scenario"`
}

func (s *Server) handleList(c *gin.Context) {
	s.lock.Lock()
	ids := maps.Keys(s.instances)
	slices.Sort(ids)
	out := make([]instanceInfo, 0, len(ids))
	for _, id := range ids {
		level := s.instances[id].level
		out = append(out, instanceInfo{ID: id, Level: level, Scenario: doom.Scenarios[level].Name})
	}
	s.lock.Unlock()
	c.JSON(http.StatusOK, gin.H{"envs": out})
}

func (s *Server) handleReset(c *gin.Context) {
	s.withInstance(c, func(inst *instance) {
		obs, err := inst.env.Reset()
		if err != nil {
			abort(c, statusOf(err), err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"observation": obs})
	})
}

type stepRequest struct {
	Action *int `json:"action" binding:"required"`
	Render bool `json:"render"`
}

type stepReply struct {
	Observation types.Observation `json:"observation"`
	Reward      float64           `json:"reward"`
	Done        bool              `json:"done"`
	Info        types.Info        `json:"info"`
}

func (s *Server) handleStep(c *gin.Context) {
	req := stepRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, fmt.Errorf("failed to unmarshal request: %w", err))
		return
	}
	s.withInstance(c, func(inst *instance) {
		result, err := inst.env.Step(*req.Action)
		if err != nil {
			abort(c, statusOf(err), err)
			return
		}
		if req.Render {
			inst.env.Render(types.RenderHuman)
		}
		c.JSON(http.StatusOK, stepReply{
			Observation: result.Observation,
			Reward:      result.Reward,
			Done:        result.Done,
			Info:        result.Info,
		})
	})
}

func (s *Server) handleActionSpace(c *gin.Context) {
	s.withInstance(c, func(inst *instance) {
		c.JSON(http.StatusOK, inst.env.ActionSpace())
	})
}

func (s *Server) handleObservationSpace(c *gin.Context) {
	s.withInstance(c, func(inst *instance) {
		c.JSON(http.StatusOK, inst.env.ObservationSpace())
	})
}

func (s *Server) handleClose(c *gin.Context) {
	id := c.Param("id")
	s.lock.Lock()
	inst, ok := s.instances[id]
	delete(s.instances, id)
	s.lock.Unlock()
	if !ok {
		abort(c, http.StatusNotFound, fmt.Errorf("%w: %s", ErrUnknownInstance, id))
		return
	}

	inst.lock.Lock()
	defer inst.lock.Unlock()
	if err := inst.env.Close(); err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	log.WithField("instance", id).Info("environment closed")
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
