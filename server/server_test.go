package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeu5/doomgym/doom"
	"github.com/zeu5/doomgym/engine"
	"github.com/zeu5/doomgym/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := New(Config{
		NewGame: func() (engine.Game, error) {
			return engine.NewMemoryGame(engine.MemoryConfig{EpisodeTics: 8}), nil
		},
	})
	t.Cleanup(func() { s.Close() })
	return s
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(bs)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func create(t *testing.T, s *Server, level int) string {
	t.Helper()
	w := do(t, s, http.MethodPost, "/v1/envs", map[string]int{"level": level})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reply := map[string]string{}
	decode(t, w, &reply)
	require.NotEmpty(t, reply["instance_id"])
	return reply["instance_id"]
}

func TestScenariosAndKeys(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/v1/scenarios", nil)
	require.Equal(t, http.StatusOK, w.Code)
	scenarios := struct {
		Scenarios []doom.Scenario `json:"scenarios"`
	}{}
	decode(t, w, &scenarios)
	assert.Equal(t, doom.Scenarios, scenarios.Scenarios)

	w = do(t, s, http.MethodGet, "/v1/keys", nil)
	require.Equal(t, http.StatusOK, w.Code)
	keys := struct {
		Keys map[string]int `json:"keys"`
	}{}
	decode(t, w, &keys)
	assert.Equal(t, 2, keys.Keys[""])
	assert.Equal(t, 6, keys.Keys["e"])
	assert.Len(t, keys.Keys, 7)
}

func TestEnvironmentRoundTrip(t *testing.T) {
	s := newTestServer(t)
	id := create(t, s, 7)

	w := do(t, s, http.MethodGet, "/v1/envs/"+id+"/action_space", nil)
	require.Equal(t, http.StatusOK, w.Code)
	space := types.Discrete{}
	decode(t, w, &space)
	assert.Equal(t, 2, space.N)

	w = do(t, s, http.MethodGet, "/v1/envs/"+id+"/observation_space", nil)
	require.Equal(t, http.StatusOK, w.Code)
	box := types.Box{}
	decode(t, w, &box)
	assert.Equal(t, []int{480, 640, 3}, box.Shape)
	assert.Equal(t, uint8(255), box.High)

	w = do(t, s, http.MethodPost, "/v1/envs/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reset := struct {
		Observation types.Observation `json:"observation"`
	}{}
	decode(t, w, &reset)
	assert.True(t, reset.Observation.HasShape(box.Shape))

	step := stepReply{}
	w = do(t, s, http.MethodPost, "/v1/envs/"+id+"/step", map[string]interface{}{"action": 1, "render": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &step)
	assert.False(t, step.Done)
	assert.Equal(t, float64(4), step.Reward)
	assert.Empty(t, step.Info)

	w = do(t, s, http.MethodPost, "/v1/envs/"+id+"/step", map[string]interface{}{"action": 1})
	require.Equal(t, http.StatusOK, w.Code)
	step = stepReply{}
	decode(t, w, &step)
	assert.True(t, step.Done)
	assert.True(t, step.Observation.IsZero())
	assert.True(t, step.Observation.HasShape(box.Shape))
	assert.Equal(t, types.Info{doom.ScoreKey: 8}, step.Info)

	w = do(t, s, http.MethodPost, "/v1/envs/"+id+"/close", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, s, http.MethodPost, "/v1/envs/"+id+"/reset", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListEnvironments(t *testing.T) {
	s := newTestServer(t)
	a := create(t, s, 0)
	b := create(t, s, 8)

	w := do(t, s, http.MethodGet, "/v1/envs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reply := struct {
		Envs []instanceInfo `json:"envs"`
	}{}
	decode(t, w, &reply)
	require.Len(t, reply.Envs, 2)

	levels := map[string]int{}
	for _, e := range reply.Envs {
		levels[e.ID] = e.Level
	}
	assert.Equal(t, map[string]int{a: 0, b: 8}, levels)
}

func TestRequestErrors(t *testing.T) {
	s := newTestServer(t)
	id := create(t, s, 0)

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		code   int
	}{
		{"level out of range", http.MethodPost, "/v1/envs", map[string]int{"level": 10}, http.StatusBadRequest},
		{"missing level", http.MethodPost, "/v1/envs", map[string]int{}, http.StatusBadRequest},
		{"unknown instance", http.MethodPost, "/v1/envs/nope/reset", nil, http.StatusNotFound},
		{"unknown close", http.MethodPost, "/v1/envs/nope/close", nil, http.StatusNotFound},
		{"missing action", http.MethodPost, "/v1/envs/" + id + "/step", map[string]int{}, http.StatusBadRequest},
		{"action out of range", http.MethodPost, "/v1/envs/" + id + "/step", map[string]int{"action": 3}, http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := do(t, s, c.method, c.path, c.body)
			assert.Equal(t, c.code, w.Code)
			reply := map[string]interface{}{}
			decode(t, w, &reply)
			assert.NotEmpty(t, reply["message"])
		})
	}
}

func TestEngineFailures(t *testing.T) {
	s := New(Config{
		NewGame: func() (engine.Game, error) {
			return nil, errors.New("no engine binary")
		},
	})
	defer s.Close()

	w := do(t, s, http.MethodPost, "/v1/envs", map[string]int{"level": 0})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "no engine binary")
}

func TestCloseClosesEveryEnvironment(t *testing.T) {
	games := make([]*engine.MemoryGame, 0)
	s := New(Config{
		NewGame: func() (engine.Game, error) {
			g := engine.NewMemoryGame(engine.MemoryConfig{})
			games = append(games, g)
			return g, nil
		},
	})
	create(t, s, 0)
	create(t, s, 1)

	require.NoError(t, s.Close())
	for _, g := range games {
		_, err := g.IsEpisodeFinished()
		assert.ErrorIs(t, err, engine.ErrClosed)
	}
}
