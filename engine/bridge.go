package engine

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// BridgeError is a non 2xx reply from the engine bridge
type BridgeError struct {
	Op      string
	Status  int
	Message string
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("engine bridge %s: status %d: %s", e.Op, e.Status, e.Message)
}

type settingsRequest struct {
	ConfigPath    string `json:"config_path"`
	Resolution    string `json:"resolution"`
	Format        string `json:"format"`
	DepthBuffer   bool   `json:"depth_buffer"`
	LabelsBuffer  bool   `json:"labels_buffer"`
	AutomapBuffer bool   `json:"automap_buffer"`
	ObjectsInfo   bool   `json:"objects_info"`
	SectorsInfo   bool   `json:"sectors_info"`
	WindowVisible bool   `json:"window_visible"`
}

type initReply struct {
	Height   int `json:"height"`
	Width    int `json:"width"`
	Channels int `json:"channels"`
}

type actionRequest struct {
	Buttons []float64 `json:"buttons"`
	Tics    int       `json:"tics"`
}

type actionReply struct {
	Reward float64 `json:"reward"`
}

type finishedReply struct {
	Finished bool `json:"finished"`
}

type errorReply struct {
	Error string `json:"error"`
}

// bridgeClient speaks the JSON protocol of the engine bridge process
type bridgeClient struct {
	client *resty.Client
}

func newBridgeClient(addr string, timeout time.Duration) *bridgeClient {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	client := resty.New().
		SetHostURL(addr).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &bridgeClient{client: client}
}

func (b *bridgeClient) do(op, method, path string, body, result interface{}) error {
	req := b.client.R().SetError(&errorReply{})
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("engine bridge %s: %w", op, err)
	}
	if resp.IsError() {
		message := ""
		if reply, ok := resp.Error().(*errorReply); ok && reply != nil {
			message = reply.Error
		}
		if message == "" {
			message = strings.TrimSpace(resp.String())
		}
		return &BridgeError{Op: op, Status: resp.StatusCode(), Message: message}
	}
	return nil
}

func (b *bridgeClient) ping() error {
	return b.do("ping", http.MethodGet, "/ping", nil, nil)
}

func (b *bridgeClient) init(settings settingsRequest) (*initReply, error) {
	reply := &initReply{}
	if err := b.do("init", http.MethodPost, "/init", settings, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (b *bridgeClient) newEpisode() error {
	return b.do("new_episode", http.MethodPost, "/new_episode", nil, nil)
}

func (b *bridgeClient) action(buttons []float64, tics int) (float64, error) {
	reply := &actionReply{}
	err := b.do("action", http.MethodPost, "/action", actionRequest{Buttons: buttons, Tics: tics}, reply)
	if err != nil {
		return 0, err
	}
	return reply.Reward, nil
}

func (b *bridgeClient) state() (*State, error) {
	state := &State{}
	err := b.do("state", http.MethodGet, "/state", nil, state)
	if err != nil {
		var bErr *BridgeError
		if errors.As(err, &bErr) && bErr.Status == http.StatusNotFound {
			return nil, ErrNoState
		}
		return nil, err
	}
	if err := state.Screen.Validate(); err != nil {
		return nil, fmt.Errorf("engine bridge state: screen: %w", err)
	}
	if state.Automap != nil {
		if err := state.Automap.Validate(); err != nil {
			return nil, fmt.Errorf("engine bridge state: automap: %w", err)
		}
	}
	return state, nil
}

func (b *bridgeClient) finished() (bool, error) {
	reply := &finishedReply{}
	if err := b.do("finished", http.MethodGet, "/finished", nil, reply); err != nil {
		return false, err
	}
	return reply.Finished, nil
}

func (b *bridgeClient) close() error {
	return b.do("close", http.MethodPost, "/close", nil, nil)
}
