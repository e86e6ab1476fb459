package commands

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/zeu5/doomgym/recorder"
	"github.com/zeu5/doomgym/types"
)

// interruptContext is cancelled on the first interrupt or when stop is called
func interruptContext() (context.Context, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	doneCh := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
			log.Info("interrupted, stopping")
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()

	var once sync.Once
	return ctx, func() { once.Do(func() { close(doneCh) }) }
}

// buildRecorder records to the save folder and, when configured, redis
func buildRecorder(fs afero.Fs, tally *tallyRecorder) (types.Recorder, error) {
	recorders := []types.Recorder{tally}
	if save := config.GetString(saveKey); save != "" {
		file, err := recorder.NewFileRecorder(fs, save)
		if err != nil {
			return nil, err
		}
		recorders = append(recorders, file)
	}
	if addr := config.GetString(redisAddrKey); addr != "" {
		r := recorder.NewRedisRecorder(recorder.RedisConfig{
			Addr:   addr,
			Key:    config.GetString(redisKeyKey),
			MaxLen: config.GetInt64(redisMaxLenKey),
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, err
		}
		recorders = append(recorders, r)
	}
	return recorder.NewMultiRecorder(recorders...), nil
}

// tallyRecorder counts what the recorded episodes add up to
type tallyRecorder struct {
	Episodes int64
	Steps    int64
	Terminal int64
	Failed   int64
}

func (t *tallyRecorder) Record(s types.EpisodeSummary) error {
	t.Episodes += 1
	t.Steps += int64(s.Steps)
	if s.Terminal {
		t.Terminal += 1
	}
	if s.Error != "" || s.TimedOut {
		t.Failed += 1
	}
	return nil
}

func (t *tallyRecorder) Close() error {
	return nil
}
