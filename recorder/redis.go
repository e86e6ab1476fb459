package recorder

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/zeu5/doomgym/types"
)

const DefaultRedisKey = "doomgym:episodes"

type RedisConfig struct {
	Addr string
	Key  string
	// MaxLen trims the list to the most recent entries when positive
	MaxLen  int64
	Timeout time.Duration
}

// RedisRecorder pushes the json summaries onto a redis list
type RedisRecorder struct {
	client *redis.Client
	config RedisConfig
}

var _ types.Recorder = &RedisRecorder{}

func NewRedisRecorder(config RedisConfig) *RedisRecorder {
	if config.Timeout <= 0 {
		config.Timeout = time.Second
	}
	return NewRedisRecorderWithClient(redis.NewClient(&redis.Options{
		Addr:        config.Addr,
		DialTimeout: config.Timeout,
	}), config)
}

func NewRedisRecorderWithClient(client *redis.Client, config RedisConfig) *RedisRecorder {
	if config.Key == "" {
		config.Key = DefaultRedisKey
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Second
	}
	return &RedisRecorder{client: client, config: config}
}

// Ping checks the server is reachable
func (r *RedisRecorder) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRecorder) Record(s types.EpisodeSummary) error {
	bs, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	if r.config.MaxLen <= 0 {
		return r.client.RPush(ctx, r.config.Key, bs).Err()
	}
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, r.config.Key, bs)
	pipe.LTrim(ctx, r.config.Key, -r.config.MaxLen, -1)
	_, err = pipe.Exec(ctx)
	return err
}

// Summaries reads back the recorded summaries in order
func (r *RedisRecorder) Summaries(ctx context.Context) ([]types.EpisodeSummary, error) {
	values, err := r.client.LRange(ctx, r.config.Key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]types.EpisodeSummary, 0, len(values))
	for _, v := range values {
		s := types.EpisodeSummary{}
		if err := json.Unmarshal([]byte(v), &s); err != nil {
			log.WithFields(logrus.Fields{"key": r.config.Key}).WithError(err).Warn("skipping malformed summary")
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *RedisRecorder) Close() error {
	return r.client.Close()
}
