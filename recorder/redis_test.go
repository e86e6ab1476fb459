package recorder

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeu5/doomgym/types"
)

func newTestRedisRecorder(t *testing.T, config RedisConfig) (*RedisRecorder, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	config.Addr = server.Addr()
	r := NewRedisRecorder(config)
	t.Cleanup(func() { r.Close() })
	require.NoError(t, r.Ping(context.Background()))
	return r, server
}

func TestRedisRecorderKeepsOrder(t *testing.T) {
	r, server := newTestRedisRecorder(t, RedisConfig{Key: "episodes"})

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Record(types.EpisodeSummary{
			Experiment: "random",
			Episode:    i,
			Score:      float64(i),
		}))
	}

	summaries, err := r.Summaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 5)
	for i, s := range summaries {
		assert.Equal(t, "random", s.Experiment)
		assert.Equal(t, i, s.Episode)
		assert.Equal(t, float64(i), s.Score)
	}
	assert.True(t, server.Exists("episodes"))
	assert.False(t, server.Exists(DefaultRedisKey))
}

func TestRedisRecorderMaxLenKeepsNewest(t *testing.T) {
	r, _ := newTestRedisRecorder(t, RedisConfig{MaxLen: 2})

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Record(types.EpisodeSummary{Episode: i}))
	}

	summaries, err := r.Summaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 3, summaries[0].Episode)
	assert.Equal(t, 4, summaries[1].Episode)
}

func TestRedisRecorderSkipsMalformedEntries(t *testing.T) {
	r, _ := newTestRedisRecorder(t, RedisConfig{})
	ctx := context.Background()

	require.NoError(t, r.Record(types.EpisodeSummary{Episode: 0}))
	require.NoError(t, r.client.RPush(ctx, DefaultRedisKey, "not json").Err())
	require.NoError(t, r.Record(types.EpisodeSummary{Episode: 1}))

	summaries, err := r.Summaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, 0, summaries[0].Episode)
	assert.Equal(t, 1, summaries[1].Episode)
}

func TestRedisRecorderServerGone(t *testing.T) {
	r, server := newTestRedisRecorder(t, RedisConfig{})
	server.Close()

	assert.Error(t, r.Record(types.EpisodeSummary{}))
	_, err := r.Summaries(context.Background())
	assert.Error(t, err)
}
