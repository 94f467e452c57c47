package livecalls

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) (*RedisRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisRepo(rdb), mr
}

func TestRedisRepo_UpsertMergeAndList(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := start.Add(time.Minute)

	created, err := repo.Upsert(ctx, Snapshot{
		CallID:       "c1",
		AgentID:      "a1",
		CallerNumber: "+1555",
		Status:       StatusActive,
		StartTime:    start,
		LastUpdated:  now,
		CurrentTopic: "billing",
		Metadata:     json.RawMessage(`{"k":"v"}`),
	})
	require.NoError(t, err)
	assert.True(t, created)

	score := 0.8
	created, err = repo.Upsert(ctx, Snapshot{
		CallID:          "c1",
		AgentID:         "a2",
		Status:          StatusActive,
		StartTime:       start.Add(time.Hour),
		LastUpdated:     now.Add(time.Second),
		CurrentDuration: 61,
		SentimentScore:  &score,
	})
	require.NoError(t, err)
	assert.False(t, created)

	_, err = repo.Upsert(ctx, Snapshot{CallID: "c2", AgentID: "a1", Status: StatusActive, StartTime: start.Add(time.Minute), LastUpdated: now})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, Snapshot{CallID: "c3", AgentID: "a1", Status: "ringing", StartTime: start.Add(2 * time.Minute), LastUpdated: now})
	require.NoError(t, err)

	list, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].CallID)

	lc := list[1]
	assert.Equal(t, "a1", lc.AgentID)
	assert.True(t, lc.StartTime.Equal(start))
	assert.Equal(t, 61, lc.CurrentDuration)
	require.NotNil(t, lc.SentimentScore)
	assert.Equal(t, 0.8, *lc.SentimentScore)
	require.NotNil(t, lc.CurrentTopic)
	assert.Equal(t, "billing", *lc.CurrentTopic)
	assert.JSONEq(t, `{"k":"v"}`, string(lc.Metadata))
	require.NotNil(t, lc.CallerNumber)

	assert.Nil(t, list[0].CallerNumber)
	assert.Equal(t, time.Duration(0), mr.TTL(callKey("c1")), "live rows never expire")
}

func TestRedisRepo_EndRemovesHashAndIndex(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, Snapshot{CallID: "c1", AgentID: "a1", Status: StatusActive, StartTime: time.Now(), LastUpdated: time.Now()})
	require.NoError(t, err)

	require.NoError(t, repo.End(ctx, "c1"))
	require.NoError(t, repo.End(ctx, "c1"))
	assert.False(t, mr.Exists(callKey("c1")))

	list, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
