package livecalls

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "livecall:"
	redisIndexKey  = "livecalls:active"
)

// RedisRepo keeps the live working set in Redis: one hash per call plus a sorted
// set of call ids scored by start time. Keys never expire.
type RedisRepo struct {
	rdb *redis.Client
}

func NewRedisRepo(rdb *redis.Client) *RedisRepo { return &RedisRepo{rdb: rdb} }

func callKey(callID string) string { return redisKeyPrefix + callID }

var upsertLiveCallScript = redis.NewScript(`
-- KEYS[1] = call hash, KEYS[2] = start-time index
-- ARGV: call_id, agent_id, caller_number, start_time, start_ms,
--       status, last_updated, current_duration, sentiment_score, current_topic, metadata
-- Returns 1 when the call was created, 0 when merged.
local created = redis.call('EXISTS', KEYS[1]) == 0
if created then
  redis.call('HSET', KEYS[1], 'call_id', ARGV[1], 'agent_id', ARGV[2], 'start_time', ARGV[4])
  if ARGV[3] ~= '' then
    redis.call('HSET', KEYS[1], 'caller_number', ARGV[3])
  end
  redis.call('ZADD', KEYS[2], ARGV[5], ARGV[1])
end
redis.call('HSET', KEYS[1], 'status', ARGV[6], 'last_updated', ARGV[7], 'current_duration', ARGV[8])
if ARGV[9] ~= '' then
  redis.call('HSET', KEYS[1], 'sentiment_score', ARGV[9])
end
if ARGV[10] ~= '' then
  redis.call('HSET', KEYS[1], 'current_topic', ARGV[10])
end
if ARGV[11] ~= '' then
  redis.call('HSET', KEYS[1], 'metadata', ARGV[11])
end
if created then
  return 1
end
return 0
`)

func (r *RedisRepo) Upsert(ctx context.Context, s Snapshot) (bool, error) {
	sentiment := ""
	if s.SentimentScore != nil {
		sentiment = strconv.FormatFloat(*s.SentimentScore, 'f', -1, 64)
	}
	res, err := upsertLiveCallScript.Run(ctx, r.rdb,
		[]string{callKey(s.CallID), redisIndexKey},
		s.CallID,
		s.AgentID,
		s.CallerNumber,
		s.StartTime.UTC().Format(time.RFC3339Nano),
		s.StartTime.UnixMilli(),
		s.Status,
		s.LastUpdated.UTC().Format(time.RFC3339Nano),
		s.CurrentDuration,
		sentiment,
		s.CurrentTopic,
		string(s.Metadata),
	).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (r *RedisRepo) End(ctx context.Context, callID string) error {
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, callKey(callID))
		p.ZRem(ctx, redisIndexKey, callID)
		return nil
	})
	return err
}

func (r *RedisRepo) ListActive(ctx context.Context) ([]LiveCall, error) {
	ids, err := r.rdb.ZRevRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = p.HGetAll(ctx, callKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]LiveCall, 0, len(ids))
	for _, cmd := range cmds {
		h := cmd.Val()
		if len(h) == 0 || h["status"] != StatusActive {
			continue
		}
		lc, err := decodeHash(h)
		if err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, nil
}

func decodeHash(h map[string]string) (LiveCall, error) {
	lc := LiveCall{
		CallID:  h["call_id"],
		AgentID: h["agent_id"],
		Status:  h["status"],
	}
	var err error
	if lc.StartTime, err = time.Parse(time.RFC3339Nano, h["start_time"]); err != nil {
		return LiveCall{}, fmt.Errorf("live call %s: start_time: %w", lc.CallID, err)
	}
	if v := h["last_updated"]; v != "" {
		if lc.LastUpdated, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return LiveCall{}, fmt.Errorf("live call %s: last_updated: %w", lc.CallID, err)
		}
	}
	if v := h["current_duration"]; v != "" {
		if lc.CurrentDuration, err = strconv.Atoi(v); err != nil {
			return LiveCall{}, fmt.Errorf("live call %s: current_duration: %w", lc.CallID, err)
		}
	}
	if v, ok := h["caller_number"]; ok {
		lc.CallerNumber = &v
	}
	if v, ok := h["sentiment_score"]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return LiveCall{}, fmt.Errorf("live call %s: sentiment_score: %w", lc.CallID, err)
		}
		lc.SentimentScore = &f
	}
	if v, ok := h["current_topic"]; ok {
		lc.CurrentTopic = &v
	}
	if v, ok := h["metadata"]; ok {
		lc.Metadata = json.RawMessage(v)
	}
	return lc, nil
}
