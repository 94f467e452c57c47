package livecalls

import (
	"context"
	"database/sql"
	"encoding/json"
)

// PostgresRepo keeps the live working set in the live_calls table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const upsertLiveCallSQL = `
INSERT INTO live_calls (
  call_id, agent_id, caller_number, status, start_time, last_updated,
  current_duration, sentiment_score, current_topic, metadata
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb)
ON CONFLICT (call_id) DO UPDATE SET
  status = EXCLUDED.status,
  last_updated = EXCLUDED.last_updated,
  current_duration = EXCLUDED.current_duration,
  sentiment_score = COALESCE(EXCLUDED.sentiment_score, live_calls.sentiment_score),
  current_topic = COALESCE(EXCLUDED.current_topic, live_calls.current_topic),
  metadata = COALESCE(EXCLUDED.metadata, live_calls.metadata)
RETURNING (xmax = 0) AS inserted
`

func (r *PostgresRepo) Upsert(ctx context.Context, s Snapshot) (bool, error) {
	var sentiment any
	if s.SentimentScore != nil {
		sentiment = *s.SentimentScore
	}
	var inserted bool
	err := r.db.QueryRowContext(ctx, upsertLiveCallSQL,
		s.CallID,
		s.AgentID,
		nullIfEmpty(s.CallerNumber),
		s.Status,
		s.StartTime,
		s.LastUpdated,
		int64(s.CurrentDuration),
		sentiment,
		nullIfEmpty(s.CurrentTopic),
		nullIfEmpty(string(s.Metadata)),
	).Scan(&inserted)
	return inserted, err
}

func (r *PostgresRepo) End(ctx context.Context, callID string) error {
	const q = `DELETE FROM live_calls WHERE call_id = $1`
	_, err := r.db.ExecContext(ctx, q, callID)
	return err
}

const listLiveCallsSQL = `
SELECT lc.call_id, lc.agent_id, COALESCE(a.agent_name, ''), lc.caller_number, lc.status,
       lc.start_time, lc.last_updated, lc.current_duration, lc.sentiment_score,
       lc.current_topic, lc.metadata
FROM live_calls lc
LEFT JOIN agents a ON lc.agent_id = a.agent_id
WHERE lc.status = 'active'
ORDER BY lc.start_time DESC
`

func (r *PostgresRepo) ListActive(ctx context.Context) ([]LiveCall, error) {
	rows, err := r.db.QueryContext(ctx, listLiveCallsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LiveCall
	for rows.Next() {
		var (
			lc        LiveCall
			caller    sql.NullString
			duration  sql.NullInt64
			sentiment sql.NullFloat64
			topic     sql.NullString
			metadata  []byte
		)
		if err := rows.Scan(
			&lc.CallID,
			&lc.AgentID,
			&lc.AgentName,
			&caller,
			&lc.Status,
			&lc.StartTime,
			&lc.LastUpdated,
			&duration,
			&sentiment,
			&topic,
			&metadata,
		); err != nil {
			return nil, err
		}
		if caller.Valid {
			v := caller.String
			lc.CallerNumber = &v
		}
		lc.CurrentDuration = int(duration.Int64)
		if sentiment.Valid {
			v := sentiment.Float64
			lc.SentimentScore = &v
		}
		if topic.Valid {
			v := topic.String
			lc.CurrentTopic = &v
		}
		if len(metadata) > 0 {
			lc.Metadata = json.RawMessage(metadata)
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
