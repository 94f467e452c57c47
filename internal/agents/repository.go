package agents

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// PostgresRepo stores agents in the agents table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const upsertAgentSQL = `
INSERT INTO agents (
  agent_id, agent_name, status, voice_model, language, max_concurrent_calls,
  total_calls, total_minutes, average_rating, config, created_at, updated_at
)
VALUES (
  $1, $2, $3, $4::text, COALESCE($5::text, 'en-US'), COALESCE(NULLIF($6::int, 0), 1),
  0, 0, NULL, $7::jsonb, $8, $8
)
ON CONFLICT (agent_id) DO UPDATE SET
  agent_name = EXCLUDED.agent_name,
  status = EXCLUDED.status,
  voice_model = COALESCE($4::text, agents.voice_model),
  language = COALESCE($5::text, agents.language),
  max_concurrent_calls = COALESCE($6::int, agents.max_concurrent_calls),
  config = COALESCE($7::jsonb, agents.config),
  updated_at = EXCLUDED.updated_at
RETURNING (xmax = 0) AS inserted
`

func (r *PostgresRepo) Upsert(ctx context.Context, in UpsertInput, now time.Time) (bool, error) {
	var cfg any
	if len(in.Config) > 0 {
		cfg = string(in.Config)
	}
	status := StatusActive
	if in.Status != nil {
		status = *in.Status
	}

	var inserted bool
	err := r.db.QueryRowContext(ctx, upsertAgentSQL,
		in.AgentID,
		in.AgentName,
		status,
		nullString(in.VoiceModel),
		nullString(in.Language),
		nullInt(in.MaxConcurrentCalls),
		cfg,
		now,
	).Scan(&inserted)
	if err != nil {
		return false, err
	}
	return inserted, nil
}

const listAgentsSQL = `
SELECT agent_id, agent_name, status, voice_model, language, max_concurrent_calls,
       total_calls, total_minutes, average_rating, config, created_at, updated_at
FROM agents
ORDER BY created_at DESC
`

func (r *PostgresRepo) List(ctx context.Context) ([]Agent, error) {
	rows, err := r.db.QueryContext(ctx, listAgentsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Agent
	for rows.Next() {
		var (
			a          Agent
			status     sql.NullString
			voiceModel sql.NullString
			language   sql.NullString
			maxCalls   sql.NullInt64
			totalCalls sql.NullInt64
			totalMins  sql.NullFloat64
			rating     sql.NullFloat64
			cfg        []byte
			updatedAt  sql.NullTime
		)
		if err := rows.Scan(
			&a.AgentID,
			&a.AgentName,
			&status,
			&voiceModel,
			&language,
			&maxCalls,
			&totalCalls,
			&totalMins,
			&rating,
			&cfg,
			&a.CreatedAt,
			&updatedAt,
		); err != nil {
			return nil, err
		}
		a.Status = status.String
		a.VoiceModel = voiceModel.String
		a.Language = language.String
		a.MaxConcurrentCalls = int(maxCalls.Int64)
		a.TotalCalls = totalCalls.Int64
		a.TotalMinutes = totalMins.Float64
		if rating.Valid {
			v := rating.Float64
			a.AverageRating = &v
		}
		if len(cfg) > 0 {
			a.Config = json.RawMessage(cfg)
		}
		a.UpdatedAt = updatedAt.Time
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Delete(ctx context.Context, agentID string) (bool, error) {
	const q = `DELETE FROM agents WHERE agent_id = $1`
	res, err := r.db.ExecContext(ctx, q, agentID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepo) Names(ctx context.Context, agentIDs []string) (map[string]string, error) {
	const q = `SELECT agent_id, agent_name FROM agents WHERE agent_id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, q, agentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(agentIDs))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}
