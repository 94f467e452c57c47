package calls

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// PostgresRepo stores call facts in the calls table.
//
// The table has a surrogate key and no unique constraint on call_id.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const insertCallSQL = `
INSERT INTO calls (
  call_id, caller_number, agent_id, status, duration, start_time, end_time,
  call_direction, from_number, to_number, recording_url, transcript, cost, region,
  metadata, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15::jsonb, $16)
`

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *PostgresRepo) Insert(ctx context.Context, c Call) error {
	return InsertWith(ctx, r.db, c)
}

// InsertWith appends c using exec, so callers can batch inserts in a transaction.
func InsertWith(ctx context.Context, exec Execer, c Call) error {
	_, err := exec.ExecContext(ctx, insertCallSQL,
		c.CallID,
		nullIfEmpty(c.CallerNumber),
		c.AgentID,
		string(c.Status),
		nullIntPtr(c.Duration),
		c.StartTime,
		nullTimePtr(c.EndTime),
		nullIfEmpty(c.Direction),
		nullIfEmpty(c.FromNumber),
		nullIfEmpty(c.ToNumber),
		nullIfEmpty(c.RecordingURL),
		nullIfEmpty(c.Transcript),
		c.Cost,
		nullIfEmpty(c.Region),
		nullIfEmpty(string(c.Metadata)),
		c.CreatedAt,
	)
	return err
}

// patchSQL renders a parameterized UPDATE for the given assignments.
// Column names come from the patchColumns whitelist only.
func patchSQL(callID string, sets []Assignment) (string, []any) {
	clauses := make([]string, 0, len(sets))
	args := make([]any, 0, len(sets)+1)
	for i, a := range sets {
		cast := ""
		if patchColumns[a.Column] == kindJSON {
			cast = "::jsonb"
		}
		clauses = append(clauses, fmt.Sprintf("%s = $%d%s", a.Column, i+1, cast))
		args = append(args, a.Value)
	}
	args = append(args, callID)
	q := fmt.Sprintf("UPDATE calls SET %s WHERE call_id = $%d", strings.Join(clauses, ", "), len(sets)+1)
	return q, args
}

func (r *PostgresRepo) Patch(ctx context.Context, callID string, sets []Assignment) error {
	q, args := patchSQL(callID, sets)
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

const historySQL = `
SELECT c.call_id, c.caller_number, c.agent_id, a.agent_name, c.duration, c.cost,
       c.start_time, c.end_time, c.status, c.call_direction
FROM calls c
LEFT JOIN agents a ON c.agent_id = a.agent_id
ORDER BY c.start_time DESC, c.id DESC
LIMIT $1 OFFSET $2
`

func (r *PostgresRepo) History(ctx context.Context, limit, offset int) ([]HistoryRow, error) {
	rows, err := r.db.QueryContext(ctx, historySQL, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]HistoryRow, 0, limit)
	for rows.Next() {
		var (
			h         HistoryRow
			caller    sql.NullString
			agentName sql.NullString
			duration  sql.NullInt64
			endTime   sql.NullTime
			status    sql.NullString
			direction sql.NullString
		)
		if err := rows.Scan(
			&h.CallID,
			&caller,
			&h.AgentID,
			&agentName,
			&duration,
			&h.Cost,
			&h.StartTime,
			&endTime,
			&status,
			&direction,
		); err != nil {
			return nil, err
		}
		h.CallerNumber = caller.String
		h.AgentName = agentName.String
		if duration.Valid {
			d := int(duration.Int64)
			h.Duration = &d
		}
		if endTime.Valid {
			t := endTime.Time
			h.EndTime = &t
		}
		h.Status = status.String
		if direction.Valid {
			d := direction.String
			h.Direction = &d
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIntPtr(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func nullTimePtr(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

