package reporting

import (
	"context"
	"database/sql"
)

// PostgresRepo aggregates over the calls table.
// "Today" is the store session's CURRENT_DATE, not the process clock.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const totalsSQL = `
SELECT COUNT(*),
       COUNT(DISTINCT agent_id) FILTER (WHERE start_time::date = CURRENT_DATE),
       COALESCE(SUM(duration), 0)::float8,
       COALESCE(SUM(cost), 0)
FROM calls
`

func (r *PostgresRepo) Totals(ctx context.Context) (TotalsRow, error) {
	var t TotalsRow
	err := r.db.QueryRowContext(ctx, totalsSQL).Scan(
		&t.TotalCalls,
		&t.ActiveAgentsToday,
		&t.TotalDurationSeconds,
		&t.Revenue,
	)
	return t, err
}

const todaySQL = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status = 'completed'),
       COALESCE(AVG(duration), 0)::float8,
       COALESCE(SUM(duration), 0)::float8,
       COUNT(DISTINCT agent_id)
FROM calls
WHERE start_time::date = CURRENT_DATE
`

func (r *PostgresRepo) Today(ctx context.Context) (DayRow, error) {
	var d DayRow
	err := r.db.QueryRowContext(ctx, todaySQL).Scan(
		&d.Calls,
		&d.Completed,
		&d.AvgDurationSeconds,
		&d.TotalDurationSeconds,
		&d.DistinctAgents,
	)
	return d, err
}

const recentSQL = `
SELECT caller_number, agent_id, status, duration, start_time
FROM calls
ORDER BY start_time DESC, id DESC
LIMIT $1
`

func (r *PostgresRepo) Recent(ctx context.Context, limit int) ([]RecentRow, error) {
	rows, err := r.db.QueryContext(ctx, recentSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RecentRow, 0, limit)
	for rows.Next() {
		var (
			rr       RecentRow
			caller   sql.NullString
			agentID  sql.NullString
			status   sql.NullString
			duration sql.NullInt64
		)
		if err := rows.Scan(&caller, &agentID, &status, &duration, &rr.StartTime); err != nil {
			return nil, err
		}
		rr.CallerNumber = caller.String
		rr.AgentID = agentID.String
		rr.Status = status.String
		if duration.Valid {
			d := int(duration.Int64)
			rr.Duration = &d
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}
