package audit

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const insertEventSQL = `
INSERT INTO audit_events (id, type, agent_id, actor_user_id, actor_role, ip_address, message, metadata, created_at)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8::jsonb, $9)
`

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	var metadata any
	if len(e.Metadata) > 0 {
		metadata = string(e.Metadata)
	}
	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.ID, string(e.Type), e.AgentID, e.ActorUserID, e.ActorRole, e.IPAddress, e.Message, metadata, e.CreatedAt,
	)
	return err
}
