package seed

import (
	"context"
	"database/sql"

	"voice-dashboard/internal/calls"
	"voice-dashboard/pkg/utils"
)

// Repository persists one seeding batch.
type Repository interface {
	Write(ctx context.Context, b Batch) error
}

// PostgresRepo writes a batch in a single transaction.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const insertUsageSQL = `
INSERT INTO usage_history (usage_id, agent_id, "timestamp", call_count, total_minutes, total_cost)
VALUES ($1, $2, $3, $4, $5, $6)
`

const insertPaymentSQL = `
INSERT INTO payments (payment_id, user_id, amount, currency, status, payment_method, "timestamp")
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

func (r *PostgresRepo) Write(ctx context.Context, b Batch) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		for _, c := range b.Calls {
			if err := calls.InsertWith(ctx, tx, c); err != nil {
				return err
			}
		}
		for _, u := range b.Usage {
			if _, err := tx.ExecContext(ctx, insertUsageSQL,
				u.UsageID, u.AgentID, u.Timestamp, u.CallCount, u.TotalMinutes, u.TotalCost,
			); err != nil {
				return err
			}
		}
		for _, p := range b.Payments {
			if _, err := tx.ExecContext(ctx, insertPaymentSQL,
				p.PaymentID, p.UserID, p.Amount, p.Currency, p.Status, p.PaymentMethod, p.Timestamp,
			); err != nil {
				return err
			}
		}
		return nil
	})
}
