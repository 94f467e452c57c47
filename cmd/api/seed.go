package main

import (
	"fmt"

	"voice-dashboard/internal/config"
	"voice-dashboard/internal/seed"
	"voice-dashboard/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample calls, usage history and payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Store.Backend != config.BackendPostgres {
				return fmt.Errorf("seed writes to postgres only, STORE_BACKEND=%s", cfg.Store.Backend)
			}
			db, err := utils.OpenPostgres(cmd.Context(), utils.DriverPgx, cfg.PostgresDSN(), utils.PostgresPoolConfig{})
			if err != nil {
				return err
			}
			defer db.Close()

			// The CLI runs with operator access, so the configured secret is not required.
			sum, err := seed.NewService(seed.NewPostgresRepo(db), "").Seed(cmd.Context())
			if err != nil {
				return err
			}
			log.Info("seeded",
				zap.Int("calls", sum.Calls),
				zap.Int("usage_history", sum.UsageHistory),
				zap.Int("payments", sum.Payments),
			)
			return nil
		},
	}
}
