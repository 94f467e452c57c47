package main

import (
	"context"
	"fmt"

	"voice-dashboard/internal/migrations"
	"voice-dashboard/pkg/utils"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrateUp(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *migrations.Migrator) error { return m.Down() })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(m *migrations.Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
				return nil
			})
		},
	})
	return cmd
}

func migrateUp(ctx context.Context) error {
	return withMigrator(ctx, func(m *migrations.Migrator) error { return m.Up() })
}

// withMigrator runs fn on a dedicated handle; the migrator closes it.
func withMigrator(ctx context.Context, fn func(*migrations.Migrator) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !cfg.UsesPostgres() {
		return fmt.Errorf("migrations need a postgres backend, STORE_BACKEND=%s", cfg.Store.Backend)
	}
	db, err := utils.OpenPostgres(ctx, utils.DriverPgx, cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxOpenConns: 2})
	if err != nil {
		return err
	}
	m, err := migrations.New(db, log)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() { _ = m.Close() }()
	return fn(m)
}
