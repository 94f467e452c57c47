package main

import (
	"fmt"
	"time"

	"voice-dashboard/internal/auth"
	"voice-dashboard/internal/rbac"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !rbac.IsKnownRole(role) {
				return fmt.Errorf("unknown role %q (admin, viewer, agent_runtime)", role)
			}
			m, err := auth.NewManager(cfg.Auth)
			if err != nil {
				return err
			}
			tok, err := m.Issue(time.Now(), userID, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "token subject")
	cmd.Flags().StringVar(&role, "role", rbac.RoleViewer, "admin, viewer or agent_runtime")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "lifetime (default JWT_ACCESS_TTL)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
