package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/shopping-list/internal/auth"
)

// tokenCommand prints an HS256 bearer token for a user id, signed with the
// configured secret.
func tokenCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generates a bearer token for given user ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			if a.cfg.Auth.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			tokens, err := auth.NewTokenService(a.cfg.Auth.JWTSecret, a.cfg.Auth.JWTIssuer, a.cfg.Auth.TokenTTL)
			if err != nil {
				return err
			}
			signed, err := tokens.GenerateWithDuration(subject, ttl)
			if err != nil {
				return fmt.Errorf("could not sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().String("subject", "", "Token subject (the user ID)")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token TTL (e.g., 30s, 15m, 1h; default: JWT_TTL)")
	_ = cmd.MarkFlagRequired("subject")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("ttl") && a.cfg.Auth.TokenTTL > 0 {
			_ = cmd.Flags().Set("ttl", a.cfg.Auth.TokenTTL.String())
		}
	}

	return cmd
}
