// ABOUTME: token subcommand minting JWTs for the gateway HTTP API
// ABOUTME: Signs with auth.jwt_secret from the config file

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartnetguru/mokai/internal/auth"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret is not configured")
			}

			subject, _ := cmd.Flags().GetString("subject")
			scopes, _ := cmd.Flags().GetStringSlice("scopes")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			token, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret)).Generate(subject, scopes, ttl)
			if err != nil {
				return fmt.Errorf("generating token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("subject", "", "token subject (required)")
	cmd.Flags().StringSlice("scopes", []string{auth.ScopeRoute, auth.ScopeRead}, "granted scopes")
	cmd.Flags().Duration("ttl", 30*24*time.Hour, "token lifetime, 0 for no expiry")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
