package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"consentd/internal/consent/handler"
	jwttoken "consentd/internal/jwt_token"
)

func newTokenCmd() *cobra.Command {
	var (
		operator string
		scopes   []string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token for the admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if operator == "" {
				return errors.New("--operator is required")
			}
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			svc := jwttoken.NewJWTService(cfg.Admin.JWTSigningKey, cfg.Admin.JWTIssuer, cfg.Admin.JWTAudience)
			token, err := svc.GenerateOperatorToken(operator, scopes, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "", "operator identity recorded in audit events")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{handler.ScopeAdmin}, "token scopes")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
