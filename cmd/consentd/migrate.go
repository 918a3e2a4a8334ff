package main

import (
	"errors"

	"github.com/spf13/cobra"

	pgstore "consentd/internal/consent/store/postgres"
	"consentd/internal/platform/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the consent memory schema in PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is required")
			}
			db, err := postgres.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := pgstore.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			log.Info("consent memory schema applied")
			return nil
		},
	}
}
