package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"consentd/internal/consent/service"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Purge expired remembered decisions once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			memory, closeMemory, err := openMemoryStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeMemory()

			n, err := service.NewSweeper(memory, service.WithLogger(log)).SweepOnce(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweep consent memory: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired records\n", n)
			return nil
		},
	}
}
