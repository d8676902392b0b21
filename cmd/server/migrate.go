package main

import (
	"errors"

	"github.com/spf13/cobra"

	"leadgate/internal/platform/config"
	"leadgate/internal/platform/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the contacts schema",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{database.DirectionUp, database.DirectionDown},
	RunE:      runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL must be set to run migrations")
	}
	direction := database.DirectionUp
	if len(args) == 1 {
		direction = args[0]
	}
	if err := database.Migrate(cfg.DatabaseURL, direction); err != nil {
		return err
	}
	cmd.Printf("migrations %s: done\n", direction)
	return nil
}
