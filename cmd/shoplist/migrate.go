package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/shopping-list/internal/server"
)

// migrateCommand applies every pending goose migration to the configured
// SQLite database.
func migrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrates database to the latest version",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := server.OpenDatabase(a.cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(); err != nil {
				return fmt.Errorf("could not migrate database: %w", err)
			}
			version, err := db.SchemaVersion()
			if err != nil {
				return fmt.Errorf("could not read schema version: %w", err)
			}
			a.logger.Info("database migrated",
				slog.String("database", a.cfg.Database.Path),
				slog.Int64("version", version),
			)
			return nil
		},
	}
}
