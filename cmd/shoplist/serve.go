package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/sakif/shopping-list/internal/mockserver"
	"github.com/sakif/shopping-list/internal/repository"
	"github.com/sakif/shopping-list/internal/repository/memory"
	"github.com/sakif/shopping-list/internal/server"
)

// serveCommand runs the primary REST backend.
func serveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the shopping-list REST backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := server.New(a.cfg, a.logger)
			if err != nil {
				return fmt.Errorf("could not create server: %w", err)
			}
			return srv.Start(cmd.Context())
		},
	}
}

// mockServerCommand runs the alternate document backend the client uses.
func mockServerCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Runs the unauthenticated /shoppingLists document backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetBool("seed")
			dbPath, _ := cmd.Flags().GetString("db")

			var store repository.Store = memory.New()
			if dbPath != "" {
				db, err := server.OpenDatabase(dbPath)
				if err != nil {
					return err
				}
				defer db.Close()
				store = db
			}

			mock := mockserver.New(store, a.logger)
			if seed {
				if err := mock.Seed(cmd.Context()); err != nil {
					return err
				}
			}

			srv := &http.Server{
				Addr:         a.cfg.Mock.Addr,
				Handler:      mock.Routes(),
				ReadTimeout:  a.cfg.HTTP.ReadTimeout,
				WriteTimeout: a.cfg.HTTP.WriteTimeout,
				IdleTimeout:  a.cfg.HTTP.IdleTimeout,
			}
			a.logger.Info("mock server starting",
				slog.String("addr", srv.Addr),
				slog.Bool("seeded", seed),
				slog.Bool("persistent", dbPath != ""),
			)
			return server.Serve(cmd.Context(), srv, a.cfg.GracefulShutdownTimeout, a.logger)
		},
	}

	cmd.Flags().Bool("seed", true, "Seed the store with sample lists (overrides MOCK_SEED)")
	cmd.Flags().String("db", "", "SQLite file to keep documents in (default: in memory)")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if !cmd.Flags().Changed("seed") {
			_ = cmd.Flags().Set("seed", fmt.Sprint(a.cfg.Mock.Seed))
		}
	}
	return cmd
}
