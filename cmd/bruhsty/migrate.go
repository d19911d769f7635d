package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bruhsty/bruhsty/internal/config"
	"github.com/bruhsty/bruhsty/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db := cfg.Database

			var executor storage.Executor
			switch {
			case db.Driver == config.DriverSQLite:
				conn, openErr := db.OpenSQLite(ctx)
				if openErr != nil {
					return openErr
				}
				defer func() { _ = conn.Close() }()
				executor = conn

			case db.Adapter == config.AdapterSQLX:
				conn, openErr := db.OpenSQLX(ctx)
				if openErr != nil {
					return openErr
				}
				defer func() { _ = conn.Close() }()
				executor = conn

			default:
				conn, openErr := db.OpenSQLDB(ctx)
				if openErr != nil {
					return openErr
				}
				defer func() { _ = conn.Close() }()
				executor = conn
			}

			if err := storage.Migrate(ctx, executor, db.Dialect()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date (%s)\n", db.Driver)

			return nil
		},
	}
}
