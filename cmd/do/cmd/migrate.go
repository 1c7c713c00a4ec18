package cmd

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/labworks/tracker/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		migrateSubCmd("up", "Apply all pending migrations", db.RunMigrations),
		migrateSubCmd("down", "Roll back the most recent migration", db.MigrateDown),
		migrateSubCmd("status", "Print the state of every migration", db.MigrationStatus),
	)
	return cmd
}

func migrateSubCmd(use, short string, run func(*sql.DB, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close(conn)

			return run(conn.DB, cfg.DBDriver)
		},
	}
}
