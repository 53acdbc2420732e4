package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studio-atelier/site-backend/internal/storage/postgres"
)

var migrateList bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply the embedded SQL migrations that have not run yet.

Each migration runs in its own transaction and is recorded in schema_migrations.

Example:
  studioctl migrate
  studioctl migrate --list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateList {
			migrations, err := postgres.Migrations()
			if err != nil {
				return err
			}
			for _, m := range migrations {
				fmt.Fprintln(cmd.OutOrStdout(), m.Version)
			}
			return nil
		}

		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		applied, err := postgres.Migrate(cmd.Context(), a.db)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
			return nil
		}
		for _, v := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateList, "list", false, "list embedded migrations without connecting")
	rootCmd.AddCommand(migrateCmd)
}
