package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/freee021022/onconet/internal/config"
	"github.com/freee021022/onconet/internal/repository/postgres"
)

func migrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openMigrationDB(cmd, *configPath)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := postgres.NewMigrator(db).Up(cmd.Context())
			if err != nil {
				return err
			}
			log.Info().Int("applied", n).Msg("migrations complete")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openMigrationDB(cmd, *configPath)
			if err != nil {
				return err
			}
			defer db.Close()

			statuses, err := postgres.NewMigrator(db).Status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, st := range statuses {
				state := "pending"
				if st.Applied {
					state = "applied " + st.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(out, "%03d  %-30s %s\n", st.Version, st.Name, state)
			}
			return nil
		},
	})

	return cmd
}

func openMigrationDB(cmd *cobra.Command, path string) (*sqlx.DB, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return nil, errors.New("migrations require database.driver=postgres")
	}
	return postgres.NewDB(cmd.Context(), cfg.Database)
}
