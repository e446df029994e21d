package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/healthcare-api/internal/config"
	"github.com/jwalitptl/healthcare-api/internal/repository/postgres"
	"github.com/jwalitptl/healthcare-api/pkg/logger"
)

func main() {
	var configDirs []string

	rootCmd := &cobra.Command{
		Use:   "healthcare-api",
		Short: "Healthcare facility and patient API",
	}
	rootCmd.PersistentFlags().StringSliceVar(&configDirs, "config-dir", nil, "directories searched for config.yml")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configDirs...)
		if err != nil {
			return nil, err
		}
		logger.SetGlobal(logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}))
		return cfg, nil
	}

	rootCmd.AddCommand(serveCmd(load))
	rootCmd.AddCommand(migrateCmd(load))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type loadFunc func() (*config.Config, error)

func serveCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func migrateCmd(load loadFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, closeDB, err := openMigrator(load)
			if err != nil {
				return err
			}
			defer closeDB()

			count, err := migrator.Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			log.Info().Int("applied", count).Msg("Migrations complete")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator, closeDB, err := openMigrator(load)
			if err != nil {
				return err
			}
			defer closeDB()

			statuses, err := migrator.Status(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED AT")
			for _, s := range statuses {
				applied := "pending"
				if s.AppliedAt != nil {
					applied = s.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", s.Version, s.Name, applied)
			}
			return w.Flush()
		},
	})

	return cmd
}

func openMigrator(load loadFunc) (*postgres.Migrator, func(), error) {
	cfg, err := load()
	if err != nil {
		return nil, nil, err
	}
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewMigrator(db), func() { db.Close() }, nil
}
