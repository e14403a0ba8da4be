package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"experiment-model-registry/internal/adapters/secondary/postgres"
	"experiment-model-registry/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the postgres schema",
}

func init() {
	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrationPool(func(pool *pgxpool.Pool) error {
					return runMigrations(pool, (*postgres.Migrator).Up)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrationPool(func(pool *pgxpool.Pool) error {
					return runMigrations(pool, (*postgres.Migrator).Down)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrationPool(func(pool *pgxpool.Pool) error {
					return runMigrations(pool, func(m *postgres.Migrator) error {
						version, dirty, err := m.Version()
						if err != nil {
							return err
						}
						fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
						return nil
					})
				})
			},
		},
	)
}

// withMigrationPool forces the postgres backend, since migrations only make
// sense against a database.
func withMigrationPool(fn func(*pgxpool.Pool) error) error {
	v.Set("STORE_BACKEND", config.StoreBackendPostgres)
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := openPool(context.Background(), &cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(pool)
}

func runMigrations(pool *pgxpool.Pool, step func(*postgres.Migrator) error) error {
	m, err := postgres.NewMigrator(pool)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.WithError(err).Warn("close migrator failed")
		}
	}()
	return step(m)
}
