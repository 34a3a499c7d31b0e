package main

import (
	"fmt"
	"log"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/interview-coach/internal/infrastructure/database"
	"github.com/johnquangdev/interview-coach/pkg/config"
)

var (
	migrationsDir string
	migrateSteps  int
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the interviews schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().StringVar(&migrationsDir, "dir", database.MigrationsDir, "directory holding the sql-migrate files")
	migrateCmd.Flags().IntVarP(&migrateSteps, "steps", "n", 0, "number of migrations to apply, 0 means all (down defaults to 1)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Store.Backend != "postgres" {
		return fmt.Errorf("migrations only apply to STORE_BACKEND=postgres, got %q", cfg.Store.Backend)
	}

	direction := migrate.Up
	steps := migrateSteps
	if args[0] == "down" {
		direction = migrate.Down
		if steps == 0 {
			steps = 1
		}
	}

	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	n, err := database.Migrate(db, migrationsDir, direction, steps)
	if err != nil {
		return err
	}
	log.Printf("✅ migrate %s: %d migration(s) applied", args[0], n)
	return nil
}
