package main

import (
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tokenloot/tokenloot/internal/config"
	"github.com/tokenloot/tokenloot/internal/observability"
)

func migrateCmd() *cobra.Command {
	var configPath string
	var direction string
	var steps int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply postgres rule-store schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(configPath, direction, steps)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "configs/dev.yaml", "path to configuration file")
	cmd.Flags().StringVar(&direction, "direction", "up", "migration direction: up or down")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")
	return cmd
}

func runMigrate(configPath, direction string, steps int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Store.Backend != "postgres" {
		return fmt.Errorf("store.backend is %q; migrations only apply to the postgres backend", cfg.Store.Backend)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Sync()
	logger.Info("running migrations",
		zap.String("direction", direction),
		zap.Int("steps", steps),
		zap.String("database", cfg.Store.Database.Name),
	)

	m, err := migrate.New("file://migrations", cfg.Store.Database.DSN())
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	default:
		return fmt.Errorf("invalid direction %q: must be 'up' or 'down'", direction)
	}

	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, _ := m.Version()
	if err == migrate.ErrNoChange {
		fmt.Fprintf(os.Stdout, "no changes (version=%d dirty=%v)\n", version, dirty)
	} else {
		fmt.Fprintf(os.Stdout, "migrated %s (version=%d dirty=%v)\n", direction, version, dirty)
	}
	return nil
}
