package commands

import (
	"context"

	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/fern/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		ctx := context.Background()

		db, err := database.Connect(ctx, database.Config{
			Driver:          cfg.DatabaseDriver,
			Host:            cfg.DatabaseHost,
			Port:            cfg.DatabasePort,
			UserName:        cfg.DatabaseUserName,
			Password:        cfg.DatabasePassword,
			Name:            cfg.DatabaseName,
			SSLMode:         cfg.DatabaseSSLMode,
			MaxOpenConns:    cfg.DatabaseMaxOpenConns,
			MaxIdleConns:    cfg.DatabaseMaxIdleConns,
			ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
		}, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		driver, err := migratepg.WithInstance(db.Unwrap(), &migratepg.Config{})
		if err != nil {
			logger.WithError(err).Error("Failed to create migration driver")
			return err
		}

		migrationService := database.NewMigrationService(logger, &database.MigrationConfig{
			MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
			Version:             uint(cfg.DatabaseMigrationVersion),
			Force:               cfg.DatabaseMigrationForce,
			AutoRollback:        cfg.DatabaseMigrationAutoRollback,
		})

		return migrationService.Migrate(cfg.DatabaseName, driver)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
