package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stockbook/inventory-api/internal/config"
	"github.com/stockbook/inventory-api/internal/db"
	"github.com/stockbook/inventory-api/internal/logger"
)

const defaultConfigPath = "./cmd/app/config.yml"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "inventory-api",
	Short: "Inventory, supplier and billing backend",
	// Running the binary without a sub-command serves the API.
	RunE: func(cmd *cobra.Command, _ []string) error {
		return Start(cmd.Context(), configPath)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(workerCmd)
}

// Execute runs the command line until SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// boot loads the config and initializes the global logger.
func boot(path string) (*config.AppConfig, error) {
	conf, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return nil, fmt.Errorf("failed to initialize logger -> %w", err)
	}
	if conf.API.LogLevel != "" {
		if err = logger.SetLevel(conf.API.LogLevel); err != nil {
			zap.L().Warn("invalid log level, keeping default", zap.String("level", conf.API.LogLevel))
		}
	}

	return conf, nil
}

// openDB connects to the configured database. DATABASE_URL, when set, wins
// over the config file and always targets Postgres.
func openDB(conf *config.AppConfig) (*gorm.DB, error) {
	var (
		database *gorm.DB
		err      error
	)
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		database, err = db.OpenPostgresWithURL(dbURL)
	} else {
		database, err = db.Open(conf.Database)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database -> %w", err)
	}

	return database, nil
}

func closeDB(database *gorm.DB) {
	sqlDB, err := database.DB()
	if err != nil {
		return
	}
	if err = sqlDB.Close(); err != nil {
		zap.L().Warn("failed to close database", zap.Error(err))
	}
}
