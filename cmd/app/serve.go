package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stockbook/inventory-api/internal/api"
	"github.com/stockbook/inventory-api/internal/config"
	"github.com/stockbook/inventory-api/internal/jobs"
	"github.com/stockbook/inventory-api/internal/logger"
	"github.com/stockbook/inventory-api/internal/pkg/cache"
	"github.com/stockbook/inventory-api/internal/pkg/storage"
	"github.com/stockbook/inventory-api/internal/repository/dao"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Apply pending migrations and start the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return Start(cmd.Context(), configPath)
	},
}

// Start wires every dependency and serves the API until ctx is cancelled.
func Start(ctx context.Context, path string) error {
	conf, err := boot(path)
	if err != nil {
		return err
	}

	database, err := openDB(conf)
	if err != nil {
		return err
	}
	defer closeDB(database)

	if err = dao.InitTables(ctx, database); err != nil {
		return fmt.Errorf("failed to migrate database -> %w", err)
	}

	deps := api.Deps{DB: database}

	if conf.Redis.Enabled() {
		var rdb *redis.Client
		rdb, err = cache.Connect(ctx, conf.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis -> %w", err)
		}
		defer rdb.Close()

		client := jobs.NewClient(jobs.RedisOpt(conf.Redis))
		defer client.Close()

		deps.Redis = rdb
		deps.Enqueuer = client
	} else {
		zap.L().Warn("redis is not configured: caching, token revocation and low-stock jobs are disabled")
	}

	deps.Disk, err = storage.New(ctx, conf.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage -> %w", err)
	}

	config.Watch(path, func(updated *config.AppConfig) {
		if updated.API == nil || updated.API.LogLevel == "" {
			return
		}
		if err := logger.SetLevel(updated.API.LogLevel); err != nil {
			zap.L().Warn("ignoring invalid log level", zap.String("level", updated.API.LogLevel))
			return
		}
		zap.L().Info("log level changed", zap.String("level", updated.API.LogLevel))
	})

	s := api.NewServer(conf, deps)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Run(ctx, addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}
	zap.L().Info("server stopped")

	return nil
}
