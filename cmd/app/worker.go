package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stockbook/inventory-api/internal/jobs"
	"github.com/stockbook/inventory-api/internal/repository"
	"github.com/stockbook/inventory-api/internal/repository/dao"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process low-stock alerts and run the scheduled stock scan",
	RunE: func(cmd *cobra.Command, _ []string) error {
		conf, err := boot(configPath)
		if err != nil {
			return err
		}
		if !conf.Redis.Enabled() {
			return errors.New("the worker needs redis.addr to be configured")
		}

		database, err := openDB(conf)
		if err != nil {
			return err
		}
		defer closeDB(database)

		products := repository.NewProductRepository(dao.NewProductDAO(database))
		worker, err := jobs.NewWorker(jobs.WorkerConfig{
			RedisOpt:    jobs.RedisOpt(conf.Redis),
			Concurrency: conf.Jobs.Concurrency,
			ScanCron:    conf.Jobs.ScanCron,
			LowStock:    jobs.NewLowStockHandler(products, conf.Inventory.LowStockThreshold, nil),
		})
		if err != nil {
			return fmt.Errorf("failed to initialize worker -> %w", err)
		}

		zap.L().Info("worker started", zap.Int("concurrency", conf.Jobs.Concurrency), zap.String("scan_cron", conf.Jobs.ScanCron))
		if err = worker.Run(cmd.Context()); err != nil {
			return fmt.Errorf("worker.Run -> %w", err)
		}
		zap.L().Info("worker stopped")

		return nil
	},
}
