// Package jobs runs background work on an asynq queue backed by Redis.
package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	QueueDefault = "default"

	// TaskLowStockAlert checks the products touched by a stock movement.
	TaskLowStockAlert = "inventory:low_stock_alert"
	// TaskLowStockScan checks every product.
	TaskLowStockScan = "inventory:low_stock_scan"
)

type LowStockPayload struct {
	ProductIDs []uint `json:"product_ids"`
	Reference  string `json:"reference"`
}

func NewLowStockAlertTask(payload LowStockPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal -> %w", err)
	}

	return asynq.NewTask(TaskLowStockAlert, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskLowStockScan, nil, asynq.Queue(QueueDefault))
}
