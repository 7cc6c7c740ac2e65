package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/stockbook/inventory-api/internal/config"
)

func RedisOpt(conf *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	}
}

// Client enqueues tasks.
type Client struct {
	client *asynq.Client
}

func NewClient(opt asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(opt)}
}

func (c *Client) EnqueueLowStockAlert(ctx context.Context, reference string, productIDs []uint) error {
	task, err := NewLowStockAlertTask(LowStockPayload{ProductIDs: productIDs, Reference: reference})
	if err != nil {
		return fmt.Errorf("NewLowStockAlertTask -> %w", err)
	}
	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("c.client.EnqueueContext -> %w", err)
	}

	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
