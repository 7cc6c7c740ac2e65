package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/pkg/metrics"
)

type LowStockFinder interface {
	FindLowStock(ctx context.Context, threshold int, ids ...uint) ([]domain.Product, error)
}

// AlertFunc receives the products found at or below the threshold.
type AlertFunc func(ctx context.Context, reference string, products []domain.Product) error

type LowStockHandler struct {
	products  LowStockFinder
	threshold int
	alert     AlertFunc
}

// NewLowStockHandler builds the handler for both low-stock task types. A nil
// alert logs every product as a warning.
func NewLowStockHandler(products LowStockFinder, threshold int, alert AlertFunc) *LowStockHandler {
	if alert == nil {
		alert = LogAlert
	}

	return &LowStockHandler{products: products, threshold: threshold, alert: alert}
}

func (h *LowStockHandler) HandleAlert(ctx context.Context, t *asynq.Task) error {
	var payload LowStockPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		metrics.JobsProcessed.WithLabelValues(TaskLowStockAlert, "skipped").Inc()
		return fmt.Errorf("json.Unmarshal -> %v: %w", err, asynq.SkipRetry)
	}
	if len(payload.ProductIDs) == 0 {
		metrics.JobsProcessed.WithLabelValues(TaskLowStockAlert, "skipped").Inc()
		return nil
	}

	return h.check(ctx, TaskLowStockAlert, payload.Reference, payload.ProductIDs...)
}

func (h *LowStockHandler) HandleScan(ctx context.Context, _ *asynq.Task) error {
	return h.check(ctx, TaskLowStockScan, "scheduled scan")
}

func (h *LowStockHandler) check(ctx context.Context, taskType, reference string, ids ...uint) error {
	products, err := h.products.FindLowStock(ctx, h.threshold, ids...)
	if err != nil {
		metrics.JobsProcessed.WithLabelValues(taskType, "failed").Inc()
		return fmt.Errorf("h.products.FindLowStock -> %w", err)
	}
	if len(products) > 0 {
		if err := h.alert(ctx, reference, products); err != nil {
			metrics.JobsProcessed.WithLabelValues(taskType, "failed").Inc()
			return fmt.Errorf("h.alert -> %w", err)
		}
	}
	metrics.JobsProcessed.WithLabelValues(taskType, "succeeded").Inc()

	return nil
}

func LogAlert(_ context.Context, reference string, products []domain.Product) error {
	for _, p := range products {
		zap.L().Warn("low stock",
			zap.Uint("product_id", p.ID),
			zap.String("name", p.Name),
			zap.String("model", p.Model),
			zap.Int("quantity", p.Quantity),
			zap.String("reference", reference),
		)
	}

	return nil
}
