package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/pkg/cache"
	"github.com/stockbook/inventory-api/internal/pkg/metrics"
	"github.com/stockbook/inventory-api/internal/repository"
)

var (
	ErrProductNotFound   = repository.ErrProductNotFound
	ErrInsufficientStock = domain.ErrNegativeStock
	ErrInvalidQuantity   = domain.ErrInvalidQuantity
	ErrInvalidMovement   = domain.ErrInvalidMovement
)

const productStatisticsKey = "products:statistics"

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type StockProductRepository interface {
	FindByIDForUpdate(ctx context.Context, id uint) (domain.Product, error)
	SetQuantity(ctx context.Context, product domain.Product, quantity int) (domain.Product, error)
}

type InventoryRecordRepository interface {
	Create(ctx context.Context, record domain.InventoryRecord) (domain.InventoryRecord, error)
	FindByID(ctx context.Context, id uint) (domain.InventoryRecord, error)
	List(ctx context.Context, filter domain.InventoryFilter, page domain.PageRequest) (domain.Page[domain.InventoryRecord], error)
	StockCard(ctx context.Context, productID uint) ([]domain.InventoryRecord, error)
}

// RecordPublisher is notified of inventory records once they are committed.
type RecordPublisher interface {
	Publish(record domain.InventoryRecord)
}

// StockError names the product a movement could not be applied to.
type StockError struct {
	ProductID uint
	Err       error
}

func (e *StockError) Error() string {
	return fmt.Sprintf("product %d: %v", e.ProductID, e.Err)
}

func (e *StockError) Unwrap() error {
	return e.Err
}

// StockLedger applies stock movements. Every change to a product's quantity
// goes through Apply so it is paired with an inventory record.
type StockLedger struct {
	products  StockProductRepository
	records   InventoryRecordRepository
	cache     cache.Store
	publisher RecordPublisher
}

func NewStockLedger(products StockProductRepository, records InventoryRecordRepository, store cache.Store) *StockLedger {
	if store == nil {
		store = cache.Noop{}
	}

	return &StockLedger{
		products: products,
		records:  records,
		cache:    store,
	}
}

// SetPublisher registers the receiver of committed records.
func (l *StockLedger) SetPublisher(p RecordPublisher) {
	l.publisher = p
}

// Apply locks the product, checks the movement against its stock and writes
// the new quantity together with the record. It must run inside a
// transaction; callers pass the resulting records to Committed afterwards.
func (l *StockLedger) Apply(ctx context.Context, m domain.Movement) (domain.Product, domain.InventoryRecord, error) {
	product, err := l.products.FindByIDForUpdate(ctx, m.ProductID)
	if err != nil {
		return domain.Product{}, domain.InventoryRecord{}, &StockError{
			ProductID: m.ProductID,
			Err:       fmt.Errorf("l.products.FindByIDForUpdate -> %w", err),
		}
	}

	record, err := m.Apply(product.Quantity)
	if err != nil {
		return domain.Product{}, domain.InventoryRecord{}, &StockError{ProductID: product.ID, Err: err}
	}

	updated, err := l.products.SetQuantity(ctx, product, record.BalanceAfter)
	if err != nil {
		return domain.Product{}, domain.InventoryRecord{}, fmt.Errorf("l.products.SetQuantity -> %w", err)
	}

	created, err := l.records.Create(ctx, record)
	if err != nil {
		return domain.Product{}, domain.InventoryRecord{}, fmt.Errorf("l.records.Create -> %w", err)
	}

	return updated, created, nil
}

// Committed publishes records after their transaction committed and drops
// the cached product statistics.
func (l *StockLedger) Committed(ctx context.Context, records ...domain.InventoryRecord) {
	for _, r := range records {
		metrics.StockMovements.WithLabelValues(r.Type).Inc()
		if l.publisher != nil {
			l.publisher.Publish(r)
		}
	}
	l.InvalidateStatistics(ctx)
}

func (l *StockLedger) InvalidateStatistics(ctx context.Context) {
	if err := l.cache.Delete(ctx, productStatisticsKey); err != nil {
		zap.L().Warn("invalidate product statistics", zap.Error(err))
	}
}
