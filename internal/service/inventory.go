package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/repository"
)

var ErrInventoryRecordNotFound = repository.ErrInventoryRecordNotFound

type SupplierFinder interface {
	FindByID(ctx context.Context, id uint) (domain.Supplier, error)
}

type InventoryService struct {
	tx        Transactor
	records   InventoryRecordRepository
	suppliers SupplierFinder
	ledger    *StockLedger
	enqueuer  LowStockEnqueuer
	threshold int
}

func NewInventoryService(tx Transactor, records InventoryRecordRepository, suppliers SupplierFinder, ledger *StockLedger, enqueuer LowStockEnqueuer, lowStockThreshold int) *InventoryService {
	return &InventoryService{
		tx:        tx,
		records:   records,
		suppliers: suppliers,
		ledger:    ledger,
		enqueuer:  enqueuer,
		threshold: lowStockThreshold,
	}
}

// RecordMovement books a manual stock movement. Only restocks (IN) carry a
// supplier and unit cost.
func (s *InventoryService) RecordMovement(ctx context.Context, m domain.Movement) (domain.InventoryRecord, error) {
	if _, err := m.Delta(); err != nil {
		return domain.InventoryRecord{}, err
	}
	if m.Type != domain.MovementIn {
		m.SupplierID = nil
		m.UnitCost = decimal.Zero
	}

	var (
		product domain.Product
		record  domain.InventoryRecord
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if m.SupplierID != nil {
			if _, err := s.suppliers.FindByID(ctx, *m.SupplierID); err != nil {
				return fmt.Errorf("s.suppliers.FindByID -> %w", err)
			}
		}

		var err error
		product, record, err = s.ledger.Apply(ctx, m)
		if err != nil {
			return fmt.Errorf("s.ledger.Apply -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.InventoryRecord{}, err
	}
	s.ledger.Committed(ctx, record)

	if record.Quantity < 0 && product.Quantity <= s.threshold {
		reference := record.Reference
		if reference == "" {
			reference = fmt.Sprintf("inventory record %d", record.ID)
		}
		enqueueLowStock(ctx, s.enqueuer, reference, []uint{product.ID})
	}

	return record, nil
}

func (s *InventoryService) ListRecords(ctx context.Context, filter domain.InventoryFilter, page domain.PageRequest) (domain.Page[domain.InventoryRecord], error) {
	records, err := s.records.List(ctx, filter, page.Normalize(domain.DefaultPerPage))
	if err != nil {
		return domain.Page[domain.InventoryRecord]{}, fmt.Errorf("s.records.List -> %w", err)
	}

	return records, nil
}

func (s *InventoryService) GetRecord(ctx context.Context, id uint) (domain.InventoryRecord, error) {
	record, err := s.records.FindByID(ctx, id)
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("s.records.FindByID -> %w", err)
	}

	return record, nil
}
