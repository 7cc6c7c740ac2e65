package repository

import (
	"context"
	"fmt"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/repository/dao"
)

var ErrInventoryRecordNotFound = dao.ErrInventoryRecordNotFound

type InventoryDAO interface {
	Insert(ctx context.Context, record dao.InventoryRecord) (dao.InventoryRecord, error)
	FindByID(ctx context.Context, id uint) (dao.InventoryRecord, error)
	List(ctx context.Context, filter dao.InventoryFilter, offset, limit int) ([]dao.InventoryRecord, int64, error)
	StockCard(ctx context.Context, productID uint) ([]dao.InventoryRecord, error)
}

type InventoryRepository struct {
	dao InventoryDAO
}

func NewInventoryRepository(dao InventoryDAO) *InventoryRepository {
	return &InventoryRepository{
		dao: dao,
	}
}

func (r *InventoryRepository) Create(ctx context.Context, record domain.InventoryRecord) (domain.InventoryRecord, error) {
	created, err := r.dao.Insert(ctx, dao.InventoryRecord{
		ProductID:    record.ProductID,
		SupplierID:   record.SupplierID,
		Type:         record.Type,
		Quantity:     record.Quantity,
		BalanceAfter: record.BalanceAfter,
		UnitCost:     record.UnitCost,
		Reference:    record.Reference,
		Note:         record.Note,
		CreatedBy:    record.CreatedBy,
	})
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return inventoryRecordToDomain(created), nil
}

func (r *InventoryRepository) FindByID(ctx context.Context, id uint) (domain.InventoryRecord, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return inventoryRecordToDomain(found), nil
}

func (r *InventoryRepository) List(ctx context.Context, filter domain.InventoryFilter, page domain.PageRequest) (domain.Page[domain.InventoryRecord], error) {
	found, total, err := r.dao.List(ctx, dao.InventoryFilter{
		ProductID:  filter.ProductID,
		SupplierID: filter.SupplierID,
		Type:       filter.Type,
	}, page.Offset(), page.PerPage)
	if err != nil {
		return domain.Page[domain.InventoryRecord]{}, fmt.Errorf("r.dao.List -> %w", err)
	}

	return domain.NewPage(inventoryRecordsToDomain(found), total, page), nil
}

func (r *InventoryRepository) StockCard(ctx context.Context, productID uint) ([]domain.InventoryRecord, error) {
	found, err := r.dao.StockCard(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.StockCard -> %w", err)
	}

	return inventoryRecordsToDomain(found), nil
}

func inventoryRecordsToDomain(found []dao.InventoryRecord) []domain.InventoryRecord {
	records := make([]domain.InventoryRecord, 0, len(found))
	for _, rec := range found {
		records = append(records, inventoryRecordToDomain(rec))
	}

	return records
}

func inventoryRecordToDomain(r dao.InventoryRecord) domain.InventoryRecord {
	return domain.InventoryRecord{
		ID:           r.ID,
		ProductID:    r.ProductID,
		SupplierID:   r.SupplierID,
		Type:         r.Type,
		Quantity:     r.Quantity,
		BalanceAfter: r.BalanceAfter,
		UnitCost:     r.UnitCost,
		Reference:    r.Reference,
		Note:         r.Note,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
	}
}
