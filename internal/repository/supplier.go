package repository

import (
	"context"
	"fmt"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/repository/dao"
)

var (
	ErrSupplierNotFound     = dao.ErrSupplierNotFound
	ErrSupplierItemNotFound = dao.ErrSupplierItemNotFound
)

type SupplierDAO interface {
	Insert(ctx context.Context, supplier dao.Supplier) (dao.Supplier, error)
	Update(ctx context.Context, supplier dao.Supplier) (dao.Supplier, error)
	FindByID(ctx context.Context, id uint) (dao.Supplier, error)
	FindAll(ctx context.Context, withItems bool) ([]dao.Supplier, error)
	Delete(ctx context.Context, ids ...uint) (int64, error)
	InsertItem(ctx context.Context, item dao.SupplierItem) (dao.SupplierItem, error)
	UpdateItem(ctx context.Context, item dao.SupplierItem) (dao.SupplierItem, error)
	DeleteItem(ctx context.Context, id uint) error
	FindItemByID(ctx context.Context, id uint) (dao.SupplierItem, error)
	FindItems(ctx context.Context, supplierIDs ...uint) ([]dao.SupplierItem, error)
}

type SupplierRepository struct {
	dao SupplierDAO
}

func NewSupplierRepository(dao SupplierDAO) *SupplierRepository {
	return &SupplierRepository{
		dao: dao,
	}
}

func (r *SupplierRepository) Create(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	created, err := r.dao.Insert(ctx, supplierToDAO(supplier))
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return supplierToDomain(created), nil
}

func (r *SupplierRepository) Update(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	updated, err := r.dao.Update(ctx, supplierToDAO(supplier))
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return supplierToDomain(updated), nil
}

func (r *SupplierRepository) FindByID(ctx context.Context, id uint) (domain.Supplier, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return supplierToDomain(found), nil
}

func (r *SupplierRepository) FindAll(ctx context.Context, withItems bool) ([]domain.Supplier, error) {
	found, err := r.dao.FindAll(ctx, withItems)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	suppliers := make([]domain.Supplier, 0, len(found))
	for _, s := range found {
		suppliers = append(suppliers, supplierToDomain(s))
	}

	return suppliers, nil
}

func (r *SupplierRepository) Delete(ctx context.Context, ids ...uint) (int64, error) {
	n, err := r.dao.Delete(ctx, ids...)
	if err != nil {
		return 0, fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return n, nil
}

func (r *SupplierRepository) CreateItem(ctx context.Context, item domain.SupplierItem) (domain.SupplierItem, error) {
	created, err := r.dao.InsertItem(ctx, supplierItemToDAO(item))
	if err != nil {
		return domain.SupplierItem{}, fmt.Errorf("r.dao.InsertItem -> %w", err)
	}

	return supplierItemToDomain(created), nil
}

func (r *SupplierRepository) UpdateItem(ctx context.Context, item domain.SupplierItem) (domain.SupplierItem, error) {
	updated, err := r.dao.UpdateItem(ctx, supplierItemToDAO(item))
	if err != nil {
		return domain.SupplierItem{}, fmt.Errorf("r.dao.UpdateItem -> %w", err)
	}

	return supplierItemToDomain(updated), nil
}

func (r *SupplierRepository) DeleteItem(ctx context.Context, id uint) error {
	if err := r.dao.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteItem -> %w", err)
	}

	return nil
}

func (r *SupplierRepository) FindItemByID(ctx context.Context, id uint) (domain.SupplierItem, error) {
	found, err := r.dao.FindItemByID(ctx, id)
	if err != nil {
		return domain.SupplierItem{}, fmt.Errorf("r.dao.FindItemByID -> %w", err)
	}

	return supplierItemToDomain(found), nil
}

func (r *SupplierRepository) FindItems(ctx context.Context, supplierIDs ...uint) ([]domain.SupplierItem, error) {
	found, err := r.dao.FindItems(ctx, supplierIDs...)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindItems -> %w", err)
	}

	items := make([]domain.SupplierItem, 0, len(found))
	for _, item := range found {
		items = append(items, supplierItemToDomain(item))
	}

	return items, nil
}

func supplierToDAO(s domain.Supplier) dao.Supplier {
	return dao.Supplier{
		ID:        s.ID,
		Name:      s.Name,
		Company:   s.Company,
		Email:     s.Email,
		Phone:     s.Phone,
		Address:   s.Address,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func supplierToDomain(s dao.Supplier) domain.Supplier {
	supplier := domain.Supplier{
		ID:        s.ID,
		Name:      s.Name,
		Company:   s.Company,
		Email:     s.Email,
		Phone:     s.Phone,
		Address:   s.Address,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Items != nil {
		supplier.Items = make([]domain.SupplierItem, 0, len(s.Items))
		for _, item := range s.Items {
			supplier.Items = append(supplier.Items, supplierItemToDomain(item))
		}
	}

	return supplier
}

func supplierItemToDAO(i domain.SupplierItem) dao.SupplierItem {
	return dao.SupplierItem{
		ID:         i.ID,
		SupplierID: i.SupplierID,
		Name:       i.Name,
		Type:       i.Type,
		Model:      i.Model,
		Watts:      i.Watts,
		BuyPrice:   i.BuyPrice,
		Status:     i.Status,
		Attachment: i.Attachment,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}

func supplierItemToDomain(i dao.SupplierItem) domain.SupplierItem {
	return domain.SupplierItem{
		ID:         i.ID,
		SupplierID: i.SupplierID,
		Name:       i.Name,
		Type:       i.Type,
		Model:      i.Model,
		Watts:      i.Watts,
		BuyPrice:   i.BuyPrice,
		Status:     i.Status,
		Attachment: i.Attachment,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}
