package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/repository"
)

var (
	ErrSupplierNotFound     = repository.ErrSupplierNotFound
	ErrSupplierItemNotFound = repository.ErrSupplierItemNotFound
	ErrNoSupplierIDs        = errors.New("no supplier ids provided")
)

type SupplierRepository interface {
	Create(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error)
	Update(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error)
	FindByID(ctx context.Context, id uint) (domain.Supplier, error)
	FindAll(ctx context.Context, withItems bool) ([]domain.Supplier, error)
	Delete(ctx context.Context, ids ...uint) (int64, error)
	CreateItem(ctx context.Context, item domain.SupplierItem) (domain.SupplierItem, error)
	UpdateItem(ctx context.Context, item domain.SupplierItem) (domain.SupplierItem, error)
	DeleteItem(ctx context.Context, id uint) error
	FindItemByID(ctx context.Context, id uint) (domain.SupplierItem, error)
	FindItems(ctx context.Context, supplierIDs ...uint) ([]domain.SupplierItem, error)
}

type FileRemover interface {
	Delete(ctx context.Context, path string) error
}

type SupplierService struct {
	repo  SupplierRepository
	files FileRemover
}

func NewSupplierService(repo SupplierRepository, files FileRemover) *SupplierService {
	return &SupplierService{
		repo:  repo,
		files: files,
	}
}

func (s *SupplierService) ListSuppliers(ctx context.Context, withItems bool) ([]domain.Supplier, error) {
	suppliers, err := s.repo.FindAll(ctx, withItems)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return suppliers, nil
}

func (s *SupplierService) GetSupplier(ctx context.Context, id uint) (domain.Supplier, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return supplier, nil
}

func (s *SupplierService) CreateSupplier(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	created, err := s.repo.Create(ctx, supplier)
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *SupplierService) UpdateSupplier(ctx context.Context, id uint, update domain.SupplierUpdate) (domain.Supplier, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	setIfPresent(&supplier.Name, update.Name)
	setIfPresent(&supplier.Company, update.Company)
	setIfPresent(&supplier.Email, update.Email)
	setIfPresent(&supplier.Phone, update.Phone)
	setIfPresent(&supplier.Address, update.Address)

	updated, err := s.repo.Update(ctx, supplier)
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *SupplierService) DeleteSupplier(ctx context.Context, id uint) error {
	n, err := s.deleteSuppliers(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSupplierNotFound
	}

	return nil
}

// BulkDeleteSuppliers deletes the suppliers that exist among ids and returns
// how many were removed.
func (s *SupplierService) BulkDeleteSuppliers(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoSupplierIDs
	}

	return s.deleteSuppliers(ctx, ids...)
}

func (s *SupplierService) deleteSuppliers(ctx context.Context, ids ...uint) (int64, error) {
	items, err := s.repo.FindItems(ctx, ids...)
	if err != nil {
		return 0, fmt.Errorf("s.repo.FindItems -> %w", err)
	}

	n, err := s.repo.Delete(ctx, ids...)
	if err != nil {
		return 0, fmt.Errorf("s.repo.Delete -> %w", err)
	}

	for _, item := range items {
		s.removeAttachment(ctx, item.Attachment)
	}

	return n, nil
}

func (s *SupplierService) ListItems(ctx context.Context, supplierID uint) ([]domain.SupplierItem, error) {
	if _, err := s.repo.FindByID(ctx, supplierID); err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	items, err := s.repo.FindItems(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindItems -> %w", err)
	}

	return items, nil
}

func (s *SupplierService) GetItem(ctx context.Context, id uint) (domain.SupplierItem, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return domain.SupplierItem{}, fmt.Errorf("s.repo.FindItemByID -> %w", err)
	}

	return item, nil
}

func (s *SupplierService) CreateItem(ctx context.Context, item domain.SupplierItem) (domain.SupplierItem, error) {
	if _, err := s.repo.FindByID(ctx, item.SupplierID); err != nil {
		return domain.SupplierItem{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}
	if item.Status == "" {
		item.Status = domain.ItemStatusActive
	}

	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return domain.SupplierItem{}, fmt.Errorf("s.repo.CreateItem -> %w", err)
	}

	return created, nil
}

// UpdateItem applies a partial update. A replaced attachment is removed from
// storage.
func (s *SupplierService) UpdateItem(ctx context.Context, id uint, update domain.SupplierItemUpdate) (domain.SupplierItem, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return domain.SupplierItem{}, fmt.Errorf("s.repo.FindItemByID -> %w", err)
	}
	previous := item.Attachment

	setIfPresent(&item.Name, update.Name)
	setIfPresent(&item.Type, update.Type)
	setIfPresent(&item.Model, update.Model)
	setIfPresent(&item.Status, update.Status)
	setIfPresent(&item.Attachment, update.Attachment)
	if update.Watts != nil {
		item.Watts = update.Watts
	}
	if update.BuyPrice != nil {
		item.BuyPrice = *update.BuyPrice
	}

	updated, err := s.repo.UpdateItem(ctx, item)
	if err != nil {
		return domain.SupplierItem{}, fmt.Errorf("s.repo.UpdateItem -> %w", err)
	}
	if previous != updated.Attachment {
		s.removeAttachment(ctx, previous)
	}

	return updated, nil
}

func (s *SupplierService) DeleteItem(ctx context.Context, id uint) error {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.FindItemByID -> %w", err)
	}

	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeleteItem -> %w", err)
	}
	s.removeAttachment(ctx, item.Attachment)

	return nil
}

// removeAttachment deletes a stored file. Failures are logged only since the
// database change already happened.
func (s *SupplierService) removeAttachment(ctx context.Context, path string) {
	if path == "" || s.files == nil {
		return
	}
	if err := s.files.Delete(ctx, path); err != nil {
		zap.L().Warn("remove attachment", zap.String("path", path), zap.Error(err))
	}
}

func setIfPresent[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
