package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/pkg/cache"
	"github.com/stockbook/inventory-api/internal/repository"
)

var (
	ErrProductBarcodeExists = repository.ErrProductBarcodeExists
	ErrProductInUse         = repository.ErrProductInUse
	ErrOutOfStock           = errors.New("product out of stock")
)

const (
	statisticsTTL     = time.Minute
	minSearchTermLen  = 2
	maxSearchResults  = 10
	openingStockNote  = "opening stock"
	stockAdjustedNote = "quantity edited"
)

type ProductRepository interface {
	StockProductRepository
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (domain.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error)
	Search(ctx context.Context, term string, limit int) ([]domain.Product, error)
	Statistics(ctx context.Context) (domain.ProductStatistics, error)
}

type ProductService struct {
	tx      Transactor
	repo    ProductRepository
	records InventoryRecordRepository
	ledger  *StockLedger
	cache   cache.Store
}

func NewProductService(tx Transactor, repo ProductRepository, records InventoryRecordRepository, ledger *StockLedger, store cache.Store) *ProductService {
	if store == nil {
		store = cache.Noop{}
	}

	return &ProductService{
		tx:      tx,
		repo:    repo,
		records: records,
		ledger:  ledger,
		cache:   store,
	}
}

func (s *ProductService) ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error) {
	products, err := s.repo.List(ctx, filter, page.Normalize(domain.DefaultPerPage))
	if err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	return products, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uint) (domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return product, nil
}

// CreateProduct stores the product with no stock and books its initial
// quantity as an IN movement.
func (s *ProductService) CreateProduct(ctx context.Context, product domain.Product, createdBy *uint) (domain.Product, error) {
	opening := product.Quantity
	product.Quantity = 0
	product.Barcode = normalizeBarcode(product.Barcode)
	product.CalculateValues()

	var records []domain.InventoryRecord
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.repo.Create(ctx, product)
		if err != nil {
			return fmt.Errorf("s.repo.Create -> %w", err)
		}
		product = created

		if opening <= 0 {
			return nil
		}
		product, records, err = s.applyOne(ctx, domain.Movement{
			ProductID: created.ID,
			Type:      domain.MovementIn,
			Quantity:  opening,
			UnitCost:  created.BuyPrice,
			Note:      openingStockNote,
			CreatedBy: createdBy,
		})

		return err
	})
	if err != nil {
		return domain.Product{}, err
	}
	s.ledger.Committed(ctx, records...)

	return product, nil
}

// UpdateProduct applies a partial update. A quantity change is booked as an
// ADJUST movement for the difference.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, update domain.ProductUpdate, updatedBy *uint) (domain.Product, error) {
	var (
		product domain.Product
		records []domain.InventoryRecord
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("s.repo.FindByIDForUpdate -> %w", err)
		}

		setIfPresent(&current.Name, update.Name)
		setIfPresent(&current.Model, update.Model)
		setIfPresent(&current.Type, update.Type)
		setIfPresent(&current.BuyPrice, update.BuyPrice)
		setIfPresent(&current.SellPrice, update.SellPrice)
		if update.Watts != nil {
			current.Watts = update.Watts
		}
		if update.Barcode != nil {
			current.Barcode = normalizeBarcode(update.Barcode)
		}
		current.CalculateValues()

		product, err = s.repo.Update(ctx, current)
		if err != nil {
			return fmt.Errorf("s.repo.Update -> %w", err)
		}

		if update.Quantity == nil || *update.Quantity == current.Quantity {
			return nil
		}
		product, records, err = s.applyOne(ctx, domain.Movement{
			ProductID: id,
			Type:      domain.MovementAdjust,
			Quantity:  *update.Quantity - current.Quantity,
			Note:      stockAdjustedNote,
			CreatedBy: updatedBy,
		})

		return err
	})
	if err != nil {
		return domain.Product{}, err
	}
	s.ledger.Committed(ctx, records...)

	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}
	s.ledger.InvalidateStatistics(ctx)

	return nil
}

// BulkCreateProducts creates each product independently. Errors are reported
// per index of products.
func (s *ProductService) BulkCreateProducts(ctx context.Context, products []domain.Product, createdBy *uint) domain.BulkResult {
	result := domain.BulkResult{
		Created: []domain.Product{},
		Errors:  []domain.BulkError{},
	}
	for i, p := range products {
		created, err := s.CreateProduct(ctx, p, createdBy)
		if err != nil {
			msg := err.Error()
			if errors.Is(err, ErrProductBarcodeExists) {
				msg = ErrProductBarcodeExists.Error()
			}
			result.Errors = append(result.Errors, domain.BulkError{Index: i, Errors: msg})
			continue
		}
		result.Created = append(result.Created, created)
	}
	result.TotalCreated = len(result.Created)
	result.TotalErrors = len(result.Errors)

	return result
}

// Statistics returns the catalogue summary, served from cache when fresh.
func (s *ProductService) Statistics(ctx context.Context) (domain.ProductStatistics, error) {
	var stats domain.ProductStatistics
	hit, err := s.cache.Get(ctx, productStatisticsKey, &stats)
	if err != nil {
		zap.L().Warn("read product statistics cache", zap.Error(err))
	}
	if hit {
		return stats, nil
	}

	stats, err = s.repo.Statistics(ctx)
	if err != nil {
		return domain.ProductStatistics{}, fmt.Errorf("s.repo.Statistics -> %w", err)
	}
	if err := s.cache.Set(ctx, productStatisticsKey, stats, statisticsTTL); err != nil {
		zap.L().Warn("write product statistics cache", zap.Error(err))
	}

	return stats, nil
}

// SearchInStock matches name, model or type and returns at most ten products
// that have stock. Terms shorter than two characters match nothing.
func (s *ProductService) SearchInStock(ctx context.Context, term string) ([]domain.Product, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < minSearchTermLen {
		return []domain.Product{}, nil
	}

	products, err := s.repo.Search(ctx, term, maxSearchResults)
	if err != nil {
		return nil, fmt.Errorf("s.repo.Search -> %w", err)
	}

	return products, nil
}

// FindForSale looks up a product by barcode and requires it to have stock.
func (s *ProductService) FindForSale(ctx context.Context, barcode string) (domain.Product, error) {
	product, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.repo.FindByBarcode -> %w", err)
	}
	if product.Quantity <= 0 {
		return domain.Product{}, ErrOutOfStock
	}

	return product, nil
}

// StockCard lists the inventory records of a product, oldest first.
func (s *ProductService) StockCard(ctx context.Context, id uint) ([]domain.InventoryRecord, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	records, err := s.records.StockCard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("s.records.StockCard -> %w", err)
	}

	return records, nil
}

func (s *ProductService) applyOne(ctx context.Context, m domain.Movement) (domain.Product, []domain.InventoryRecord, error) {
	product, record, err := s.ledger.Apply(ctx, m)
	if err != nil {
		return domain.Product{}, nil, fmt.Errorf("s.ledger.Apply -> %w", err)
	}

	return product, []domain.InventoryRecord{record}, nil
}

func normalizeBarcode(barcode *string) *string {
	if barcode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*barcode)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
