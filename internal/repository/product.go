package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/repository/dao"
)

var (
	ErrProductNotFound      = dao.ErrProductNotFound
	ErrProductBarcodeExists = dao.ErrProductBarcodeExists
	ErrProductInUse         = dao.ErrProductInUse
)

type ProductDAO interface {
	Insert(ctx context.Context, product dao.Product) (dao.Product, error)
	Update(ctx context.Context, product dao.Product) (dao.Product, error)
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (dao.Product, error)
	FindByIDForUpdate(ctx context.Context, id uint) (dao.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (dao.Product, error)
	List(ctx context.Context, filter dao.ProductFilter, offset, limit int) ([]dao.Product, int64, error)
	Search(ctx context.Context, term string, limit int) ([]dao.Product, error)
	FindLowStock(ctx context.Context, threshold int, ids ...uint) ([]dao.Product, error)
	SetQuantity(ctx context.Context, id uint, quantity int, amount decimal.Decimal) error
	Totals(ctx context.Context) (dao.ProductTotals, error)
	CountByType(ctx context.Context) ([]dao.TypeCount, error)
}

type ProductRepository struct {
	dao ProductDAO
}

func NewProductRepository(dao ProductDAO) *ProductRepository {
	return &ProductRepository{
		dao: dao,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	created, err := r.dao.Insert(ctx, productToDAO(product))
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return productToDomain(created), nil
}

func (r *ProductRepository) Update(ctx context.Context, product domain.Product) (domain.Product, error) {
	updated, err := r.dao.Update(ctx, productToDAO(product))
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return productToDomain(updated), nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (domain.Product, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return productToDomain(found), nil
}

func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, id uint) (domain.Product, error) {
	found, err := r.dao.FindByIDForUpdate(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.FindByIDForUpdate -> %w", err)
	}

	return productToDomain(found), nil
}

func (r *ProductRepository) FindByBarcode(ctx context.Context, barcode string) (domain.Product, error) {
	found, err := r.dao.FindByBarcode(ctx, barcode)
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.FindByBarcode -> %w", err)
	}

	return productToDomain(found), nil
}

func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error) {
	found, total, err := r.dao.List(ctx, dao.ProductFilter{
		Type:     filter.Type,
		MinPrice: filter.MinPrice,
		MaxPrice: filter.MaxPrice,
	}, page.Offset(), page.PerPage)
	if err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("r.dao.List -> %w", err)
	}

	return domain.NewPage(productsToDomain(found), total, page), nil
}

func (r *ProductRepository) Search(ctx context.Context, term string, limit int) ([]domain.Product, error) {
	found, err := r.dao.Search(ctx, term, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Search -> %w", err)
	}

	return productsToDomain(found), nil
}

func (r *ProductRepository) FindLowStock(ctx context.Context, threshold int, ids ...uint) ([]domain.Product, error) {
	found, err := r.dao.FindLowStock(ctx, threshold, ids...)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindLowStock -> %w", err)
	}

	return productsToDomain(found), nil
}

// SetQuantity stores the product's new on-hand quantity and refreshes its
// stock value.
func (r *ProductRepository) SetQuantity(ctx context.Context, product domain.Product, quantity int) (domain.Product, error) {
	product.Quantity = quantity
	product.CalculateValues()

	if err := r.dao.SetQuantity(ctx, product.ID, product.Quantity, product.Amount); err != nil {
		return domain.Product{}, fmt.Errorf("r.dao.SetQuantity -> %w", err)
	}

	return product, nil
}

func (r *ProductRepository) Statistics(ctx context.Context) (domain.ProductStatistics, error) {
	totals, err := r.dao.Totals(ctx)
	if err != nil {
		return domain.ProductStatistics{}, fmt.Errorf("r.dao.Totals -> %w", err)
	}

	counts, err := r.dao.CountByType(ctx)
	if err != nil {
		return domain.ProductStatistics{}, fmt.Errorf("r.dao.CountByType -> %w", err)
	}

	byType := make(map[string]int64, len(counts))
	for _, c := range counts {
		kind := c.Type
		if kind == "" {
			kind = domain.UncategorizedType
		}
		byType[kind] += c.Count
	}

	return domain.ProductStatistics{
		TotalProducts:       totals.TotalProducts,
		TotalQuantity:       totals.TotalQuantity,
		AverageSellPrice:    totals.AvgSellPrice.Decimal.Round(2),
		AverageBuyPrice:     totals.AvgBuyPrice.Decimal.Round(2),
		TotalInventoryValue: totals.TotalValue.Decimal.Round(2),
		ProductsByType:      byType,
	}, nil
}

func productsToDomain(found []dao.Product) []domain.Product {
	products := make([]domain.Product, 0, len(found))
	for _, p := range found {
		products = append(products, productToDomain(p))
	}

	return products
}

func productToDAO(p domain.Product) dao.Product {
	return dao.Product{
		ID:            p.ID,
		Name:          p.Name,
		Model:         p.Model,
		Type:          p.Type,
		Watts:         p.Watts,
		Barcode:       p.Barcode,
		BuyPrice:      p.BuyPrice,
		SellPrice:     p.SellPrice,
		Quantity:      p.Quantity,
		ProfitPercent: p.ProfitPercent,
		Amount:        p.Amount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func productToDomain(p dao.Product) domain.Product {
	return domain.Product{
		ID:            p.ID,
		Name:          p.Name,
		Model:         p.Model,
		Type:          p.Type,
		Watts:         p.Watts,
		Barcode:       p.Barcode,
		BuyPrice:      p.BuyPrice,
		SellPrice:     p.SellPrice,
		Quantity:      p.Quantity,
		ProfitPercent: p.ProfitPercent,
		Amount:        p.Amount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
