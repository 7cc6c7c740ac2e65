package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductBarcodeExists = errors.New("product barcode already exists")
	ErrProductInUse         = errors.New("product in use")
)

type Product struct {
	ID uint `gorm:"primaryKey"`

	Name    string `gorm:"size:100;not null;index"`
	Model   string `gorm:"size:100"`
	Type    string `gorm:"size:50;index"`
	Watts   *float64
	Barcode *string `gorm:"size:64;uniqueIndex"`

	BuyPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SellPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity      int             `gorm:"not null;default:0"`
	ProfitPercent decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type ProductFilter struct {
	Type     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

type ProductTotals struct {
	TotalProducts int64
	TotalQuantity int64
	AvgSellPrice  decimal.NullDecimal
	AvgBuyPrice   decimal.NullDecimal
	TotalValue    decimal.NullDecimal
}

type TypeCount struct {
	Type  string
	Count int64
}

type ProductDAO struct {
	db *gorm.DB
}

func NewProductDAO(db *gorm.DB) *ProductDAO {
	return &ProductDAO{
		db: db,
	}
}

func (d *ProductDAO) Insert(ctx context.Context, product Product) (Product, error) {
	result := conn(ctx, d.db).Create(&product)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Product{}, ErrProductBarcodeExists
		}

		return Product{}, result.Error
	}

	return product, nil
}

func (d *ProductDAO) Update(ctx context.Context, product Product) (Product, error) {
	result := conn(ctx, d.db).Save(&product)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Product{}, ErrProductBarcodeExists
		}

		return Product{}, result.Error
	}

	return product, nil
}

// Delete removes a product and its stock card. Products that appear on a
// bill cannot be deleted.
func (d *ProductDAO) Delete(ctx context.Context, id uint) error {
	return within(ctx, d.db, func(tx *gorm.DB) error {
		var billed int64
		if err := tx.Model(&BillItem{}).Where("product_id = ?", id).Count(&billed).Error; err != nil {
			return err
		}
		if billed > 0 {
			return ErrProductInUse
		}

		if err := tx.Where("product_id = ?", id).Delete(&InventoryRecord{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&Product{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}

		return nil
	})
}

func (d *ProductDAO) FindByID(ctx context.Context, id uint) (Product, error) {
	return d.first(conn(ctx, d.db), "id = ?", id)
}

// FindByIDForUpdate loads a product and locks its row until the surrounding
// transaction ends.
func (d *ProductDAO) FindByIDForUpdate(ctx context.Context, id uint) (Product, error) {
	return d.first(forUpdate(conn(ctx, d.db)), "id = ?", id)
}

func (d *ProductDAO) FindByBarcode(ctx context.Context, barcode string) (Product, error) {
	return d.first(conn(ctx, d.db), "barcode = ?", barcode)
}

func (d *ProductDAO) first(q *gorm.DB, cond string, args ...any) (Product, error) {
	var product Product

	result := q.Where(cond, args...).First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Product{}, ErrProductNotFound
		}

		return Product{}, result.Error
	}

	return product, nil
}

func (d *ProductDAO) List(ctx context.Context, filter ProductFilter, offset, limit int) ([]Product, int64, error) {
	q := conn(ctx, d.db).Model(&Product{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.MinPrice != nil {
		q = q.Where("sell_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("sell_price <= ?", *filter.MaxPrice)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []Product
	if err := q.Order("id desc").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Search matches name, model or type case-insensitively among products that
// are in stock.
func (d *ProductDAO) Search(ctx context.Context, term string, limit int) ([]Product, error) {
	like := "%" + strings.ToLower(term) + "%"

	var products []Product
	result := conn(ctx, d.db).
		Where("quantity > 0").
		Where("(LOWER(name) LIKE ? OR LOWER(model) LIKE ? OR LOWER(type) LIKE ?)", like, like, like).
		Order("name").
		Limit(limit).
		Find(&products)
	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

func (d *ProductDAO) FindLowStock(ctx context.Context, threshold int, ids ...uint) ([]Product, error) {
	var products []Product

	q := conn(ctx, d.db).Where("quantity <= ?", threshold)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	if err := q.Order("quantity, id").Find(&products).Error; err != nil {
		return nil, err
	}

	return products, nil
}

// SetQuantity stores a new on-hand quantity and the stock value derived
// from it.
func (d *ProductDAO) SetQuantity(ctx context.Context, id uint, quantity int, amount decimal.Decimal) error {
	result := conn(ctx, d.db).
		Model(&Product{}).
		Where("id = ?", id).
		Updates(map[string]any{"quantity": quantity, "amount": amount})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (d *ProductDAO) Totals(ctx context.Context) (ProductTotals, error) {
	var totals ProductTotals

	result := conn(ctx, d.db).
		Model(&Product{}).
		Select(`COUNT(*) AS total_products,
			COALESCE(SUM(quantity), 0) AS total_quantity,
			AVG(sell_price) AS avg_sell_price,
			AVG(buy_price) AS avg_buy_price,
			SUM(amount) AS total_value`).
		Scan(&totals)
	if result.Error != nil {
		return ProductTotals{}, result.Error
	}

	return totals, nil
}

func (d *ProductDAO) CountByType(ctx context.Context) ([]TypeCount, error) {
	var counts []TypeCount

	result := conn(ctx, d.db).
		Model(&Product{}).
		Select("type, COUNT(*) AS count").
		Group("type").
		Scan(&counts)
	if result.Error != nil {
		return nil, result.Error
	}

	return counts, nil
}
