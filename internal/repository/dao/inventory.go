package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrInventoryRecordNotFound = errors.New("inventory record not found")

type InventoryRecord struct {
	ID         uint      `gorm:"primaryKey"`
	ProductID  uint      `gorm:"index;not null"`
	Product    Product   `gorm:"constraint:OnDelete:CASCADE"`
	SupplierID *uint     `gorm:"index"`
	Supplier   *Supplier `gorm:"constraint:OnDelete:SET NULL"`

	Type         string          `gorm:"size:10;not null;index"`
	Quantity     int             `gorm:"not null"`
	BalanceAfter int             `gorm:"not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reference    string          `gorm:"size:64;index"`
	Note         string          `gorm:"type:text"`
	CreatedBy    *uint

	CreatedAt time.Time `gorm:"not null;index"`
}

type InventoryFilter struct {
	ProductID  uint
	SupplierID uint
	Type       string
}

type InventoryDAO struct {
	db *gorm.DB
}

func NewInventoryDAO(db *gorm.DB) *InventoryDAO {
	return &InventoryDAO{
		db: db,
	}
}

func (d *InventoryDAO) Insert(ctx context.Context, record InventoryRecord) (InventoryRecord, error) {
	result := conn(ctx, d.db).Create(&record)
	if result.Error != nil {
		return InventoryRecord{}, result.Error
	}

	return record, nil
}

func (d *InventoryDAO) FindByID(ctx context.Context, id uint) (InventoryRecord, error) {
	var record InventoryRecord

	result := conn(ctx, d.db).First(&record, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return InventoryRecord{}, ErrInventoryRecordNotFound
		}

		return InventoryRecord{}, result.Error
	}

	return record, nil
}

func (d *InventoryDAO) List(ctx context.Context, filter InventoryFilter, offset, limit int) ([]InventoryRecord, int64, error) {
	q := conn(ctx, d.db).Model(&InventoryRecord{})
	if filter.ProductID != 0 {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.SupplierID != 0 {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []InventoryRecord
	if err := q.Order("id desc").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// StockCard returns the movements of one product in the order they were
// applied.
func (d *InventoryDAO) StockCard(ctx context.Context, productID uint) ([]InventoryRecord, error) {
	var records []InventoryRecord

	result := conn(ctx, d.db).Where("product_id = ?", productID).Order("id").Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}

	return records, nil
}
