package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrSupplierNotFound     = errors.New("supplier not found")
	ErrSupplierItemNotFound = errors.New("supplier item not found")
)

type Supplier struct {
	ID uint `gorm:"primaryKey"`

	Name      string `gorm:"size:100;not null"`
	Company   string `gorm:"size:100;not null"`
	Email     string `gorm:"size:120"`
	Phone     string `gorm:"size:20"`
	Address   string `gorm:"type:text"`
	CreatedBy *uint  `gorm:"index"`

	Items []SupplierItem `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type SupplierItem struct {
	ID         uint `gorm:"primaryKey"`
	SupplierID uint `gorm:"index;not null"`

	Name       string `gorm:"size:100;not null"`
	Type       string `gorm:"size:50"`
	Model      string `gorm:"size:100;not null"`
	Watts      *float64
	BuyPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status     string          `gorm:"size:20;not null;default:Active"`
	Attachment string          `gorm:"size:255"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type SupplierDAO struct {
	db *gorm.DB
}

func NewSupplierDAO(db *gorm.DB) *SupplierDAO {
	return &SupplierDAO{
		db: db,
	}
}

func (d *SupplierDAO) Insert(ctx context.Context, supplier Supplier) (Supplier, error) {
	result := conn(ctx, d.db).Omit("Items").Create(&supplier)
	if result.Error != nil {
		return Supplier{}, result.Error
	}

	return supplier, nil
}

func (d *SupplierDAO) Update(ctx context.Context, supplier Supplier) (Supplier, error) {
	result := conn(ctx, d.db).Omit("Items").Save(&supplier)
	if result.Error != nil {
		return Supplier{}, result.Error
	}

	return supplier, nil
}

func (d *SupplierDAO) FindByID(ctx context.Context, id uint) (Supplier, error) {
	var supplier Supplier

	result := conn(ctx, d.db).First(&supplier, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Supplier{}, ErrSupplierNotFound
		}

		return Supplier{}, result.Error
	}

	return supplier, nil
}

func (d *SupplierDAO) FindAll(ctx context.Context, withItems bool) ([]Supplier, error) {
	var suppliers []Supplier

	q := conn(ctx, d.db).Order("created_at desc, id desc")
	if withItems {
		q = q.Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		})
	}

	if err := q.Find(&suppliers).Error; err != nil {
		return nil, err
	}

	return suppliers, nil
}

// Delete removes the suppliers with the given ids together with their items
// and returns how many suppliers were deleted.
func (d *SupplierDAO) Delete(ctx context.Context, ids ...uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := within(ctx, d.db, func(tx *gorm.DB) error {
		if err := tx.Where("supplier_id IN ?", ids).Delete(&SupplierItem{}).Error; err != nil {
			return err
		}

		// Movements outlive their supplier.
		err := tx.Model(&InventoryRecord{}).Where("supplier_id IN ?", ids).Update("supplier_id", nil).Error
		if err != nil {
			return err
		}

		result := tx.Where("id IN ?", ids).Delete(&Supplier{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected

		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

func (d *SupplierDAO) InsertItem(ctx context.Context, item SupplierItem) (SupplierItem, error) {
	result := conn(ctx, d.db).Create(&item)
	if result.Error != nil {
		return SupplierItem{}, result.Error
	}

	return item, nil
}

func (d *SupplierDAO) UpdateItem(ctx context.Context, item SupplierItem) (SupplierItem, error) {
	result := conn(ctx, d.db).Save(&item)
	if result.Error != nil {
		return SupplierItem{}, result.Error
	}

	return item, nil
}

func (d *SupplierDAO) DeleteItem(ctx context.Context, id uint) error {
	result := conn(ctx, d.db).Delete(&SupplierItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSupplierItemNotFound
	}

	return nil
}

func (d *SupplierDAO) FindItemByID(ctx context.Context, id uint) (SupplierItem, error) {
	var item SupplierItem

	result := conn(ctx, d.db).First(&item, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return SupplierItem{}, ErrSupplierItemNotFound
		}

		return SupplierItem{}, result.Error
	}

	return item, nil
}

func (d *SupplierDAO) FindItems(ctx context.Context, supplierIDs ...uint) ([]SupplierItem, error) {
	var items []SupplierItem

	result := conn(ctx, d.db).Where("supplier_id IN ?", supplierIDs).Order("id").Find(&items)
	if result.Error != nil {
		return nil, result.Error
	}

	return items, nil
}
