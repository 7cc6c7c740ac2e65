package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBillNotFound     = errors.New("bill not found")
	ErrBillNumberExists = errors.New("bill number already exists")
	ErrBillItemNotFound = errors.New("bill item not found")
)

type Bill struct {
	ID         uint   `gorm:"primaryKey"`
	BillNumber string `gorm:"size:32;uniqueIndex;not null"`

	CustomerName    string `gorm:"size:100;not null"`
	CustomerPhone   string `gorm:"size:20"`
	CustomerEmail   string `gorm:"size:120"`
	CustomerGST     string `gorm:"column:customer_gst;size:20"`
	CustomerAddress string `gorm:"type:text"`

	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountType  string          `gorm:"size:20;not null;default:amount"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxType       string          `gorm:"size:20;not null;default:percentage"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ChangeAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `gorm:"size:20;not null;default:cash;index"`
	PaymentStatus string          `gorm:"size:20;not null;default:pending;index"`
	Status        string          `gorm:"size:20;not null;default:active;index"`
	CreatedBy     *uint           `gorm:"index"`

	Items    []BillItem `gorm:"constraint:OnDelete:CASCADE"`
	Payments []Payment  `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

type BillItem struct {
	ID        uint    `gorm:"primaryKey"`
	BillID    uint    `gorm:"index;not null"`
	ProductID uint    `gorm:"index;not null"`
	Product   Product `gorm:"constraint:OnDelete:RESTRICT"`

	ProductName  string          `gorm:"size:100;not null"`
	ProductModel string          `gorm:"size:100"`
	ProductType  string          `gorm:"size:50"`
	SellPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity     int             `gorm:"not null"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ItemStatus   string          `gorm:"size:20;not null;default:pending;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Payment struct {
	ID        uint   `gorm:"primaryKey"`
	BillID    uint   `gorm:"index;not null"`
	PaymentID string `gorm:"size:64;uniqueIndex;not null"`

	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method    string          `gorm:"size:20;not null"`
	Status    string          `gorm:"size:20;not null"`
	Reference string          `gorm:"size:100"`
	Notes     string          `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
}

type BillFilter struct {
	StartDate     *time.Time
	EndDate       *time.Time
	Customer      string
	PaymentMethod string
	PaymentStatus string
}

type PeriodTotals struct {
	Count   int64
	Sales   decimal.NullDecimal
	Average decimal.NullDecimal
}

type MethodTotals struct {
	PaymentMethod string
	Count         int64
	Total         decimal.NullDecimal
}

type BillDAO struct {
	db *gorm.DB
}

func NewBillDAO(db *gorm.DB) *BillDAO {
	return &BillDAO{
		db: db,
	}
}

// Insert stores a bill together with its items and payments.
func (d *BillDAO) Insert(ctx context.Context, bill Bill) (Bill, error) {
	result := conn(ctx, d.db).Create(&bill)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Bill{}, ErrBillNumberExists
		}

		return Bill{}, result.Error
	}

	return bill, nil
}

// Update saves the bill header. Items and payments are left untouched.
func (d *BillDAO) Update(ctx context.Context, bill Bill) (Bill, error) {
	result := conn(ctx, d.db).Omit(clause.Associations).Save(&bill)
	if result.Error != nil {
		return Bill{}, result.Error
	}

	return bill, nil
}

func (d *BillDAO) NumberExists(ctx context.Context, number string) (bool, error) {
	var n int64

	result := conn(ctx, d.db).Model(&Bill{}).Where("bill_number = ?", number).Count(&n)
	if result.Error != nil {
		return false, result.Error
	}

	return n > 0, nil
}

func (d *BillDAO) FindByID(ctx context.Context, id uint) (Bill, error) {
	return d.first(withDetails(conn(ctx, d.db)), "id = ?", id)
}

// FindByIDForUpdate loads a bill with its items and payments and locks the
// bill row until the surrounding transaction ends.
func (d *BillDAO) FindByIDForUpdate(ctx context.Context, id uint) (Bill, error) {
	return d.first(withDetails(forUpdate(conn(ctx, d.db))), "id = ?", id)
}

func (d *BillDAO) FindByNumber(ctx context.Context, number string) (Bill, error) {
	return d.first(withDetails(conn(ctx, d.db)), "bill_number = ?", number)
}

func (d *BillDAO) first(q *gorm.DB, cond string, args ...any) (Bill, error) {
	var bill Bill

	result := q.Where(cond, args...).First(&bill)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Bill{}, ErrBillNotFound
		}

		return Bill{}, result.Error
	}

	return bill, nil
}

func withDetails(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

func (d *BillDAO) List(ctx context.Context, filter BillFilter, offset, limit int) ([]Bill, int64, error) {
	q := conn(ctx, d.db).Model(&Bill{})
	if filter.StartDate != nil {
		q = q.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("created_at <= ?", *filter.EndDate)
	}
	if filter.Customer != "" {
		q = q.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(filter.Customer)+"%")
	}
	if filter.PaymentMethod != "" {
		q = q.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bills []Bill
	err := q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&bills).Error
	if err != nil {
		return nil, 0, err
	}

	return bills, total, nil
}

// FindWithPendingItems returns active bills that still have pending items,
// newest first, with only their pending items loaded.
func (d *BillDAO) FindWithPendingItems(ctx context.Context) ([]Bill, error) {
	var bills []Bill

	pending := conn(ctx, d.db).
		Model(&BillItem{}).
		Select("bill_id").
		Where("item_status = ?", "pending")

	result := conn(ctx, d.db).
		Where("status = ?", "active").
		Where("id IN (?)", pending).
		Preload("Items", "item_status = ?", "pending").
		Order("created_at desc, id desc").
		Find(&bills)
	if result.Error != nil {
		return nil, result.Error
	}

	return bills, nil
}

func (d *BillDAO) FindItem(ctx context.Context, id uint) (BillItem, error) {
	var item BillItem

	result := conn(ctx, d.db).First(&item, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return BillItem{}, ErrBillItemNotFound
		}

		return BillItem{}, result.Error
	}

	return item, nil
}

func (d *BillDAO) UpdateItemStatus(ctx context.Context, status string, itemIDs ...uint) error {
	if len(itemIDs) == 0 {
		return nil
	}

	result := conn(ctx, d.db).
		Model(&BillItem{}).
		Where("id IN ?", itemIDs).
		Update("item_status", status)

	return result.Error
}

func (d *BillDAO) DeleteItem(ctx context.Context, id uint) error {
	result := conn(ctx, d.db).Delete(&BillItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBillItemNotFound
	}

	return nil
}

func (d *BillDAO) InsertPayment(ctx context.Context, payment Payment) (Payment, error) {
	result := conn(ctx, d.db).Create(&payment)
	if result.Error != nil {
		return Payment{}, result.Error
	}

	return payment, nil
}

func (d *BillDAO) UpdatePaymentStatus(ctx context.Context, billID uint, status string) error {
	result := conn(ctx, d.db).
		Model(&Payment{}).
		Where("bill_id = ?", billID).
		Update("status", status)

	return result.Error
}

func (d *BillDAO) CountPendingItems(ctx context.Context) (int64, error) {
	var n int64

	result := conn(ctx, d.db).
		Model(&BillItem{}).
		Joins("JOIN bills ON bills.id = bill_items.bill_id").
		Where("bills.status = ?", "active").
		Where("bill_items.item_status = ?", "pending").
		Count(&n)
	if result.Error != nil {
		return 0, result.Error
	}

	return n, nil
}

// TotalsSince aggregates active bills created at or after since.
func (d *BillDAO) TotalsSince(ctx context.Context, since time.Time) (PeriodTotals, error) {
	var totals PeriodTotals

	result := conn(ctx, d.db).
		Model(&Bill{}).
		Select("COUNT(*) AS count, SUM(total) AS sales, AVG(total) AS average").
		Where("status = ?", "active").
		Where("created_at >= ?", since).
		Scan(&totals)
	if result.Error != nil {
		return PeriodTotals{}, result.Error
	}

	return totals, nil
}

func (d *BillDAO) TotalsByPaymentMethod(ctx context.Context) ([]MethodTotals, error) {
	var totals []MethodTotals

	result := conn(ctx, d.db).
		Model(&Bill{}).
		Select("payment_method, COUNT(*) AS count, SUM(total) AS total").
		Where("status = ?", "active").
		Group("payment_method").
		Order("payment_method").
		Scan(&totals)
	if result.Error != nil {
		return nil, result.Error
	}

	return totals, nil
}

func (d *BillDAO) Recent(ctx context.Context, limit int) ([]Bill, error) {
	var bills []Bill

	result := conn(ctx, d.db).
		Where("status = ?", "active").
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&bills)
	if result.Error != nil {
		return nil, result.Error
	}

	return bills, nil
}
