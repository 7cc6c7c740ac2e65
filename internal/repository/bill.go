package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/repository/dao"
)

var (
	ErrBillNotFound     = dao.ErrBillNotFound
	ErrBillNumberExists = dao.ErrBillNumberExists
	ErrBillItemNotFound = dao.ErrBillItemNotFound
)

type BillDAO interface {
	Insert(ctx context.Context, bill dao.Bill) (dao.Bill, error)
	Update(ctx context.Context, bill dao.Bill) (dao.Bill, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	FindByID(ctx context.Context, id uint) (dao.Bill, error)
	FindByIDForUpdate(ctx context.Context, id uint) (dao.Bill, error)
	FindByNumber(ctx context.Context, number string) (dao.Bill, error)
	List(ctx context.Context, filter dao.BillFilter, offset, limit int) ([]dao.Bill, int64, error)
	FindWithPendingItems(ctx context.Context) ([]dao.Bill, error)
	FindItem(ctx context.Context, id uint) (dao.BillItem, error)
	UpdateItemStatus(ctx context.Context, status string, itemIDs ...uint) error
	DeleteItem(ctx context.Context, id uint) error
	InsertPayment(ctx context.Context, payment dao.Payment) (dao.Payment, error)
	UpdatePaymentStatus(ctx context.Context, billID uint, status string) error
	CountPendingItems(ctx context.Context) (int64, error)
	TotalsSince(ctx context.Context, since time.Time) (dao.PeriodTotals, error)
	TotalsByPaymentMethod(ctx context.Context) ([]dao.MethodTotals, error)
	Recent(ctx context.Context, limit int) ([]dao.Bill, error)
}

type BillRepository struct {
	dao BillDAO
}

func NewBillRepository(dao BillDAO) *BillRepository {
	return &BillRepository{
		dao: dao,
	}
}

func (r *BillRepository) Create(ctx context.Context, bill domain.Bill) (domain.Bill, error) {
	created, err := r.dao.Insert(ctx, billToDAO(bill))
	if err != nil {
		return domain.Bill{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return billToDomain(created), nil
}

// Update saves the bill's header fields.
func (r *BillRepository) Update(ctx context.Context, bill domain.Bill) (domain.Bill, error) {
	header := billToDAO(bill)
	header.Items = nil
	header.Payments = nil

	if _, err := r.dao.Update(ctx, header); err != nil {
		return domain.Bill{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return bill, nil
}

func (r *BillRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	exists, err := r.dao.NumberExists(ctx, number)
	if err != nil {
		return false, fmt.Errorf("r.dao.NumberExists -> %w", err)
	}

	return exists, nil
}

func (r *BillRepository) FindByID(ctx context.Context, id uint) (domain.Bill, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Bill{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return billToDomain(found), nil
}

func (r *BillRepository) FindByIDForUpdate(ctx context.Context, id uint) (domain.Bill, error) {
	found, err := r.dao.FindByIDForUpdate(ctx, id)
	if err != nil {
		return domain.Bill{}, fmt.Errorf("r.dao.FindByIDForUpdate -> %w", err)
	}

	return billToDomain(found), nil
}

func (r *BillRepository) FindByNumber(ctx context.Context, number string) (domain.Bill, error) {
	found, err := r.dao.FindByNumber(ctx, number)
	if err != nil {
		return domain.Bill{}, fmt.Errorf("r.dao.FindByNumber -> %w", err)
	}

	return billToDomain(found), nil
}

func (r *BillRepository) List(ctx context.Context, filter domain.BillFilter, page domain.PageRequest) (domain.Page[domain.Bill], error) {
	found, total, err := r.dao.List(ctx, dao.BillFilter{
		StartDate:     filter.StartDate,
		EndDate:       filter.EndDate,
		Customer:      filter.Customer,
		PaymentMethod: filter.PaymentMethod,
		PaymentStatus: filter.PaymentStatus,
	}, page.Offset(), page.PerPage)
	if err != nil {
		return domain.Page[domain.Bill]{}, fmt.Errorf("r.dao.List -> %w", err)
	}

	return domain.NewPage(billsToDomain(found), total, page), nil
}

func (r *BillRepository) FindWithPendingItems(ctx context.Context) ([]domain.Bill, error) {
	found, err := r.dao.FindWithPendingItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindWithPendingItems -> %w", err)
	}

	return billsToDomain(found), nil
}

func (r *BillRepository) FindItem(ctx context.Context, id uint) (domain.BillItem, error) {
	found, err := r.dao.FindItem(ctx, id)
	if err != nil {
		return domain.BillItem{}, fmt.Errorf("r.dao.FindItem -> %w", err)
	}

	return billItemToDomain(found), nil
}

func (r *BillRepository) UpdateItemStatus(ctx context.Context, status string, itemIDs ...uint) error {
	if err := r.dao.UpdateItemStatus(ctx, status, itemIDs...); err != nil {
		return fmt.Errorf("r.dao.UpdateItemStatus -> %w", err)
	}

	return nil
}

func (r *BillRepository) DeleteItem(ctx context.Context, id uint) error {
	if err := r.dao.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteItem -> %w", err)
	}

	return nil
}

func (r *BillRepository) CreatePayment(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	created, err := r.dao.InsertPayment(ctx, paymentToDAO(payment))
	if err != nil {
		return domain.Payment{}, fmt.Errorf("r.dao.InsertPayment -> %w", err)
	}

	return paymentToDomain(created), nil
}

func (r *BillRepository) UpdatePaymentStatus(ctx context.Context, billID uint, status string) error {
	if err := r.dao.UpdatePaymentStatus(ctx, billID, status); err != nil {
		return fmt.Errorf("r.dao.UpdatePaymentStatus -> %w", err)
	}

	return nil
}

func (r *BillRepository) CountPendingItems(ctx context.Context) (int64, error) {
	n, err := r.dao.CountPendingItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountPendingItems -> %w", err)
	}

	return n, nil
}

func (r *BillRepository) TotalsSince(ctx context.Context, since time.Time) (domain.PeriodStatistics, error) {
	totals, err := r.dao.TotalsSince(ctx, since)
	if err != nil {
		return domain.PeriodStatistics{}, fmt.Errorf("r.dao.TotalsSince -> %w", err)
	}

	return domain.PeriodStatistics{
		Count:   totals.Count,
		Sales:   totals.Sales.Decimal.Round(2),
		Average: totals.Average.Decimal.Round(2),
	}, nil
}

func (r *BillRepository) TotalsByPaymentMethod(ctx context.Context) ([]domain.PaymentMethodStatistics, error) {
	totals, err := r.dao.TotalsByPaymentMethod(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.TotalsByPaymentMethod -> %w", err)
	}

	stats := make([]domain.PaymentMethodStatistics, 0, len(totals))
	for _, t := range totals {
		method := t.PaymentMethod
		if method == "" {
			method = "other"
		}
		stats = append(stats, domain.PaymentMethodStatistics{
			Method: method,
			Count:  t.Count,
			Total:  t.Total.Decimal.Round(2),
		})
	}

	return stats, nil
}

func (r *BillRepository) Recent(ctx context.Context, limit int) ([]domain.Bill, error) {
	found, err := r.dao.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Recent -> %w", err)
	}

	return billsToDomain(found), nil
}

func billsToDomain(found []dao.Bill) []domain.Bill {
	bills := make([]domain.Bill, 0, len(found))
	for _, b := range found {
		bills = append(bills, billToDomain(b))
	}

	return bills
}

func billToDAO(b domain.Bill) dao.Bill {
	bill := dao.Bill{
		ID:              b.ID,
		BillNumber:      b.BillNumber,
		CustomerName:    b.Customer.Name,
		CustomerPhone:   b.Customer.Phone,
		CustomerEmail:   b.Customer.Email,
		CustomerGST:     b.Customer.GST,
		CustomerAddress: b.Customer.Address,
		Subtotal:        b.Subtotal,
		Discount:        b.Discount,
		DiscountType:    b.DiscountType,
		Tax:             b.Tax,
		TaxType:         b.TaxType,
		Total:           b.Total,
		PaidAmount:      b.PaidAmount,
		ChangeAmount:    b.ChangeAmount,
		PaymentMethod:   b.PaymentMethod,
		PaymentStatus:   b.PaymentStatus,
		Status:          b.Status,
		CreatedBy:       b.CreatedBy,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	for _, item := range b.Items {
		bill.Items = append(bill.Items, dao.BillItem{
			ID:           item.ID,
			BillID:       item.BillID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductModel: item.ProductModel,
			ProductType:  item.ProductType,
			SellPrice:    item.SellPrice,
			Quantity:     item.Quantity,
			Total:        item.Total,
			ItemStatus:   item.ItemStatus,
			CreatedAt:    item.CreatedAt,
			UpdatedAt:    item.UpdatedAt,
		})
	}
	for _, p := range b.Payments {
		bill.Payments = append(bill.Payments, paymentToDAO(p))
	}

	return bill
}

func billToDomain(b dao.Bill) domain.Bill {
	bill := domain.Bill{
		ID:         b.ID,
		BillNumber: b.BillNumber,
		Customer: domain.Customer{
			Name:    b.CustomerName,
			Phone:   b.CustomerPhone,
			Email:   b.CustomerEmail,
			GST:     b.CustomerGST,
			Address: b.CustomerAddress,
		},
		Subtotal:      b.Subtotal,
		Discount:      b.Discount,
		DiscountType:  b.DiscountType,
		Tax:           b.Tax,
		TaxType:       b.TaxType,
		Total:         b.Total,
		PaidAmount:    b.PaidAmount,
		ChangeAmount:  b.ChangeAmount,
		PaymentMethod: b.PaymentMethod,
		PaymentStatus: b.PaymentStatus,
		Status:        b.Status,
		CreatedBy:     b.CreatedBy,
		Items:         make([]domain.BillItem, 0, len(b.Items)),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	for _, item := range b.Items {
		bill.Items = append(bill.Items, billItemToDomain(item))
	}
	for _, p := range b.Payments {
		bill.Payments = append(bill.Payments, paymentToDomain(p))
	}
	bill.PendingItems = bill.CountPendingItems()

	return bill
}

func billItemToDomain(i dao.BillItem) domain.BillItem {
	return domain.BillItem{
		ID:           i.ID,
		BillID:       i.BillID,
		ProductID:    i.ProductID,
		ProductName:  i.ProductName,
		ProductModel: i.ProductModel,
		ProductType:  i.ProductType,
		SellPrice:    i.SellPrice,
		Quantity:     i.Quantity,
		Total:        i.Total,
		ItemStatus:   i.ItemStatus,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

func paymentToDAO(p domain.Payment) dao.Payment {
	return dao.Payment{
		ID:        p.ID,
		BillID:    p.BillID,
		PaymentID: p.PaymentID,
		Amount:    p.Amount,
		Method:    p.Method,
		Status:    p.Status,
		Reference: p.Reference,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
	}
}

func paymentToDomain(p dao.Payment) domain.Payment {
	return domain.Payment{
		ID:        p.ID,
		BillID:    p.BillID,
		PaymentID: p.PaymentID,
		Amount:    p.Amount,
		Method:    p.Method,
		Status:    p.Status,
		Reference: p.Reference,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt,
	}
}
