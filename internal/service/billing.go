package service

import (
	"cmp"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/pkg/metrics"
	"github.com/stockbook/inventory-api/internal/repository"
)

var (
	ErrBillNotFound         = repository.ErrBillNotFound
	ErrBillItemNotFound     = repository.ErrBillItemNotFound
	ErrBillNumberExists     = repository.ErrBillNumberExists
	ErrEmptyBill            = errors.New("bill must have at least one item")
	ErrItemNotInBill        = errors.New("item does not belong to this bill")
	ErrItemNotPending       = errors.New("item is not pending")
	ErrNoPendingItems       = errors.New("no pending items found in this bill")
	ErrBillCancelled        = errors.New("bill is cancelled")
	ErrBillAlreadyCancelled = errors.New("bill is already cancelled")
	ErrNoPaymentAmount      = errors.New("paid_amount or additional_amount is required")
	ErrNegativeAmount       = errors.New("amount must not be negative")
)

const (
	DefaultBillsPerPage = 20
	recentBillsLimit    = 5
	billNumberAttempts  = 5
	billNumberAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	billNumberRandLen   = 8
)

type BillRepository interface {
	Create(ctx context.Context, bill domain.Bill) (domain.Bill, error)
	Update(ctx context.Context, bill domain.Bill) (domain.Bill, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	FindByID(ctx context.Context, id uint) (domain.Bill, error)
	FindByIDForUpdate(ctx context.Context, id uint) (domain.Bill, error)
	FindByNumber(ctx context.Context, number string) (domain.Bill, error)
	List(ctx context.Context, filter domain.BillFilter, page domain.PageRequest) (domain.Page[domain.Bill], error)
	FindWithPendingItems(ctx context.Context) ([]domain.Bill, error)
	UpdateItemStatus(ctx context.Context, status string, itemIDs ...uint) error
	DeleteItem(ctx context.Context, id uint) error
	CreatePayment(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	UpdatePaymentStatus(ctx context.Context, billID uint, status string) error
	CountPendingItems(ctx context.Context) (int64, error)
	TotalsSince(ctx context.Context, since time.Time) (domain.PeriodStatistics, error)
	TotalsByPaymentMethod(ctx context.Context) ([]domain.PaymentMethodStatistics, error)
	Recent(ctx context.Context, limit int) ([]domain.Bill, error)
}

type LowStockEnqueuer interface {
	EnqueueLowStockAlert(ctx context.Context, reference string, productIDs []uint) error
}

type BillingConfig struct {
	NumberPrefix      string
	LowStockThreshold int
}

type BillingService struct {
	tx       Transactor
	bills    BillRepository
	ledger   *StockLedger
	enqueuer LowStockEnqueuer
	conf     BillingConfig
	now      func() time.Time
}

// NewBillingService builds the service. A nil enqueuer disables low-stock
// alerts.
func NewBillingService(tx Transactor, bills BillRepository, ledger *StockLedger, enqueuer LowStockEnqueuer, conf BillingConfig) *BillingService {
	if conf.NumberPrefix == "" {
		conf.NumberPrefix = "BT"
	}

	return &BillingService{
		tx:       tx,
		bills:    bills,
		ledger:   ledger,
		enqueuer: enqueuer,
		conf:     conf,
		now:      time.Now,
	}
}

// CreateBill takes the items out of stock and stores the bill with its
// opening payment in one transaction.
func (s *BillingService) CreateBill(ctx context.Context, req domain.NewBill) (domain.Bill, error) {
	if len(req.Lines) == 0 {
		return domain.Bill{}, ErrEmptyBill
	}
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return domain.Bill{}, ErrInvalidQuantity
		}
	}
	if req.PaidAmount.IsNegative() {
		return domain.Bill{}, ErrNegativeAmount
	}

	bill := domain.Bill{
		Customer:      req.Customer,
		Discount:      req.Discount,
		DiscountType:  defaultString(req.DiscountType, domain.AdjustmentAmount),
		Tax:           req.Tax,
		TaxType:       defaultString(req.TaxType, domain.AdjustmentPercentage),
		PaidAmount:    req.PaidAmount,
		PaymentMethod: defaultString(req.PaymentMethod, domain.PaymentMethodCash),
		Status:        domain.BillStatusActive,
		CreatedBy:     req.CreatedBy,
	}
	bill.Customer.Name = defaultString(bill.Customer.Name, domain.WalkInCustomer)

	var (
		created  domain.Bill
		records  []domain.InventoryRecord
		lowStock []uint
		err      error
	)
	// A number taken between the lookup and the insert rolls the whole
	// sale back; it is retried with a fresh number.
	for range billNumberAttempts {
		err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
			var err error
			created, records, lowStock, err = s.storeBill(ctx, bill, req)
			return err
		})
		if !errors.Is(err, ErrBillNumberExists) {
			break
		}
	}
	if err != nil {
		return domain.Bill{}, err
	}
	bill = created

	metrics.BillsCreated.Inc()
	s.ledger.Committed(ctx, records...)
	enqueueLowStock(ctx, s.enqueuer, bill.BillNumber, lowStock)
	bill.PendingItems = bill.CountPendingItems()

	return bill, nil
}

// storeBill takes the lines out of stock and inserts the bill under a new
// number. It must run inside a transaction.
func (s *BillingService) storeBill(ctx context.Context, bill domain.Bill, req domain.NewBill) (domain.Bill, []domain.InventoryRecord, []uint, error) {
	number, err := s.nextBillNumber(ctx)
	if err != nil {
		return domain.Bill{}, nil, nil, err
	}
	bill.BillNumber = number

	var (
		records  []domain.InventoryRecord
		lowStock []uint
	)
	items := make([]domain.BillItem, len(req.Lines))
	for _, i := range lockOrder(req.Lines) {
		line := req.Lines[i]
		product, record, err := s.ledger.Apply(ctx, domain.Movement{
			ProductID: line.ProductID,
			Type:      domain.MovementOut,
			Quantity:  line.Quantity,
			Reference: number,
			Note:      "sold",
			CreatedBy: req.CreatedBy,
		})
		if err != nil {
			return domain.Bill{}, nil, nil, fmt.Errorf("s.ledger.Apply -> %w", err)
		}
		records = append(records, record)
		if product.Quantity <= s.conf.LowStockThreshold && !slices.Contains(lowStock, product.ID) {
			lowStock = append(lowStock, product.ID)
		}

		items[i] = domain.BillItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductModel: product.Model,
			ProductType:  product.Type,
			SellPrice:    product.SellPrice,
			Quantity:     line.Quantity,
			Total:        domain.LineTotal(product.SellPrice, line.Quantity),
			ItemStatus:   domain.ItemStatusPending,
		}
	}
	bill.Items = items
	bill.CalculateTotals()

	created, err := s.bills.Create(ctx, bill)
	if err != nil {
		return domain.Bill{}, nil, nil, fmt.Errorf("s.bills.Create -> %w", err)
	}

	if created.PaidAmount.IsPositive() {
		payment, err := s.bills.CreatePayment(ctx, domain.Payment{
			BillID:    created.ID,
			PaymentID: paymentID(created.BillNumber, 1),
			Amount:    created.PaidAmount,
			Method:    created.PaymentMethod,
			Status:    paymentRecordStatus(created.PaymentStatus),
		})
		if err != nil {
			return domain.Bill{}, nil, nil, fmt.Errorf("s.bills.CreatePayment -> %w", err)
		}
		created.Payments = append(created.Payments, payment)
	}

	return created, records, lowStock, nil
}

func (s *BillingService) ListBills(ctx context.Context, filter domain.BillFilter, page domain.PageRequest) (domain.Page[domain.Bill], error) {
	bills, err := s.bills.List(ctx, filter, page.Normalize(DefaultBillsPerPage))
	if err != nil {
		return domain.Page[domain.Bill]{}, fmt.Errorf("s.bills.List -> %w", err)
	}

	return bills, nil
}

func (s *BillingService) GetBill(ctx context.Context, id uint) (domain.Bill, error) {
	bill, err := s.bills.FindByID(ctx, id)
	if err != nil {
		return domain.Bill{}, fmt.Errorf("s.bills.FindByID -> %w", err)
	}

	return bill, nil
}

func (s *BillingService) GetBillByNumber(ctx context.Context, number string) (domain.Bill, error) {
	bill, err := s.bills.FindByNumber(ctx, number)
	if err != nil {
		return domain.Bill{}, fmt.Errorf("s.bills.FindByNumber -> %w", err)
	}

	return bill, nil
}

// UpdatePayment sets or increases the paid amount and records the
// difference as a payment, or as a refund when the amount went down.
func (s *BillingService) UpdatePayment(ctx context.Context, id uint, update domain.PaymentUpdate) (domain.Bill, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		bill, err := s.bills.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("s.bills.FindByIDForUpdate -> %w", err)
		}
		if bill.Status == domain.BillStatusCancelled {
			return ErrBillCancelled
		}

		var paid decimal.Decimal
		switch {
		case update.PaidAmount != nil:
			paid = *update.PaidAmount
		case update.AdditionalAmount != nil:
			if update.AdditionalAmount.IsNegative() {
				return ErrNegativeAmount
			}
			paid = bill.PaidAmount.Add(*update.AdditionalAmount)
		default:
			return ErrNoPaymentAmount
		}
		if paid.IsNegative() {
			return ErrNegativeAmount
		}

		delta := paid.Sub(bill.PaidAmount)
		bill.PaidAmount = paid
		bill.PaymentMethod = defaultString(update.PaymentMethod, bill.PaymentMethod)
		bill.CalculateTotals()

		if _, err := s.bills.Update(ctx, bill); err != nil {
			return fmt.Errorf("s.bills.Update -> %w", err)
		}
		if delta.IsZero() {
			return nil
		}

		// A lowered paid amount is money handed back.
		status := paymentRecordStatus(bill.PaymentStatus)
		if delta.IsNegative() {
			status = domain.PaymentRecordRefunded
		}

		_, err = s.bills.CreatePayment(ctx, domain.Payment{
			BillID:    bill.ID,
			PaymentID: paymentID(bill.BillNumber, len(bill.Payments)+1),
			Amount:    delta.Abs(),
			Method:    bill.PaymentMethod,
			Status:    status,
			Reference: update.Reference,
			Notes:     update.Notes,
		})
		if err != nil {
			return fmt.Errorf("s.bills.CreatePayment -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Bill{}, err
	}

	return s.GetBill(ctx, id)
}

// CancelBill returns the stock of items not yet handed over, marks them
// cancelled and refunds the bill's payments.
func (s *BillingService) CancelBill(ctx context.Context, id uint, cancelledBy *uint) (domain.Bill, error) {
	var records []domain.InventoryRecord
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		bill, err := s.bills.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("s.bills.FindByIDForUpdate -> %w", err)
		}
		if bill.Status == domain.BillStatusCancelled {
			return ErrBillAlreadyCancelled
		}

		var restored []uint
		for _, item := range bill.Items {
			if item.ItemStatus == domain.ItemStatusCompleted {
				continue
			}
			_, record, err := s.ledger.Apply(ctx, domain.Movement{
				ProductID: item.ProductID,
				Type:      domain.MovementIn,
				Quantity:  item.Quantity,
				Reference: bill.BillNumber,
				Note:      "bill cancelled",
				CreatedBy: cancelledBy,
			})
			if err != nil {
				return fmt.Errorf("s.ledger.Apply -> %w", err)
			}
			records = append(records, record)
			restored = append(restored, item.ID)
		}

		if err := s.bills.UpdateItemStatus(ctx, domain.ItemStatusCancelled, restored...); err != nil {
			return fmt.Errorf("s.bills.UpdateItemStatus -> %w", err)
		}
		if err := s.bills.UpdatePaymentStatus(ctx, bill.ID, domain.PaymentRecordRefunded); err != nil {
			return fmt.Errorf("s.bills.UpdatePaymentStatus -> %w", err)
		}

		bill.Status = domain.BillStatusCancelled
		if _, err := s.bills.Update(ctx, bill); err != nil {
			return fmt.Errorf("s.bills.Update -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Bill{}, err
	}
	s.ledger.Committed(ctx, records...)

	return s.GetBill(ctx, id)
}

func (s *BillingService) BillsWithPendingItems(ctx context.Context) ([]domain.Bill, error) {
	bills, err := s.bills.FindWithPendingItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.bills.FindWithPendingItems -> %w", err)
	}

	return bills, nil
}

func (s *BillingService) PendingItems(ctx context.Context, billID uint) (domain.Bill, []domain.BillItem, error) {
	bill, err := s.GetBill(ctx, billID)
	if err != nil {
		return domain.Bill{}, nil, err
	}

	items := []domain.BillItem{}
	for _, item := range bill.Items {
		if item.ItemStatus == domain.ItemStatusPending {
			items = append(items, item)
		}
	}

	return bill, items, nil
}

// CompleteItem marks a pending item as handed over to the customer.
func (s *BillingService) CompleteItem(ctx context.Context, billID, itemID uint) (domain.BillItem, error) {
	var completed domain.BillItem
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		bill, err := s.bills.FindByIDForUpdate(ctx, billID)
		if err != nil {
			return fmt.Errorf("s.bills.FindByIDForUpdate -> %w", err)
		}
		item, err := findItem(bill, itemID)
		if err != nil {
			return err
		}
		if item.ItemStatus != domain.ItemStatusPending {
			return ErrItemNotPending
		}

		if err := s.bills.UpdateItemStatus(ctx, domain.ItemStatusCompleted, item.ID); err != nil {
			return fmt.Errorf("s.bills.UpdateItemStatus -> %w", err)
		}
		item.ItemStatus = domain.ItemStatusCompleted
		completed = item

		return nil
	})
	if err != nil {
		return domain.BillItem{}, err
	}

	return completed, nil
}

// CompleteAll marks every pending item of the bill as completed and returns
// how many changed.
func (s *BillingService) CompleteAll(ctx context.Context, billID uint) (int, error) {
	var n int
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		bill, err := s.bills.FindByIDForUpdate(ctx, billID)
		if err != nil {
			return fmt.Errorf("s.bills.FindByIDForUpdate -> %w", err)
		}

		var ids []uint
		for _, item := range bill.Items {
			if item.ItemStatus == domain.ItemStatusPending {
				ids = append(ids, item.ID)
			}
		}
		if len(ids) == 0 {
			return ErrNoPendingItems
		}

		if err := s.bills.UpdateItemStatus(ctx, domain.ItemStatusCompleted, ids...); err != nil {
			return fmt.Errorf("s.bills.UpdateItemStatus -> %w", err)
		}
		n = len(ids)

		return nil
	})

	return n, err
}

// VoidItem removes an item from an active bill, restocking it unless it was
// already handed over, and recalculates the totals.
func (s *BillingService) VoidItem(ctx context.Context, billID, itemID uint, voidedBy *uint) (domain.Bill, error) {
	var records []domain.InventoryRecord
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		bill, err := s.bills.FindByIDForUpdate(ctx, billID)
		if err != nil {
			return fmt.Errorf("s.bills.FindByIDForUpdate -> %w", err)
		}
		if bill.Status == domain.BillStatusCancelled {
			return ErrBillCancelled
		}
		item, err := findItem(bill, itemID)
		if err != nil {
			return err
		}

		if item.ItemStatus != domain.ItemStatusCompleted {
			_, record, err := s.ledger.Apply(ctx, domain.Movement{
				ProductID: item.ProductID,
				Type:      domain.MovementIn,
				Quantity:  item.Quantity,
				Reference: bill.BillNumber,
				Note:      "item voided",
				CreatedBy: voidedBy,
			})
			if err != nil {
				return fmt.Errorf("s.ledger.Apply -> %w", err)
			}
			records = append(records, record)
		}

		if err := s.bills.DeleteItem(ctx, item.ID); err != nil {
			return fmt.Errorf("s.bills.DeleteItem -> %w", err)
		}
		bill.Items = slices.DeleteFunc(bill.Items, func(i domain.BillItem) bool { return i.ID == item.ID })
		bill.CalculateTotals()
		if _, err := s.bills.Update(ctx, bill); err != nil {
			return fmt.Errorf("s.bills.Update -> %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Bill{}, err
	}
	s.ledger.Committed(ctx, records...)

	return s.GetBill(ctx, billID)
}

// Statistics summarises sales of the current day, week (from Monday) and
// month, ignoring cancelled bills.
func (s *BillingService) Statistics(ctx context.Context) (domain.BillStatistics, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var stats domain.BillStatistics
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Today, err = s.bills.TotalsSince(ctx, today)
		return wrap("s.bills.TotalsSince", err)
	})
	g.Go(func() (err error) {
		stats.ThisWeek, err = s.bills.TotalsSince(ctx, weekStart)
		return wrap("s.bills.TotalsSince", err)
	})
	g.Go(func() (err error) {
		stats.ThisMonth, err = s.bills.TotalsSince(ctx, monthStart)
		return wrap("s.bills.TotalsSince", err)
	})
	g.Go(func() (err error) {
		stats.PendingItems, err = s.bills.CountPendingItems(ctx)
		return wrap("s.bills.CountPendingItems", err)
	})
	g.Go(func() (err error) {
		stats.PaymentMethods, err = s.bills.TotalsByPaymentMethod(ctx)
		return wrap("s.bills.TotalsByPaymentMethod", err)
	})
	g.Go(func() (err error) {
		stats.RecentBills, err = s.bills.Recent(ctx, recentBillsLimit)
		return wrap("s.bills.Recent", err)
	})
	if err := g.Wait(); err != nil {
		return domain.BillStatistics{}, err
	}

	return stats, nil
}

func (s *BillingService) nextBillNumber(ctx context.Context) (string, error) {
	for range billNumberAttempts {
		number, err := newBillNumber(s.conf.NumberPrefix, s.now())
		if err != nil {
			return "", err
		}
		exists, err := s.bills.NumberExists(ctx, number)
		if err != nil {
			return "", fmt.Errorf("s.bills.NumberExists -> %w", err)
		}
		if !exists {
			return number, nil
		}
	}

	return "", ErrBillNumberExists
}

// enqueueLowStock schedules an alert for products at or below the threshold.
// The stock change is already committed, so failures are only logged.
func enqueueLowStock(ctx context.Context, enqueuer LowStockEnqueuer, reference string, productIDs []uint) {
	if enqueuer == nil || len(productIDs) == 0 {
		return
	}
	if err := enqueuer.EnqueueLowStockAlert(ctx, reference, productIDs); err != nil {
		zap.L().Warn("enqueue low stock alert", zap.String("reference", reference), zap.Error(err))
	}
}

// newBillNumber formats PREFIX-YYMMDD-XXXXXXXX with eight random uppercase
// alphanumerics.
func newBillNumber(prefix string, at time.Time) (string, error) {
	suffix := make([]byte, billNumberRandLen)
	size := big.NewInt(int64(len(billNumberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("rand.Int -> %w", err)
		}
		suffix[i] = billNumberAlphabet[n.Int64()]
	}

	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("060102"), suffix), nil
}

func paymentID(billNumber string, n int) string {
	return fmt.Sprintf("PAY-%s-%d", billNumber, n)
}

func paymentRecordStatus(billPaymentStatus string) string {
	if billPaymentStatus == domain.PaymentStatusPaid {
		return domain.PaymentRecordCompleted
	}

	return domain.PaymentRecordPartial
}

func findItem(bill domain.Bill, itemID uint) (domain.BillItem, error) {
	for _, item := range bill.Items {
		if item.ID == itemID {
			return item, nil
		}
	}

	return domain.BillItem{}, ErrItemNotInBill
}

// lockOrder returns the indexes of lines sorted by product id so concurrent
// bills lock products in the same order.
func lockOrder(lines []domain.BillLine) []int {
	order := make([]int, len(lines))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(lines[a].ProductID, lines[b].ProductID)
	})

	return order
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}

	return v
}

func wrap(op string, err error) error {
	if err != nil {
		return fmt.Errorf("%s -> %w", op, err)
	}

	return nil
}
