package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AdjustmentAmount     = "amount"
	AdjustmentPercentage = "percentage"

	PaymentMethodCash   = "cash"
	PaymentMethodCard   = "card"
	PaymentMethodUPI    = "upi"
	PaymentMethodCredit = "credit"

	PaymentStatusPaid    = "paid"
	PaymentStatusPartial = "partial"
	PaymentStatusPending = "pending"

	BillStatusActive    = "active"
	BillStatusCancelled = "cancelled"

	ItemStatusPending   = "pending"
	ItemStatusCompleted = "completed"
	ItemStatusCancelled = "cancelled"

	PaymentRecordCompleted = "completed"
	PaymentRecordPartial   = "partial"
	PaymentRecordRefunded  = "refunded"

	WalkInCustomer = "Walk-in Customer"
)

var PaymentMethods = []string{PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI, PaymentMethodCredit}

type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	GST     string `json:"gst"`
	Address string `json:"address"`
}

type Bill struct {
	ID            uint            `json:"id"`
	BillNumber    string          `json:"bill_number"`
	Customer      Customer        `json:"customer"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	DiscountType  string          `json:"discount_type"`
	Tax           decimal.Decimal `json:"tax"`
	TaxType       string          `json:"tax_type"`
	Total         decimal.Decimal `json:"total"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	ChangeAmount  decimal.Decimal `json:"change_amount"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	Status        string          `json:"status"`
	CreatedBy     *uint           `json:"created_by"`
	Items         []BillItem      `json:"items"`
	Payments      []Payment       `json:"payments,omitempty"`
	PendingItems  int             `json:"pending_items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type BillItem struct {
	ID           uint            `json:"id"`
	BillID       uint            `json:"bill_id"`
	ProductID    uint            `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductModel string          `json:"product_model"`
	ProductType  string          `json:"product_type"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	Quantity     int             `json:"quantity"`
	Total        decimal.Decimal `json:"total"`
	ItemStatus   string          `json:"item_status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type Payment struct {
	ID        uint            `json:"id"`
	BillID    uint            `json:"bill_id"`
	PaymentID string          `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Status    string          `json:"status"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
}

// Totals holds the figures derived from a bill's items and adjustments.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	Change         decimal.Decimal
	PaymentStatus  string
}

func adjustment(base, value decimal.Decimal, kind string) decimal.Decimal {
	if kind == AdjustmentPercentage {
		return base.Mul(value).Div(hundred).Round(2)
	}

	return value.Round(2)
}

// CalculateTotals computes subtotal, discount, tax, total, change and payment
// status. Tax applies to the discounted subtotal.
func (b *Bill) CalculateTotals() Totals {
	subtotal := decimal.Zero
	for _, item := range b.Items {
		subtotal = subtotal.Add(item.Total)
	}

	discount := adjustment(subtotal, b.Discount, b.DiscountType)
	tax := adjustment(subtotal.Sub(discount), b.Tax, b.TaxType)
	total := subtotal.Sub(discount).Add(tax).Round(2)

	change := b.PaidAmount.Sub(total)
	if change.IsNegative() {
		change = decimal.Zero
	}

	t := Totals{
		Subtotal:       subtotal.Round(2),
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          total,
		Change:         change.Round(2),
		PaymentStatus:  PaymentStatusFor(b.PaidAmount, total),
	}

	b.Subtotal = t.Subtotal
	b.Total = t.Total
	b.ChangeAmount = t.Change
	b.PaymentStatus = t.PaymentStatus

	return t
}

func PaymentStatusFor(paid, total decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(total):
		return PaymentStatusPaid
	case paid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusPending
	}
}

func (b Bill) CountPendingItems() int {
	n := 0
	for _, item := range b.Items {
		if item.ItemStatus == ItemStatusPending {
			n++
		}
	}

	return n
}

// LineTotal is the price of quantity units at sellPrice.
func LineTotal(sellPrice decimal.Decimal, quantity int) decimal.Decimal {
	return sellPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

type BillLine struct {
	ProductID uint
	Quantity  int
}

type NewBill struct {
	Customer      Customer
	Lines         []BillLine
	Discount      decimal.Decimal
	DiscountType  string
	Tax           decimal.Decimal
	TaxType       string
	PaidAmount    decimal.Decimal
	PaymentMethod string
	CreatedBy     *uint
}

type PaymentUpdate struct {
	PaidAmount       *decimal.Decimal
	AdditionalAmount *decimal.Decimal
	PaymentMethod    string
	Reference        string
	Notes            string
}

type BillFilter struct {
	StartDate     *time.Time
	EndDate       *time.Time
	Customer      string
	PaymentMethod string
	PaymentStatus string
}

type PeriodStatistics struct {
	Count   int64           `json:"count"`
	Sales   decimal.Decimal `json:"sales"`
	Average decimal.Decimal `json:"average"`
}

type BillStatistics struct {
	Today          PeriodStatistics          `json:"today"`
	ThisWeek       PeriodStatistics          `json:"this_week"`
	ThisMonth      PeriodStatistics          `json:"this_month"`
	PendingItems   int64                     `json:"pending_items"`
	PaymentMethods []PaymentMethodStatistics `json:"payment_methods"`
	RecentBills    []Bill                    `json:"recent_bills"`
}

type PaymentMethodStatistics struct {
	Method string          `json:"method"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}
