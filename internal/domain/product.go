package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const UncategorizedType = "Uncategorized"

var hundred = decimal.NewFromInt(100)

type Product struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Model         string          `json:"model"`
	Type          string          `json:"type"`
	Watts         *float64        `json:"watts"`
	Barcode       *string         `json:"barcode"`
	BuyPrice      decimal.Decimal `json:"buy_price"`
	SellPrice     decimal.Decimal `json:"sell_price"`
	Quantity      int             `json:"quantity"`
	ProfitPercent decimal.Decimal `json:"profit_percent"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CalculateValues refreshes the derived profit percentage and stock value.
func (p *Product) CalculateValues() {
	p.ProfitPercent = ProfitPercent(p.BuyPrice, p.SellPrice)
	p.Amount = p.SellPrice.Mul(decimal.NewFromInt(int64(p.Quantity))).Round(2)
}

// ProfitPercent returns the margin over the buy price in percent, or zero
// when the buy price is not positive.
func ProfitPercent(buy, sell decimal.Decimal) decimal.Decimal {
	if !buy.IsPositive() {
		return decimal.Zero
	}

	return sell.Sub(buy).Div(buy).Mul(hundred).Round(2)
}

type ProductUpdate struct {
	Name      *string
	Model     *string
	Type      *string
	Watts     *float64
	Barcode   *string
	BuyPrice  *decimal.Decimal
	SellPrice *decimal.Decimal
	Quantity  *int
}

type ProductFilter struct {
	Type     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

type ProductStatistics struct {
	TotalProducts       int64            `json:"total_products"`
	TotalQuantity       int64            `json:"total_quantity"`
	AverageSellPrice    decimal.Decimal  `json:"average_sell_price"`
	AverageBuyPrice     decimal.Decimal  `json:"average_buy_price"`
	TotalInventoryValue decimal.Decimal  `json:"total_inventory_value"`
	ProductsByType      map[string]int64 `json:"products_by_type"`
}

type BulkError struct {
	Index  int    `json:"index"`
	Errors string `json:"errors"`
}

type BulkResult struct {
	Created      []Product   `json:"created"`
	Errors       []BulkError `json:"errors"`
	TotalCreated int         `json:"total_created"`
	TotalErrors  int         `json:"total_errors"`
}
