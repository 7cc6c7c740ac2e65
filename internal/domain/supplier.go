package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ItemStatusActive   = "Active"
	ItemStatusInactive = "Inactive"
)

type Supplier struct {
	ID        uint           `json:"id"`
	Name      string         `json:"name"`
	Company   string         `json:"company"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Address   string         `json:"address"`
	CreatedBy *uint          `json:"created_by"`
	Items     []SupplierItem `json:"items,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SupplierItem is a catalogue entry a supplier offers, optionally with an
// attached quote or datasheet.
type SupplierItem struct {
	ID         uint            `json:"id"`
	SupplierID uint            `json:"supplier_id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Model      string          `json:"model"`
	Watts      *float64        `json:"watts"`
	BuyPrice   decimal.Decimal `json:"buy_price"`
	Status     string          `json:"status"`
	Attachment string          `json:"attachment"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type SupplierUpdate struct {
	Name    *string
	Company *string
	Email   *string
	Phone   *string
	Address *string
}

type SupplierItemUpdate struct {
	Name       *string
	Type       *string
	Model      *string
	Watts      *float64
	BuyPrice   *decimal.Decimal
	Status     *string
	Attachment *string
}
