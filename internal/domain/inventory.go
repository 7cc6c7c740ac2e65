package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MovementIn     = "IN"
	MovementOut    = "OUT"
	MovementAdjust = "ADJUST"
)

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidMovement = errors.New("invalid movement type")
	ErrNegativeStock   = errors.New("insufficient stock")
)

// InventoryRecord is one line of a product's stock card. Quantity is the
// signed change and BalanceAfter the on-hand quantity once it was applied.
type InventoryRecord struct {
	ID           uint            `json:"id"`
	ProductID    uint            `json:"product_id"`
	SupplierID   *uint           `json:"supplier_id"`
	Type         string          `json:"type"`
	Quantity     int             `json:"quantity"`
	BalanceAfter int             `json:"balance_after"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Reference    string          `json:"reference"`
	Note         string          `json:"note"`
	CreatedBy    *uint           `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Movement is a requested stock change before it is applied to a product.
type Movement struct {
	ProductID  uint
	SupplierID *uint
	Type       string
	Quantity   int
	UnitCost   decimal.Decimal
	Reference  string
	Note       string
	CreatedBy  *uint
}

// Delta returns the signed change a movement applies to on-hand stock.
func (m Movement) Delta() (int, error) {
	switch m.Type {
	case MovementIn:
		if m.Quantity <= 0 {
			return 0, ErrInvalidQuantity
		}
		return m.Quantity, nil
	case MovementOut:
		if m.Quantity <= 0 {
			return 0, ErrInvalidQuantity
		}
		return -m.Quantity, nil
	case MovementAdjust:
		if m.Quantity == 0 {
			return 0, ErrInvalidQuantity
		}
		return m.Quantity, nil
	default:
		return 0, ErrInvalidMovement
	}
}

// Apply validates the movement against the current balance and returns the
// record to persist.
func (m Movement) Apply(balance int) (InventoryRecord, error) {
	delta, err := m.Delta()
	if err != nil {
		return InventoryRecord{}, err
	}

	next := balance + delta
	if next < 0 {
		return InventoryRecord{}, ErrNegativeStock
	}

	return InventoryRecord{
		ProductID:    m.ProductID,
		SupplierID:   m.SupplierID,
		Type:         m.Type,
		Quantity:     delta,
		BalanceAfter: next,
		UnitCost:     m.UnitCost,
		Reference:    m.Reference,
		Note:         m.Note,
		CreatedBy:    m.CreatedBy,
	}, nil
}

type InventoryFilter struct {
	ProductID  uint
	SupplierID uint
	Type       string
}
