package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/stockbook/inventory-api/internal/domain"
)

type InventoryCreate struct {
	ProductID  uint             `json:"product_id"`
	SupplierID *uint            `json:"supplier_id"`
	Type       string           `json:"type"`
	Quantity   int              `json:"quantity"`
	UnitCost   *decimal.Decimal `json:"unit_cost"`
	Reference  string           `json:"reference"`
	Note       string           `json:"note"`
}

func (req *InventoryCreate) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ProductID, validation.Required),
		validation.Field(&req.Type, validation.Required, validation.In(domain.MovementIn, domain.MovementOut, domain.MovementAdjust)),
		validation.Field(&req.Quantity, validation.Required),
		validation.Field(&req.UnitCost, nonNegative),
		validation.Field(&req.Reference, validation.Length(0, 100)),
		validation.Field(&req.Note, validation.Length(0, 255)),
	)
}

func (req *InventoryCreate) ToMovement(createdBy *uint) domain.Movement {
	return domain.Movement{
		ProductID:  req.ProductID,
		SupplierID: req.SupplierID,
		Type:       req.Type,
		Quantity:   req.Quantity,
		UnitCost:   decimalOrZero(req.UnitCost),
		Reference:  req.Reference,
		Note:       req.Note,
		CreatedBy:  createdBy,
	}
}
