package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/shopspring/decimal"

	"github.com/stockbook/inventory-api/internal/domain"
)

var errNoSupplierIDs = errors.New("no supplier ids provided")

type SupplierCreate struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (req *SupplierCreate) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Company, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Email, is.Email),
		validation.Field(&req.Phone, validation.Length(0, 20)),
	)
}

func (req *SupplierCreate) ToSupplier(createdBy *uint) domain.Supplier {
	return domain.Supplier{
		Name:      req.Name,
		Company:   req.Company,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedBy: createdBy,
	}
}

type SupplierUpdate struct {
	Name    *string `json:"name"`
	Company *string `json:"company"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

func (req *SupplierUpdate) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&req.Company, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&req.Email, is.Email),
		validation.Field(&req.Phone, validation.Length(0, 20)),
	)
}

func (req *SupplierUpdate) ToUpdate() domain.SupplierUpdate {
	return domain.SupplierUpdate{
		Name:    req.Name,
		Company: req.Company,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
}

type SupplierBulkDelete struct {
	SupplierIDs []uint `json:"supplier_ids"`
}

func (req *SupplierBulkDelete) Validate() error {
	if len(req.SupplierIDs) == 0 {
		return errNoSupplierIDs
	}

	return nil
}

type SupplierItemCreate struct {
	Name       string           `json:"name"`
	Model      string           `json:"model"`
	Type       string           `json:"type"`
	Watts      *float64         `json:"watts"`
	BuyPrice   *decimal.Decimal `json:"buy_price"`
	Status     string           `json:"status"`
	Attachment string           `json:"attachment"`
}

func (req *SupplierItemCreate) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Model, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.BuyPrice, validation.NotNil, nonNegative),
		validation.Field(&req.Watts, validation.Min(0.0)),
		validation.Field(&req.Status, validation.In(domain.ItemStatusActive, domain.ItemStatusInactive)),
	)
}

func (req *SupplierItemCreate) ToItem(supplierID uint) domain.SupplierItem {
	return domain.SupplierItem{
		SupplierID: supplierID,
		Name:       req.Name,
		Model:      req.Model,
		Type:       req.Type,
		Watts:      req.Watts,
		BuyPrice:   decimalOrZero(req.BuyPrice),
		Status:     req.Status,
		Attachment: req.Attachment,
	}
}

type SupplierItemUpdate struct {
	Name       *string          `json:"name"`
	Model      *string          `json:"model"`
	Type       *string          `json:"type"`
	Watts      *float64         `json:"watts"`
	BuyPrice   *decimal.Decimal `json:"buy_price"`
	Status     *string          `json:"status"`
	Attachment *string          `json:"attachment"`
}

func (req *SupplierItemUpdate) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&req.Model, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&req.BuyPrice, nonNegative),
		validation.Field(&req.Watts, validation.Min(0.0)),
		validation.Field(&req.Status, validation.In(domain.ItemStatusActive, domain.ItemStatusInactive)),
	)
}

func (req *SupplierItemUpdate) ToUpdate() domain.SupplierItemUpdate {
	return domain.SupplierItemUpdate{
		Name:       req.Name,
		Model:      req.Model,
		Type:       req.Type,
		Watts:      req.Watts,
		BuyPrice:   req.BuyPrice,
		Status:     req.Status,
		Attachment: req.Attachment,
	}
}
