package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/stockbook/inventory-api/internal/domain"
)

var errNoProducts = errors.New("no products provided")

type ProductCreate struct {
	Name      string           `json:"name"`
	Model     string           `json:"model"`
	Type      string           `json:"type"`
	Watts     *float64         `json:"watts"`
	Barcode   *string          `json:"barcode"`
	BuyPrice  *decimal.Decimal `json:"buy_price"`
	SellPrice *decimal.Decimal `json:"sell_price"`
	Quantity  int              `json:"quantity"`
}

func (req *ProductCreate) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Model, validation.Length(0, 100)),
		validation.Field(&req.Type, validation.Length(0, 50)),
		validation.Field(&req.Barcode, validation.Length(0, 64)),
		validation.Field(&req.BuyPrice, nonNegative),
		validation.Field(&req.SellPrice, nonNegative),
		validation.Field(&req.Quantity, validation.Min(0)),
	)
}

func (req *ProductCreate) ToProduct() domain.Product {
	return domain.Product{
		Name:      req.Name,
		Model:     req.Model,
		Type:      req.Type,
		Watts:     req.Watts,
		Barcode:   req.Barcode,
		BuyPrice:  decimalOrZero(req.BuyPrice),
		SellPrice: decimalOrZero(req.SellPrice),
		Quantity:  req.Quantity,
	}
}

type ProductUpdate struct {
	Name      *string          `json:"name"`
	Model     *string          `json:"model"`
	Type      *string          `json:"type"`
	Watts     *float64         `json:"watts"`
	Barcode   *string          `json:"barcode"`
	BuyPrice  *decimal.Decimal `json:"buy_price"`
	SellPrice *decimal.Decimal `json:"sell_price"`
	Quantity  *int             `json:"quantity"`
}

func (req *ProductUpdate) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&req.Model, validation.Length(0, 100)),
		validation.Field(&req.Type, validation.Length(0, 50)),
		validation.Field(&req.Barcode, validation.Length(0, 64)),
		validation.Field(&req.BuyPrice, nonNegative),
		validation.Field(&req.SellPrice, nonNegative),
		validation.Field(&req.Quantity, validation.Min(0)),
	)
}

func (req *ProductUpdate) ToUpdate() domain.ProductUpdate {
	return domain.ProductUpdate{
		Name:      req.Name,
		Model:     req.Model,
		Type:      req.Type,
		Watts:     req.Watts,
		Barcode:   req.Barcode,
		BuyPrice:  req.BuyPrice,
		SellPrice: req.SellPrice,
		Quantity:  req.Quantity,
	}
}

type ProductBulkCreate struct {
	Products []ProductCreate `json:"products"`
}

func (req *ProductBulkCreate) Validate() error {
	if len(req.Products) == 0 {
		return errNoProducts
	}

	return nil
}
