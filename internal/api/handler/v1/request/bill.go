package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/shopspring/decimal"

	"github.com/stockbook/inventory-api/internal/domain"
)

var errNoPaymentAmount = errors.New("paid_amount or additional_amount is required")

func paymentMethods() []interface{} {
	methods := make([]interface{}, len(domain.PaymentMethods))
	for i, m := range domain.PaymentMethods {
		methods[i] = m
	}

	return methods
}

type BillLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

func (l BillLine) Validate() error {
	return validation.ValidateStruct(
		&l,
		validation.Field(&l.ProductID, validation.Required),
		validation.Field(&l.Quantity, validation.Required, validation.Min(1)),
	)
}

type BillCreate struct {
	Items           []BillLine       `json:"items"`
	CustomerName    string           `json:"customer_name"`
	CustomerPhone   string           `json:"customer_phone"`
	CustomerEmail   string           `json:"customer_email"`
	CustomerGST     string           `json:"customer_gst"`
	CustomerAddress string           `json:"customer_address"`
	Discount        *decimal.Decimal `json:"discount"`
	DiscountType    string           `json:"discount_type"`
	Tax             *decimal.Decimal `json:"tax"`
	TaxType         string           `json:"tax_type"`
	PaidAmount      *decimal.Decimal `json:"paid_amount"`
	PaymentMethod   string           `json:"payment_method"`
}

func (req *BillCreate) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Items, validation.Required),
		validation.Field(&req.CustomerName, validation.Length(0, 100)),
		validation.Field(&req.CustomerPhone, validation.Length(0, 20)),
		validation.Field(&req.CustomerEmail, is.Email),
		validation.Field(&req.CustomerGST, validation.Length(0, 20)),
		validation.Field(&req.Discount, nonNegative),
		validation.Field(&req.DiscountType, validation.In(domain.AdjustmentAmount, domain.AdjustmentPercentage)),
		validation.Field(&req.Tax, nonNegative),
		validation.Field(&req.TaxType, validation.In(domain.AdjustmentAmount, domain.AdjustmentPercentage)),
		validation.Field(&req.PaidAmount, nonNegative),
		validation.Field(&req.PaymentMethod, validation.In(paymentMethods()...)),
	)
}

func (req *BillCreate) ToNewBill(createdBy *uint) domain.NewBill {
	lines := make([]domain.BillLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = domain.BillLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	return domain.NewBill{
		Customer: domain.Customer{
			Name:    req.CustomerName,
			Phone:   req.CustomerPhone,
			Email:   req.CustomerEmail,
			GST:     req.CustomerGST,
			Address: req.CustomerAddress,
		},
		Lines:         lines,
		Discount:      decimalOrZero(req.Discount),
		DiscountType:  req.DiscountType,
		Tax:           decimalOrZero(req.Tax),
		TaxType:       req.TaxType,
		PaidAmount:    decimalOrZero(req.PaidAmount),
		PaymentMethod: req.PaymentMethod,
		CreatedBy:     createdBy,
	}
}

type PaymentUpdate struct {
	PaidAmount       *decimal.Decimal `json:"paid_amount"`
	AdditionalAmount *decimal.Decimal `json:"additional_amount"`
	PaymentMethod    string           `json:"payment_method"`
	Reference        string           `json:"reference"`
	Notes            string           `json:"notes"`
}

func (req *PaymentUpdate) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.PaidAmount, nonNegative),
		validation.Field(&req.AdditionalAmount, nonNegative),
		validation.Field(&req.PaymentMethod, validation.In(paymentMethods()...)),
		validation.Field(&req.Reference, validation.Length(0, 100)),
	)
	if err != nil {
		return err
	}

	if req.PaidAmount == nil && req.AdditionalAmount == nil {
		return errNoPaymentAmount
	}

	return nil
}

func (req *PaymentUpdate) ToUpdate() domain.PaymentUpdate {
	return domain.PaymentUpdate{
		PaidAmount:       req.PaidAmount,
		AdditionalAmount: req.AdditionalAmount,
		PaymentMethod:    req.PaymentMethod,
		Reference:        req.Reference,
		Notes:            req.Notes,
	}
}
