package request

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRegisterRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr error
		invalid bool
	}{
		{
			name: "valid",
			req:  RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "secret123", ConfirmPassword: "secret123"},
		},
		{
			name:    "missing email",
			req:     RegisterRequest{Name: "Asha", Password: "secret123", ConfirmPassword: "secret123"},
			invalid: true,
		},
		{
			name:    "password without digit",
			req:     RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "secretsecret", ConfirmPassword: "secretsecret"},
			wantErr: errInvalidPassword,
		},
		{
			name:    "password too short",
			req:     RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "abc12", ConfirmPassword: "abc12"},
			wantErr: errInvalidPassword,
		},
		{
			name:    "confirm mismatch",
			req:     RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "secret123", ConfirmPassword: "secret124"},
			wantErr: errConfirmPasswordMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.invalid:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserUpdate_Validate(t *testing.T) {
	weak := "short"
	role := "owner"
	empty := ""

	assert.NoError(t, (&UserUpdate{}).Validate())
	assert.Error(t, (&UserUpdate{Password: &weak}).Validate())
	assert.Error(t, (&UserUpdate{Role: &role}).Validate())
	assert.Error(t, (&UserUpdate{Name: &empty}).Validate())
}

func TestBillCreate_Validate(t *testing.T) {
	negative := decimal.NewFromInt(-1)

	valid := BillCreate{Items: []BillLine{{ProductID: 1, Quantity: 2}}, PaymentMethod: "card"}
	assert.NoError(t, valid.Validate())

	empty := BillCreate{}
	assert.Error(t, empty.Validate())

	zeroQty := BillCreate{Items: []BillLine{{ProductID: 1, Quantity: 0}}}
	assert.Error(t, zeroQty.Validate())

	badMethod := BillCreate{Items: []BillLine{{ProductID: 1, Quantity: 1}}, PaymentMethod: "cheque"}
	assert.Error(t, badMethod.Validate())

	negDiscount := BillCreate{Items: []BillLine{{ProductID: 1, Quantity: 1}}, Discount: &negative}
	assert.Error(t, negDiscount.Validate())
}

func TestBillCreate_ToNewBill(t *testing.T) {
	paid := decimal.NewFromInt(50)
	by := uint(3)
	req := BillCreate{
		Items:        []BillLine{{ProductID: 4, Quantity: 2}},
		CustomerName: "Ravi",
		PaidAmount:   &paid,
	}

	nb := req.ToNewBill(&by)

	assert.Equal(t, "Ravi", nb.Customer.Name)
	assert.Equal(t, uint(4), nb.Lines[0].ProductID)
	assert.True(t, nb.PaidAmount.Equal(paid))
	assert.True(t, nb.Discount.IsZero())
	assert.Equal(t, &by, nb.CreatedBy)
}

func TestPaymentUpdate_Validate(t *testing.T) {
	amount := decimal.NewFromInt(10)

	assert.ErrorIs(t, (&PaymentUpdate{}).Validate(), errNoPaymentAmount)
	assert.NoError(t, (&PaymentUpdate{AdditionalAmount: &amount}).Validate())
}

func TestSupplierItemCreate_Validate(t *testing.T) {
	price := decimal.NewFromInt(12)

	assert.NoError(t, (&SupplierItemCreate{Name: "Panel", Model: "P-100", BuyPrice: &price}).Validate())
	assert.Error(t, (&SupplierItemCreate{Name: "Panel", Model: "P-100"}).Validate())
	assert.Error(t, (&SupplierItemCreate{Name: "Panel", Model: "P-100", BuyPrice: &price, Status: "Retired"}).Validate())
}

func TestInventoryCreate_Validate(t *testing.T) {
	assert.NoError(t, (&InventoryCreate{ProductID: 1, Type: "ADJUST", Quantity: -3}).Validate())
	assert.Error(t, (&InventoryCreate{ProductID: 1, Type: "MOVE", Quantity: 1}).Validate())
	assert.Error(t, (&InventoryCreate{ProductID: 1, Type: "IN"}).Validate())
}
