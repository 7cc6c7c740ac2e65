package v1

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/service"
)

func newBillRouter(svc *billingServiceMock) *gin.Engine {
	h := NewBillHandler(svc)

	r := gin.New()
	r.Use(asUser(3))
	r.GET("/bills", h.HandleListBills)
	r.POST("/bills", h.HandleCreateBill)
	r.GET("/bills/:billID", h.HandleGetBill)
	r.PUT("/bills/:billID/payment", h.HandleUpdatePayment)
	r.POST("/bills/:billID/cancel", h.HandleCancelBill)
	r.POST("/bills/:billID/items/:itemID/complete", h.HandleCompleteItem)

	return r
}

func TestBillHandler_HandleCreateBill(t *testing.T) {
	body := `{"items":[{"product_id":3,"quantity":2}],"customer_name":"Dana","discount":"10","discount_type":"percentage","paid_amount":"100","payment_method":"cash"}`

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantErr    string
	}{
		{
			name:       "created",
			body:       body,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "no items",
			body:       `{"items":[],"payment_method":"cash"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero quantity",
			body:       `{"items":[{"product_id":3,"quantity":0}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown payment method",
			body:       `{"items":[{"product_id":3,"quantity":1}],"payment_method":"cheque"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "insufficient stock",
			body:       body,
			err:        &service.StockError{ProductID: 3, Err: service.ErrInsufficientStock},
			wantStatus: http.StatusBadRequest,
			wantErr:    "product 3: insufficient stock",
		},
		{
			name:       "unknown product",
			body:       body,
			err:        &service.StockError{ProductID: 3, Err: errWrap("l.products.FindByIDForUpdate", service.ErrProductNotFound)},
			wantStatus: http.StatusNotFound,
			wantErr:    "product with ID 3 not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &billingServiceMock{}
			svc.On("CreateBill", mock.Anything, mock.MatchedBy(func(nb domain.NewBill) bool {
				return len(nb.Lines) == 1 && nb.Lines[0].ProductID == 3 &&
					nb.Discount.Equal(decimal.NewFromInt(10)) &&
					nb.CreatedBy != nil && *nb.CreatedBy == 3
			})).Return(domain.Bill{ID: 1, BillNumber: "BT-240601-0000AAAA"}, tt.err).Maybe()

			w := serve(newBillRouter(svc), http.MethodPost, "/bills", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, decodeErr(t, w).ErrorText)
			}
		})
	}
}

func TestBillHandler_HandleListBills(t *testing.T) {
	t.Run("date only end covers the day", func(t *testing.T) {
		svc := &billingServiceMock{}
		var got domain.BillFilter
		svc.On("ListBills", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { got = args.Get(1).(domain.BillFilter) }).
			Return(domain.Page[domain.Bill]{}, nil)

		w := serve(newBillRouter(svc), http.MethodGet, "/bills?start_date=2024-06-01&end_date=2024-06-01&payment_status=paid", nil)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got.StartDate)
		require.NotNil(t, got.EndDate)
		assert.True(t, got.StartDate.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)))
		assert.True(t, got.EndDate.Equal(time.Date(2024, 6, 1, 23, 59, 59, 999999999, time.Local)))
		assert.Equal(t, "paid", got.PaymentStatus)
	})

	t.Run("rfc3339 is taken as is", func(t *testing.T) {
		svc := &billingServiceMock{}
		var got domain.BillFilter
		svc.On("ListBills", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { got = args.Get(1).(domain.BillFilter) }).
			Return(domain.Page[domain.Bill]{}, nil)

		w := serve(newBillRouter(svc), http.MethodGet, "/bills?end_date=2024-06-01T10:00:00Z", nil)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got.EndDate)
		assert.True(t, got.EndDate.Equal(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)))
		assert.Nil(t, got.StartDate)
	})

	t.Run("invalid date", func(t *testing.T) {
		svc := &billingServiceMock{}

		w := serve(newBillRouter(svc), http.MethodGet, "/bills?start_date=yesterday", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "ListBills")
	})
}

func TestBillHandler_Lifecycle(t *testing.T) {
	svc := &billingServiceMock{}
	svc.On("GetBill", mock.Anything, uint(99)).Return(domain.Bill{}, errWrap("s.bills.FindByID", service.ErrBillNotFound))
	svc.On("UpdatePayment", mock.Anything, uint(1), mock.Anything).Return(domain.Bill{ID: 1}, nil)
	svc.On("CancelBill", mock.Anything, uint(2), mock.Anything).Return(domain.Bill{}, errWrap("s.cancel", service.ErrBillAlreadyCancelled))
	svc.On("CompleteItem", mock.Anything, uint(1), uint(8)).Return(domain.BillItem{}, errWrap("s.complete", service.ErrItemNotPending))
	r := newBillRouter(svc)

	w := serve(r, http.MethodGet, "/bills/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "bill with ID 99 not found", decodeErr(t, w).ErrorText)

	w = serve(r, http.MethodPut, "/bills/1/payment", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPut, "/bills/1/payment", `{"additional_amount":"50","payment_method":"upi"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPost, "/bills/2/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrBillAlreadyCancelled.Error(), decodeErr(t, w).ErrorText)

	w = serve(r, http.MethodPost, "/bills/1/items/8/complete", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrItemNotPending.Error(), decodeErr(t, w).ErrorText)

	svc.AssertExpectations(t)
}
