package v1

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/inventory-api/internal/api/handler/v1/response"
	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/service"
)

func newSupplierRouter(svc *supplierServiceMock) *gin.Engine {
	h := NewSupplierHandler(svc)

	r := gin.New()
	r.Use(asUser(6))
	r.GET("/suppliers", h.HandleListSuppliers)
	r.POST("/suppliers", h.HandleCreateSupplier)
	r.GET("/suppliers-with-items", h.HandleListSuppliersWithItems)
	r.POST("/suppliers/bulk-delete", h.HandleBulkDeleteSuppliers)
	r.GET("/suppliers/:supplierID", h.HandleGetSupplier)
	r.POST("/suppliers/:supplierID/items", h.HandleCreateItem)
	r.DELETE("/items/:itemID", h.HandleDeleteItem)

	return r
}

func TestSupplierHandler_HandleCreateSupplier(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &supplierServiceMock{}
		svc.On("CreateSupplier", mock.Anything, mock.MatchedBy(func(s domain.Supplier) bool {
			return s.Company == "Sunrise" && s.CreatedBy != nil && *s.CreatedBy == 6
		})).Return(domain.Supplier{ID: 1, Name: "Ravi", Company: "Sunrise"}, nil)

		w := serve(newSupplierRouter(svc), http.MethodPost, "/suppliers",
			map[string]string{"name": "Ravi", "company": "Sunrise", "email": "ravi@sunrise.example"})

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("company required", func(t *testing.T) {
		w := serve(newSupplierRouter(&supplierServiceMock{}), http.MethodPost, "/suppliers",
			map[string]string{"name": "Ravi"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad email", func(t *testing.T) {
		w := serve(newSupplierRouter(&supplierServiceMock{}), http.MethodPost, "/suppliers",
			map[string]string{"name": "Ravi", "company": "Sunrise", "email": "nope"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSupplierHandler_Listing(t *testing.T) {
	svc := &supplierServiceMock{}
	svc.On("ListSuppliers", mock.Anything, false).Return([]domain.Supplier{{ID: 1}}, nil)
	svc.On("ListSuppliers", mock.Anything, true).Return([]domain.Supplier{{ID: 1, Items: []domain.SupplierItem{{ID: 2}}}}, nil)
	svc.On("GetSupplier", mock.Anything, uint(8)).Return(domain.Supplier{}, errWrap("s.repo.FindByID", service.ErrSupplierNotFound))
	r := newSupplierRouter(svc)

	w := serve(r, http.MethodGet, "/suppliers", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/suppliers-with-items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var suppliers []domain.Supplier
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &suppliers))
	require.Len(t, suppliers, 1)
	assert.Len(t, suppliers[0].Items, 1)

	w = serve(r, http.MethodGet, "/suppliers/8", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "supplier with ID 8 not found", decodeErr(t, w).ErrorText)

	svc.AssertExpectations(t)
}

func TestSupplierHandler_HandleBulkDeleteSuppliers(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc := &supplierServiceMock{}
		svc.On("BulkDeleteSuppliers", mock.Anything, []uint{1, 2, 3}).Return(int64(2), nil)

		w := serve(newSupplierRouter(svc), http.MethodPost, "/suppliers/bulk-delete", `{"supplier_ids":[1,2,3]}`)

		require.Equal(t, http.StatusOK, w.Code)
		var got response.BulkDeleteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.EqualValues(t, 2, got.DeletedCount)
	})

	t.Run("no ids", func(t *testing.T) {
		svc := &supplierServiceMock{}

		w := serve(newSupplierRouter(svc), http.MethodPost, "/suppliers/bulk-delete", `{"supplier_ids":[]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "BulkDeleteSuppliers")
	})
}

func TestSupplierHandler_Items(t *testing.T) {
	svc := &supplierServiceMock{}
	svc.On("CreateItem", mock.Anything, mock.MatchedBy(func(it domain.SupplierItem) bool {
		return it.SupplierID == 4 && it.BuyPrice.Equal(decimal.NewFromInt(180))
	})).Return(domain.SupplierItem{}, errWrap("s.repo.FindByID", service.ErrSupplierNotFound))
	svc.On("DeleteItem", mock.Anything, uint(9)).Return(errWrap("s.repo.FindItemByID", service.ErrSupplierItemNotFound))
	r := newSupplierRouter(svc)

	w := serve(r, http.MethodPost, "/suppliers/4/items", `{"name":"Tube","model":"ST-20","buy_price":"180"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "supplier with ID 4 not found", decodeErr(t, w).ErrorText)

	w = serve(r, http.MethodPost, "/suppliers/4/items", `{"name":"Tube","model":"ST-20"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodDelete, "/items/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.AssertExpectations(t)
}
