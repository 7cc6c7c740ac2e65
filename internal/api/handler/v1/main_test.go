package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/inventory-api/internal/api/handler/v1/response"
	"github.com/stockbook/inventory-api/internal/api/middleware"
	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/pkg/jwthelper"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser fakes the authentication middleware.
func asUser(id uint) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(middleware.ContextKeyUserID, id)
		ctx.Set(middleware.ContextKeyClaims, &jwthelper.UserClaims{UserID: id})
		ctx.Next()
	}
}

func serve(r *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) response.Err {
	t.Helper()

	var e response.Err
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))

	return e
}

type authServiceMock struct{ mock.Mock }

func (m *authServiceMock) Register(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *authServiceMock) Login(ctx context.Context, email, password, userAgent string) (string, domain.User, error) {
	args := m.Called(ctx, email, password, userAgent)
	return args.String(0), args.Get(1).(domain.User), args.Error(2)
}

func (m *authServiceMock) Logout(ctx context.Context, claims *jwthelper.UserClaims) error {
	return m.Called(ctx, claims).Error(0)
}

type userServiceMock struct{ mock.Mock }

func (m *userServiceMock) GetUser(ctx context.Context, id uint) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *userServiceMock) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *userServiceMock) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *userServiceMock) UpdateUser(ctx context.Context, id uint, update domain.UserUpdate) (domain.User, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *userServiceMock) DeleteUser(ctx context.Context, actorID, id uint) error {
	return m.Called(ctx, actorID, id).Error(0)
}

type productServiceMock struct{ mock.Mock }

func (m *productServiceMock) ListProducts(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(domain.Page[domain.Product]), args.Error(1)
}

func (m *productServiceMock) GetProduct(ctx context.Context, id uint) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *productServiceMock) CreateProduct(ctx context.Context, product domain.Product, createdBy *uint) (domain.Product, error) {
	args := m.Called(ctx, product, createdBy)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *productServiceMock) UpdateProduct(ctx context.Context, id uint, update domain.ProductUpdate, updatedBy *uint) (domain.Product, error) {
	args := m.Called(ctx, id, update, updatedBy)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *productServiceMock) DeleteProduct(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *productServiceMock) BulkCreateProducts(ctx context.Context, products []domain.Product, createdBy *uint) domain.BulkResult {
	return m.Called(ctx, products, createdBy).Get(0).(domain.BulkResult)
}

func (m *productServiceMock) Statistics(ctx context.Context) (domain.ProductStatistics, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.ProductStatistics), args.Error(1)
}

func (m *productServiceMock) SearchInStock(ctx context.Context, term string) ([]domain.Product, error) {
	args := m.Called(ctx, term)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *productServiceMock) FindForSale(ctx context.Context, barcode string) (domain.Product, error) {
	args := m.Called(ctx, barcode)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *productServiceMock) StockCard(ctx context.Context, id uint) ([]domain.InventoryRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]domain.InventoryRecord), args.Error(1)
}

type billingServiceMock struct{ mock.Mock }

func (m *billingServiceMock) CreateBill(ctx context.Context, req domain.NewBill) (domain.Bill, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Bill), args.Error(1)
}

func (m *billingServiceMock) ListBills(ctx context.Context, filter domain.BillFilter, page domain.PageRequest) (domain.Page[domain.Bill], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(domain.Page[domain.Bill]), args.Error(1)
}

func (m *billingServiceMock) GetBill(ctx context.Context, id uint) (domain.Bill, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Bill), args.Error(1)
}

func (m *billingServiceMock) GetBillByNumber(ctx context.Context, number string) (domain.Bill, error) {
	args := m.Called(ctx, number)
	return args.Get(0).(domain.Bill), args.Error(1)
}

func (m *billingServiceMock) UpdatePayment(ctx context.Context, id uint, update domain.PaymentUpdate) (domain.Bill, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(domain.Bill), args.Error(1)
}

func (m *billingServiceMock) CancelBill(ctx context.Context, id uint, cancelledBy *uint) (domain.Bill, error) {
	args := m.Called(ctx, id, cancelledBy)
	return args.Get(0).(domain.Bill), args.Error(1)
}

func (m *billingServiceMock) BillsWithPendingItems(ctx context.Context) ([]domain.Bill, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Bill), args.Error(1)
}

func (m *billingServiceMock) PendingItems(ctx context.Context, billID uint) (domain.Bill, []domain.BillItem, error) {
	args := m.Called(ctx, billID)
	return args.Get(0).(domain.Bill), args.Get(1).([]domain.BillItem), args.Error(2)
}

func (m *billingServiceMock) CompleteItem(ctx context.Context, billID, itemID uint) (domain.BillItem, error) {
	args := m.Called(ctx, billID, itemID)
	return args.Get(0).(domain.BillItem), args.Error(1)
}

func (m *billingServiceMock) CompleteAll(ctx context.Context, billID uint) (int, error) {
	args := m.Called(ctx, billID)
	return args.Int(0), args.Error(1)
}

func (m *billingServiceMock) VoidItem(ctx context.Context, billID, itemID uint, voidedBy *uint) (domain.Bill, error) {
	args := m.Called(ctx, billID, itemID, voidedBy)
	return args.Get(0).(domain.Bill), args.Error(1)
}

func (m *billingServiceMock) Statistics(ctx context.Context) (domain.BillStatistics, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.BillStatistics), args.Error(1)
}

type inventoryServiceMock struct{ mock.Mock }

func (m *inventoryServiceMock) RecordMovement(ctx context.Context, mv domain.Movement) (domain.InventoryRecord, error) {
	args := m.Called(ctx, mv)
	return args.Get(0).(domain.InventoryRecord), args.Error(1)
}

func (m *inventoryServiceMock) ListRecords(ctx context.Context, filter domain.InventoryFilter, page domain.PageRequest) (domain.Page[domain.InventoryRecord], error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).(domain.Page[domain.InventoryRecord]), args.Error(1)
}

func (m *inventoryServiceMock) GetRecord(ctx context.Context, id uint) (domain.InventoryRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.InventoryRecord), args.Error(1)
}

// errWrap mimics the wrapping done by the service layer.
func errWrap(op string, err error) error {
	return fmt.Errorf("%s -> %w", op, err)
}

type supplierServiceMock struct{ mock.Mock }

func (m *supplierServiceMock) ListSuppliers(ctx context.Context, withItems bool) ([]domain.Supplier, error) {
	args := m.Called(ctx, withItems)
	return args.Get(0).([]domain.Supplier), args.Error(1)
}

func (m *supplierServiceMock) GetSupplier(ctx context.Context, id uint) (domain.Supplier, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Supplier), args.Error(1)
}

func (m *supplierServiceMock) CreateSupplier(ctx context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	args := m.Called(ctx, supplier)
	return args.Get(0).(domain.Supplier), args.Error(1)
}

func (m *supplierServiceMock) UpdateSupplier(ctx context.Context, id uint, update domain.SupplierUpdate) (domain.Supplier, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(domain.Supplier), args.Error(1)
}

func (m *supplierServiceMock) DeleteSupplier(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *supplierServiceMock) BulkDeleteSuppliers(ctx context.Context, ids []uint) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *supplierServiceMock) ListItems(ctx context.Context, supplierID uint) ([]domain.SupplierItem, error) {
	args := m.Called(ctx, supplierID)
	return args.Get(0).([]domain.SupplierItem), args.Error(1)
}

func (m *supplierServiceMock) GetItem(ctx context.Context, id uint) (domain.SupplierItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.SupplierItem), args.Error(1)
}

func (m *supplierServiceMock) CreateItem(ctx context.Context, item domain.SupplierItem) (domain.SupplierItem, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(domain.SupplierItem), args.Error(1)
}

func (m *supplierServiceMock) UpdateItem(ctx context.Context, id uint, update domain.SupplierItemUpdate) (domain.SupplierItem, error) {
	args := m.Called(ctx, id, update)
	return args.Get(0).(domain.SupplierItem), args.Error(1)
}

func (m *supplierServiceMock) DeleteItem(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type attachmentServiceMock struct{ mock.Mock }

func (m *attachmentServiceMock) Upload(ctx context.Context, filename string, size int64, r io.Reader) (domain.Attachment, error) {
	args := m.Called(ctx, filename, size, r)
	return args.Get(0).(domain.Attachment), args.Error(1)
}

func (m *attachmentServiceMock) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, name)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.String(1), args.Error(2)
}

func (m *attachmentServiceMock) Delete(ctx context.Context, filePath string) error {
	return m.Called(ctx, filePath).Error(0)
}
