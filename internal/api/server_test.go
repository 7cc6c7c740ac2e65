package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stockbook/inventory-api/internal/api/handler/v1/response"
	"github.com/stockbook/inventory-api/internal/config"
	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/pkg/storage"
	"github.com/stockbook/inventory-api/internal/repository/dao"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, dao.InitTables(context.Background(), db))

	disk, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	conf := &config.AppConfig{
		API: &config.APIConfig{
			Environment:        "test",
			Port:               "0",
			BaseURL:            "localhost",
			AllowedCORSDomains: []string{"http://localhost:3000"},
			JWTSigningKey:      "test-signing-key",
			JWTTTL:             time.Hour,
			RateLimitPerMinute: 100,
		},
		Gin:       &config.GinConfig{Mode: "test"},
		Storage:   &config.StorageConfig{BaseURL: "/uploads", MaxUploadSize: 1 << 20, AllowedExtensions: []string{"pdf", "png"}},
		Billing:   &config.BillingConfig{NumberPrefix: "BT"},
		Inventory: &config.InventoryConfig{LowStockThreshold: 5},
	}

	return NewServer(conf, Deps{DB: db, Disk: disk})
}

func call(s *Server, method, target, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	return w
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t)

	w := call(s, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	w = call(s, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(s, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(s, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_SaleFlow(t *testing.T) {
	s := newTestServer(t)

	w := call(s, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Ann", "email": "ann@example.com", "password": "secret123", "confirm_password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(s, http.MethodPost, "/api/login", "", map[string]string{"email": "ann@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login response.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, domain.RoleAdmin, login.User.Role)
	token := login.Token

	w = call(s, http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(s, http.MethodPost, "/api/products", token, map[string]any{
		"name": "LED Panel", "barcode": "8901", "buy_price": "400", "sell_price": "500", "quantity": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product domain.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	assert.Equal(t, 3, product.Quantity)

	w = call(s, http.MethodPost, "/api/bills", token, map[string]any{
		"items":          []map[string]any{{"product_id": product.ID, "quantity": 5}},
		"payment_method": "cash",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = call(s, http.MethodPost, "/api/bills", token, map[string]any{
		"items":          []map[string]any{{"product_id": product.ID, "quantity": 2}},
		"paid_amount":    "1000",
		"payment_method": "cash",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var bill domain.Bill
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bill))
	assert.Equal(t, domain.PaymentStatusPaid, bill.PaymentStatus)

	w = call(s, http.MethodGet, "/api/bills/number/"+bill.BillNumber, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(s, http.MethodGet, fmt.Sprintf("/api/products/%d", product.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))
	assert.Equal(t, 1, product.Quantity)

	w = call(s, http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
