package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/pkg/cache"
	"github.com/stockbook/inventory-api/internal/repository"
	"github.com/stockbook/inventory-api/internal/repository/dao"
)

type testEnv struct {
	tx        *dao.Transactor
	users     *repository.UserRepository
	suppliers *repository.SupplierRepository
	products  *repository.ProductRepository
	records   *repository.InventoryRepository
	bills     *repository.BillRepository
	cache     *cache.Redis
	redis     *redis.Client
	ledger    *StockLedger
	published *recordSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_foreign_keys=1", name)
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

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env := &testEnv{
		tx:        dao.NewTransactor(db),
		users:     repository.NewUserRepository(dao.NewUserDAO(db)),
		suppliers: repository.NewSupplierRepository(dao.NewSupplierDAO(db)),
		products:  repository.NewProductRepository(dao.NewProductDAO(db)),
		records:   repository.NewInventoryRepository(dao.NewInventoryDAO(db)),
		bills:     repository.NewBillRepository(dao.NewBillDAO(db)),
		cache:     cache.NewRedis(client, "test:"),
		redis:     client,
		published: &recordSink{},
	}
	env.ledger = NewStockLedger(env.products, env.records, env.cache)
	env.ledger.SetPublisher(env.published)

	return env
}

func (e *testEnv) productService() *ProductService {
	return NewProductService(e.tx, e.products, e.records, e.ledger, e.cache)
}

func (e *testEnv) billingService(enqueuer LowStockEnqueuer) *BillingService {
	return NewBillingService(e.tx, e.bills, e.ledger, enqueuer, BillingConfig{NumberPrefix: "BT", LowStockThreshold: 2})
}

// seedProduct creates a product with its opening stock.
func (e *testEnv) seedProduct(t *testing.T, name, sell string, qty int) domain.Product {
	t.Helper()

	price := decimal.RequireFromString(sell)
	p, err := e.productService().CreateProduct(context.Background(), domain.Product{
		Name:      name,
		Model:     name + "-M",
		Type:      "panel",
		BuyPrice:  price.Div(decimal.NewFromInt(2)),
		SellPrice: price,
		Quantity:  qty,
	}, nil)
	require.NoError(t, err)

	return p
}

func (e *testEnv) quantity(t *testing.T, id uint) int {
	t.Helper()

	p, err := e.products.FindByID(context.Background(), id)
	require.NoError(t, err)

	return p.Quantity
}

type recordSink struct {
	mu      sync.Mutex
	records []domain.InventoryRecord
}

func (s *recordSink) Publish(r domain.InventoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
}

func (s *recordSink) all() []domain.InventoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.InventoryRecord(nil), s.records...)
}

type enqueuerStub struct {
	mu    sync.Mutex
	calls map[string][]uint
}

func (e *enqueuerStub) EnqueueLowStockAlert(_ context.Context, reference string, ids []uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.calls == nil {
		e.calls = map[string][]uint{}
	}
	e.calls[reference] = ids
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}
