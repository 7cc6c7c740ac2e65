package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stockbook/inventory-api/internal/repository/dao"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:seed_test?mode=memory&cache=shared&_foreign_keys=1"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, dao.InitTables(context.Background(), db))

	return db
}

func TestRunAll(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	admin := Admin{Name: "Admin", Email: "Admin@Example.com", Password: "admin12345"}

	seeded := map[string]bool{}
	report := func(name string, ok bool) { seeded[name] = ok }

	require.NoError(t, RunAll(ctx, Seeders(db, admin), report))
	assert.Equal(t, map[string]bool{"users": true, "suppliers": true, "products": true}, seeded)

	var users []dao.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin@example.com", users[0].Email)
	assert.Equal(t, "admin", users[0].Role)
	assert.NotEqual(t, admin.Password, users[0].Password)

	var products []dao.Product
	require.NoError(t, db.Order("id").Find(&products).Error)
	require.Len(t, products, 4)
	assert.Equal(t, 25, products[0].Quantity)

	var records int64
	require.NoError(t, db.Model(&dao.InventoryRecord{}).Count(&records).Error)
	assert.EqualValues(t, 4, records)

	var items int64
	require.NoError(t, db.Model(&dao.SupplierItem{}).Count(&items).Error)
	assert.EqualValues(t, 2, items)

	// A second run leaves the data alone.
	require.NoError(t, RunAll(ctx, Seeders(db, admin), report))
	assert.Equal(t, map[string]bool{"users": false, "suppliers": false, "products": false}, seeded)

	require.NoError(t, db.Model(&dao.InventoryRecord{}).Count(&records).Error)
	assert.EqualValues(t, 4, records)
}
