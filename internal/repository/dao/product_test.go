package dao

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, d *ProductDAO, name, kind string, sell string, qty int) Product {
	t.Helper()

	price := decimal.RequireFromString(sell)
	p, err := d.Insert(context.Background(), Product{
		Name:      name,
		Model:     name + "-M",
		Type:      kind,
		BuyPrice:  price.Div(decimal.NewFromInt(2)),
		SellPrice: price,
		Quantity:  qty,
		Amount:    price.Mul(decimal.NewFromInt(int64(qty))),
	})
	require.NoError(t, err)

	return p
}

func TestProductDAO_ListAndSearch(t *testing.T) {
	ctx := context.Background()
	d := NewProductDAO(newTestDB(t))

	seedProduct(t, d, "Solar Panel", "panel", "120", 4)
	seedProduct(t, d, "Inverter", "inverter", "300", 0)
	seedProduct(t, d, "Panel Clamp", "panel", "5", 40)

	products, total, err := d.List(ctx, ProductFilter{Type: "panel"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, products, 2)

	minPrice := decimal.NewFromInt(100)
	products, total, err = d.List(ctx, ProductFilter{MinPrice: &minPrice}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, products, 1)

	found, err := d.Search(ctx, "PANEL", 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = d.Search(ctx, "inver", 10)
	require.NoError(t, err)
	assert.Empty(t, found, "out of stock products are not offered")
}

func TestProductDAO_Statistics(t *testing.T) {
	ctx := context.Background()
	d := NewProductDAO(newTestDB(t))

	totals, err := d.Totals(ctx)
	require.NoError(t, err)
	assert.Zero(t, totals.TotalProducts)
	assert.False(t, totals.AvgSellPrice.Valid)

	seedProduct(t, d, "A", "panel", "10", 2)
	seedProduct(t, d, "B", "", "30", 1)

	totals, err = d.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.TotalProducts)
	assert.Equal(t, int64(3), totals.TotalQuantity)
	assert.True(t, decimal.NewFromInt(20).Equal(totals.AvgSellPrice.Decimal))
	assert.True(t, decimal.NewFromInt(50).Equal(totals.TotalValue.Decimal))

	counts, err := d.CountByType(ctx)
	require.NoError(t, err)
	assert.Len(t, counts, 2)
}

func TestProductDAO_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	d := NewProductDAO(db)

	free := seedProduct(t, d, "Free", "x", "1", 1)
	billed := seedProduct(t, d, "Billed", "x", "1", 1)

	_, err := NewBillDAO(db).Insert(ctx, Bill{
		BillNumber:   "BT-1",
		CustomerName: "Walk-in Customer",
		Items: []BillItem{{
			ProductID:   billed.ID,
			ProductName: billed.Name,
			Quantity:    1,
			ItemStatus:  "pending",
		}},
	})
	require.NoError(t, err)

	require.NoError(t, d.Delete(ctx, free.ID))
	assert.ErrorIs(t, d.Delete(ctx, free.ID), ErrProductNotFound)
	assert.ErrorIs(t, d.Delete(ctx, billed.ID), ErrProductInUse)
}

func TestProductDAO_BarcodeUnique(t *testing.T) {
	ctx := context.Background()
	d := NewProductDAO(newTestDB(t))
	code := "8901234567890"

	_, err := d.Insert(ctx, Product{Name: "A", Barcode: &code})
	require.NoError(t, err)

	_, err = d.Insert(ctx, Product{Name: "B", Barcode: &code})
	assert.ErrorIs(t, err, ErrProductBarcodeExists)

	found, err := d.FindByBarcode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, "A", found.Name)
}
