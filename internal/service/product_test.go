package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/inventory-api/internal/domain"
)

func TestProductService_CreateWritesOpeningStock(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.productService()

	p, err := svc.CreateProduct(ctx, domain.Product{
		Name:      "Panel",
		BuyPrice:  dec("80"),
		SellPrice: dec("100"),
		Quantity:  4,
		Barcode:   ptr("  "),
	}, ptr(uint(7)))
	require.NoError(t, err)
	assert.Equal(t, 4, p.Quantity)
	assert.True(t, dec("25").Equal(p.ProfitPercent))
	assert.True(t, dec("400").Equal(p.Amount))
	assert.Nil(t, p.Barcode)

	card, err := svc.StockCard(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, card, 1)
	assert.Equal(t, domain.MovementIn, card[0].Type)
	assert.Equal(t, 4, card[0].BalanceAfter)
	assert.Equal(t, uint(7), *card[0].CreatedBy)

	empty, err := svc.CreateProduct(ctx, domain.Product{Name: "Spare", SellPrice: dec("1")}, nil)
	require.NoError(t, err)
	card, err = svc.StockCard(ctx, empty.ID)
	require.NoError(t, err)
	assert.Empty(t, card)

	assert.Len(t, env.published.all(), 1)
}

func TestProductService_UpdateAdjustsStock(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.productService()
	p := env.seedProduct(t, "Panel", "100", 10)

	updated, err := svc.UpdateProduct(ctx, p.ID, domain.ProductUpdate{
		SellPrice: ptr(dec("120")),
		Quantity:  ptr(6),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Quantity)
	assert.True(t, dec("720").Equal(updated.Amount))
	assert.Equal(t, "Panel", updated.Name)

	card, err := svc.StockCard(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, card, 2)
	assert.Equal(t, domain.MovementAdjust, card[1].Type)
	assert.Equal(t, -4, card[1].Quantity)

	_, err = svc.UpdateProduct(ctx, p.ID, domain.ProductUpdate{Quantity: ptr(-1)}, nil)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.UpdateProduct(ctx, 999, domain.ProductUpdate{Name: ptr("x")}, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_DeleteInUse(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.productService()
	sold := env.seedProduct(t, "Panel", "100", 10)
	unsold := env.seedProduct(t, "Clamp", "2", 10)

	_, err := env.billingService(nil).CreateBill(ctx, domain.NewBill{
		Lines: []domain.BillLine{{ProductID: sold.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, sold.ID), ErrProductInUse)
	require.NoError(t, svc.DeleteProduct(ctx, unsold.ID))

	_, err = svc.GetProduct(ctx, unsold.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_BulkCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.productService()

	result := svc.BulkCreateProducts(ctx, []domain.Product{
		{Name: "A", SellPrice: dec("1"), Barcode: ptr("111")},
		{Name: "B", SellPrice: dec("1"), Barcode: ptr("111")},
		{Name: "C", SellPrice: dec("1"), Quantity: 2},
	}, nil)

	assert.Equal(t, 2, result.TotalCreated)
	assert.Equal(t, 1, result.TotalErrors)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Equal(t, ErrProductBarcodeExists.Error(), result.Errors[0].Errors)
}

func TestProductService_StatisticsCache(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.productService()
	env.seedProduct(t, "Panel", "100", 2)

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalProducts)

	var cached domain.ProductStatistics
	hit, err := env.cache.Get(ctx, productStatisticsKey, &cached)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.True(t, dec("200").Equal(cached.TotalInventoryValue))

	env.seedProduct(t, "Clamp", "2", 1)
	hit, err = env.cache.Get(ctx, productStatisticsKey, &cached)
	require.NoError(t, err)
	assert.False(t, hit, "writes drop the cached statistics")

	stats, err = svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(3), stats.TotalQuantity)
}

func TestProductService_SearchAndBarcode(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.productService()

	_, err := svc.CreateProduct(ctx, domain.Product{Name: "Solar Panel", SellPrice: dec("1"), Quantity: 1, Barcode: ptr("890")}, nil)
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, domain.Product{Name: "Solar Lamp", SellPrice: dec("1"), Barcode: ptr("891")}, nil)
	require.NoError(t, err)

	found, err := svc.SearchInStock(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = svc.SearchInStock(ctx, "solar")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Solar Panel", found[0].Name)

	p, err := svc.FindForSale(ctx, "890")
	require.NoError(t, err)
	assert.Equal(t, "Solar Panel", p.Name)

	_, err = svc.FindForSale(ctx, "891")
	assert.ErrorIs(t, err, ErrOutOfStock)

	_, err = svc.FindForSale(ctx, "000")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
