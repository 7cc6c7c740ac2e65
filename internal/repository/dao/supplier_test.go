package dao

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplierDAO(t *testing.T) {
	ctx := context.Background()
	d := NewSupplierDAO(newTestDB(t))

	s1, err := d.Insert(ctx, Supplier{Name: "Ravi", Company: "Sun Traders"})
	require.NoError(t, err)
	s2, err := d.Insert(ctx, Supplier{Name: "Mia", Company: "Volt Co"})
	require.NoError(t, err)

	_, err = d.InsertItem(ctx, SupplierItem{SupplierID: s1.ID, Name: "Panel", Model: "P-1", BuyPrice: decimal.NewFromInt(90), Status: "Active"})
	require.NoError(t, err)
	_, err = d.InsertItem(ctx, SupplierItem{SupplierID: s2.ID, Name: "Wire", Model: "W-1", BuyPrice: decimal.NewFromInt(1), Status: "Active"})
	require.NoError(t, err)

	all, err := d.FindAll(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, s := range all {
		assert.Len(t, s.Items, 1)
	}

	deleted, err := d.Delete(ctx, s1.ID, s2.ID, 999)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	items, err := d.FindItems(ctx, s1.ID, s2.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = d.FindByID(ctx, s1.ID)
	assert.ErrorIs(t, err, ErrSupplierNotFound)
}
