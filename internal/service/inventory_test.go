package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/inventory-api/internal/domain"
)

func TestInventoryService_RecordMovement(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	enqueuer := &enqueuerStub{}
	svc := NewInventoryService(env.tx, env.records, env.suppliers, env.ledger, enqueuer, 3)

	supplier, err := env.suppliers.Create(ctx, domain.Supplier{Name: "Sun Co", Company: "Sun Co Ltd"})
	require.NoError(t, err)
	p := env.seedProduct(t, "Panel", "100", 5)

	in, err := svc.RecordMovement(ctx, domain.Movement{
		ProductID:  p.ID,
		SupplierID: &supplier.ID,
		Type:       domain.MovementIn,
		Quantity:   10,
		UnitCost:   dec("45.50"),
		Reference:  "PO-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 15, in.BalanceAfter)
	assert.Equal(t, supplier.ID, *in.SupplierID)

	out, err := svc.RecordMovement(ctx, domain.Movement{
		ProductID:  p.ID,
		SupplierID: &supplier.ID,
		Type:       domain.MovementOut,
		Quantity:   13,
		UnitCost:   dec("1"),
	})
	require.NoError(t, err)
	assert.Equal(t, -13, out.Quantity)
	assert.Equal(t, 2, out.BalanceAfter)
	assert.Nil(t, out.SupplierID)
	assert.True(t, out.UnitCost.IsZero())
	assert.Contains(t, enqueuer.calls, fmt.Sprintf("inventory record %d", out.ID))

	adjust, err := svc.RecordMovement(ctx, domain.Movement{ProductID: p.ID, Type: domain.MovementAdjust, Quantity: -2})
	require.NoError(t, err)
	assert.Equal(t, 0, adjust.BalanceAfter)
	assert.Equal(t, 0, env.quantity(t, p.ID))

	_, err = svc.RecordMovement(ctx, domain.Movement{ProductID: p.ID, Type: domain.MovementOut, Quantity: 1})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.RecordMovement(ctx, domain.Movement{ProductID: p.ID, Type: domain.MovementAdjust})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.RecordMovement(ctx, domain.Movement{ProductID: p.ID, Type: "MOVE", Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidMovement)

	missing := uint(999)
	_, err = svc.RecordMovement(ctx, domain.Movement{ProductID: p.ID, SupplierID: &missing, Type: domain.MovementIn, Quantity: 1})
	assert.ErrorIs(t, err, ErrSupplierNotFound)

	_, err = svc.RecordMovement(ctx, domain.Movement{ProductID: 999, Type: domain.MovementIn, Quantity: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)

	page, err := svc.ListRecords(ctx, domain.InventoryFilter{ProductID: p.ID, Type: domain.MovementIn}, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, domain.DefaultPerPage, page.PerPage)

	got, err := svc.GetRecord(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, "PO-1", got.Reference)

	_, err = svc.GetRecord(ctx, 999)
	assert.ErrorIs(t, err, ErrInventoryRecordNotFound)

	assert.Len(t, env.published.all(), 4)
}
