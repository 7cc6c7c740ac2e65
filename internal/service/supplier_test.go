package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/inventory-api/internal/domain"
)

type fileRemoverMock struct {
	mock.Mock
}

func (m *fileRemoverMock) Delete(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func TestSupplierService_Items(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	files := &fileRemoverMock{}
	svc := NewSupplierService(env.suppliers, files)

	supplier, err := svc.CreateSupplier(ctx, domain.Supplier{Name: "Sun", Company: "Sun Co"})
	require.NoError(t, err)

	item, err := svc.CreateItem(ctx, domain.SupplierItem{
		SupplierID: supplier.ID,
		Name:       "Panel",
		Model:      "P-1",
		BuyPrice:   dec("50"),
		Attachment: "/uploads/a_quote.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusActive, item.Status)

	_, err = svc.CreateItem(ctx, domain.SupplierItem{SupplierID: 999, Name: "x", Model: "y"})
	assert.ErrorIs(t, err, ErrSupplierNotFound)

	files.On("Delete", mock.Anything, "/uploads/a_quote.pdf").Return(nil).Once()
	updated, err := svc.UpdateItem(ctx, item.ID, domain.SupplierItemUpdate{
		Attachment: ptr("/uploads/b_quote.pdf"),
		Status:     ptr(domain.ItemStatusInactive),
	})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/b_quote.pdf", updated.Attachment)
	assert.Equal(t, domain.ItemStatusInactive, updated.Status)

	items, err := svc.ListItems(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	files.On("Delete", mock.Anything, "/uploads/b_quote.pdf").Return(nil).Once()
	require.NoError(t, svc.DeleteItem(ctx, item.ID))
	assert.ErrorIs(t, svc.DeleteItem(ctx, item.ID), ErrSupplierItemNotFound)

	files.AssertExpectations(t)
}

func TestSupplierService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	files := &fileRemoverMock{}
	svc := NewSupplierService(env.suppliers, files)

	var ids []uint
	for _, name := range []string{"A", "B", "C"} {
		s, err := svc.CreateSupplier(ctx, domain.Supplier{Name: name, Company: name + " Ltd"})
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}
	_, err := svc.CreateItem(ctx, domain.SupplierItem{SupplierID: ids[0], Name: "Panel", Model: "P", Attachment: "/uploads/x.pdf"})
	require.NoError(t, err)

	updated, err := svc.UpdateSupplier(ctx, ids[1], domain.SupplierUpdate{Phone: ptr("555")})
	require.NoError(t, err)
	assert.Equal(t, "555", updated.Phone)
	assert.Equal(t, "B", updated.Name)

	_, err = svc.BulkDeleteSuppliers(ctx, nil)
	assert.ErrorIs(t, err, ErrNoSupplierIDs)

	files.On("Delete", mock.Anything, "/uploads/x.pdf").Return(nil).Once()
	n, err := svc.BulkDeleteSuppliers(ctx, []uint{ids[0], ids[1], 999})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, svc.DeleteSupplier(ctx, ids[2]))
	assert.ErrorIs(t, svc.DeleteSupplier(ctx, ids[2]), ErrSupplierNotFound)

	all, err := svc.ListSuppliers(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, all)

	files.AssertExpectations(t)
}
