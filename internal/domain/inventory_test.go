package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovement_Apply(t *testing.T) {
	tests := []struct {
		name        string
		movement    Movement
		balance     int
		wantDelta   int
		wantBalance int
		wantErr     error
	}{
		{name: "in", movement: Movement{Type: MovementIn, Quantity: 5}, balance: 2, wantDelta: 5, wantBalance: 7},
		{name: "out", movement: Movement{Type: MovementOut, Quantity: 2}, balance: 2, wantDelta: -2, wantBalance: 0},
		{name: "adjust down", movement: Movement{Type: MovementAdjust, Quantity: -1}, balance: 4, wantDelta: -1, wantBalance: 3},
		{name: "out below zero", movement: Movement{Type: MovementOut, Quantity: 3}, balance: 2, wantErr: ErrNegativeStock},
		{name: "adjust below zero", movement: Movement{Type: MovementAdjust, Quantity: -5}, balance: 4, wantErr: ErrNegativeStock},
		{name: "in zero", movement: Movement{Type: MovementIn}, wantErr: ErrInvalidQuantity},
		{name: "out negative", movement: Movement{Type: MovementOut, Quantity: -1}, wantErr: ErrInvalidQuantity},
		{name: "adjust zero", movement: Movement{Type: MovementAdjust}, wantErr: ErrInvalidQuantity},
		{name: "unknown type", movement: Movement{Type: "MOVE", Quantity: 1}, wantErr: ErrInvalidMovement},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := tc.movement.Apply(tc.balance)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantDelta, rec.Quantity)
			assert.Equal(t, tc.wantBalance, rec.BalanceAfter)
			assert.Equal(t, tc.movement.Type, rec.Type)
		})
	}
}

func TestNewPage(t *testing.T) {
	req := PageRequest{Page: 0, PerPage: 500}.Normalize(DefaultPerPage)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, MaxPerPage, req.PerPage)

	req = PageRequest{Page: 2}.Normalize(20)
	assert.Equal(t, 20, req.PerPage)
	assert.Equal(t, 20, req.Offset())

	page := NewPage[int](nil, 41, req)
	assert.Equal(t, 3, page.Pages)
	assert.NotNil(t, page.Items)

	huge := PageRequest{Page: math.MaxInt, PerPage: MaxPerPage}.Normalize(DefaultPerPage)
	assert.Equal(t, MaxPage, huge.Page)
	assert.Equal(t, (MaxPage-1)*MaxPerPage, huge.Offset())
	assert.Positive(t, huge.Offset())
}
