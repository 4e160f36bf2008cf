package inventory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/packaging-ledger/internal/domain"
	"github.com/jhoicas/packaging-ledger/internal/domain/entity"
)

func TestLegs(t *testing.T) {
	legs := Legs(entity.TransactionTypeTransfer, "W1", "W2", "P1", 10)
	require.Len(t, legs, 2)
	assert.Equal(t, Leg{Pair: Pair{"P1", "W1"}, Quantity: 10}, legs[0])
	assert.Equal(t, Leg{Pair: Pair{"P1", "W2"}, Quantity: 10, Inbound: true}, legs[1])

	legs = Legs(entity.TransactionTypeImport, "W1", "", "P1", 3)
	require.Len(t, legs, 1)
	assert.True(t, legs[0].Inbound)

	legs = Legs(entity.TransactionTypeExport, "W1", "", "P1", 3)
	require.Len(t, legs, 1)
	assert.False(t, legs[0].Inbound)
	assert.Equal(t, "W1", legs[0].WarehouseID)
}

func TestSignedQuantity(t *testing.T) {
	out := Leg{Pair: Pair{"P1", "W1"}, Quantity: 10}
	in := Leg{Pair: Pair{"P1", "W2"}, Quantity: 10, Inbound: true}

	tests := []struct {
		name    string
		typ     entity.TransactionType
		leg     Leg
		current int64
		want    int64
	}{
		{"import", entity.TransactionTypeImport, in, 7, 10},
		{"export", entity.TransactionTypeExport, out, 25, -10},
		{"ajuste hacia abajo", entity.TransactionTypeAdjust, Leg{Pair: Pair{"P1", "W1"}, Quantity: 5}, 15, -10},
		{"ajuste hacia arriba", entity.TransactionTypeAdjust, Leg{Pair: Pair{"P1", "W1"}, Quantity: 20}, 15, 5},
		{"ajuste sin cambio", entity.TransactionTypeAdjust, Leg{Pair: Pair{"P1", "W1"}, Quantity: 15}, 15, 0},
		{"traslado origen", entity.TransactionTypeTransfer, out, 25, -10},
		{"traslado destino", entity.TransactionTypeTransfer, in, 0, 10},
		{"tipo desconocido", entity.TransactionType("X"), out, 25, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SignedQuantity(tt.typ, tt.leg, tt.current))
		})
	}
}

func TestCheckSufficiency(t *testing.T) {
	out := Leg{Pair: Pair{"P1", "W1"}, Quantity: 10}
	in := Leg{Pair: Pair{"P1", "W2"}, Quantity: 10, Inbound: true}

	assert.NoError(t, CheckSufficiency(entity.TransactionTypeExport, out, 10), "dejar en cero es válido")
	assert.NoError(t, CheckSufficiency(entity.TransactionTypeTransfer, in, 0))
	assert.NoError(t, CheckSufficiency(entity.TransactionTypeImport, in, 0))
	assert.NoError(t, CheckSufficiency(entity.TransactionTypeAdjust, Leg{Pair: Pair{"P1", "W1"}, Quantity: 1}, 0))

	err := CheckSufficiency(entity.TransactionTypeTransfer, out, 9)
	var se *domain.InsufficientStockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, int64(9), se.Available)
	assert.Equal(t, int64(10), se.Requested)
	assert.Equal(t, "W1", se.WarehouseID)

	err = CheckSufficiency(entity.TransactionTypeExport, Leg{Pair: Pair{"P1", "W1"}, Quantity: 1}, math.MinInt64)
	require.ErrorAs(t, err, &se, "saldo mínimo no alcanza para descontar")
}

func TestNextBalance(t *testing.T) {
	p := Pair{"P1", "W1"}
	tests := []struct {
		name    string
		typ     entity.TransactionType
		leg     Leg
		current int64
		delta   int64
		next    int64
		ok      bool
	}{
		{"import", entity.TransactionTypeImport, Leg{Pair: p, Quantity: 5, Inbound: true}, 10, 5, 15, true},
		{"import al límite", entity.TransactionTypeImport, Leg{Pair: p, Quantity: 1, Inbound: true}, math.MaxInt64 - 1, 1, math.MaxInt64, true},
		{"import desborda", entity.TransactionTypeImport, Leg{Pair: p, Quantity: 1, Inbound: true}, math.MaxInt64, 0, 0, false},
		{"entrada de transfer desborda", entity.TransactionTypeTransfer, Leg{Pair: p, Quantity: math.MaxInt64, Inbound: true}, 1, 0, 0, false},
		{"export", entity.TransactionTypeExport, Leg{Pair: p, Quantity: 4}, 10, -4, 6, true},
		{"export bajo mínimo", entity.TransactionTypeExport, Leg{Pair: p, Quantity: 1}, math.MinInt64, 0, 0, false},
		{"adjust", entity.TransactionTypeAdjust, Leg{Pair: p, Quantity: 5}, 15, -10, 5, true},
		{"adjust desde negativo", entity.TransactionTypeAdjust, Leg{Pair: p, Quantity: 3}, -2, 5, 3, true},
		{"adjust desborda el delta", entity.TransactionTypeAdjust, Leg{Pair: p, Quantity: math.MaxInt64}, -1, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, next, ok := NextBalance(tt.typ, tt.leg, tt.current)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.delta, delta)
				assert.Equal(t, tt.next, next)
			}
		})
	}
}

func TestSortPairs(t *testing.T) {
	pairs := []Pair{{"P2", "W1"}, {"P1", "W2"}, {"P1", "W1"}}
	SortPairs(pairs)
	assert.Equal(t, []Pair{{"P1", "W1"}, {"P1", "W2"}, {"P2", "W1"}}, pairs)
}

func TestReplay(t *testing.T) {
	items := []entity.TransactionItem{
		{PackagingID: "P1", WarehouseID: "W1", SignedQuantity: 25},
		{PackagingID: "P1", WarehouseID: "W1", SignedQuantity: -10},
		{PackagingID: "P1", WarehouseID: "W2", SignedQuantity: 10},
		{PackagingID: "P1", WarehouseID: "W1", SignedQuantity: -10},
	}
	got := Replay(items)
	assert.Equal(t, map[Pair]int64{{"P1", "W1"}: 5, {"P1", "W2"}: 10}, got)
	assert.Empty(t, Replay(nil))
}
