package inventory

import (
	"math"
	"sort"

	"github.com/jhoicas/packaging-ledger/internal/domain"
	"github.com/jhoicas/packaging-ledger/internal/domain/entity"
)

// Pair identifica un registro de inventario (empaque en bodega).
type Pair struct {
	PackagingID string
	WarehouseID string
}

// Leg tramo de una línea de transacción sobre un par. Un TRANSFER genera dos tramos
// (salida en origen, entrada en destino); los demás tipos generan uno.
type Leg struct {
	Pair
	Quantity int64
	Inbound  bool
}

// Legs expande una línea de entrada en los tramos que afecta.
func Legs(t entity.TransactionType, fromWarehouseID, toWarehouseID, packagingID string, quantity int64) []Leg {
	if t == entity.TransactionTypeTransfer {
		return []Leg{
			{Pair: Pair{PackagingID: packagingID, WarehouseID: fromWarehouseID}, Quantity: quantity},
			{Pair: Pair{PackagingID: packagingID, WarehouseID: toWarehouseID}, Quantity: quantity, Inbound: true},
		}
	}
	return []Leg{{
		Pair:     Pair{PackagingID: packagingID, WarehouseID: fromWarehouseID},
		Quantity: quantity,
		Inbound:  t == entity.TransactionTypeImport,
	}}
}

// SignedQuantity calcula el delta a aplicar sobre la cantidad actual del par.
//
//	IMPORT:   +quantity
//	EXPORT:   -quantity
//	ADJUST:   quantity - current (quantity es el nuevo nivel absoluto)
//	TRANSFER: -quantity en origen, +quantity en destino
func SignedQuantity(t entity.TransactionType, leg Leg, current int64) int64 {
	switch t {
	case entity.TransactionTypeImport:
		return leg.Quantity
	case entity.TransactionTypeExport:
		return -leg.Quantity
	case entity.TransactionTypeAdjust:
		return leg.Quantity - current
	case entity.TransactionTypeTransfer:
		if leg.Inbound {
			return leg.Quantity
		}
		return -leg.Quantity
	}
	return 0
}

// NextBalance devuelve el delta del tramo y el saldo resultante del par. ok es false cuando
// alguno de los dos no cabe en int64; en ese caso la línea debe rechazarse.
func NextBalance(t entity.TransactionType, leg Leg, current int64) (delta, next int64, ok bool) {
	if t == entity.TransactionTypeAdjust {
		// quantity >= 0, así que quantity - current solo desborda con current negativo.
		if current < 0 && leg.Quantity > math.MaxInt64+current {
			return 0, 0, false
		}
		return leg.Quantity - current, leg.Quantity, true
	}
	delta = SignedQuantity(t, leg, current)
	if (delta > 0 && current > math.MaxInt64-delta) || (delta < 0 && current < math.MinInt64-delta) {
		return 0, 0, false
	}
	return delta, current + delta, true
}

// CheckSufficiency verifica que un tramo que descuenta no deje el par en negativo.
// IMPORT, ADJUST y la entrada de un TRANSFER no se verifican.
func CheckSufficiency(t entity.TransactionType, leg Leg, current int64) error {
	if !t.Depletes() || leg.Inbound {
		return nil
	}
	if current < leg.Quantity {
		return &domain.InsufficientStockError{
			PackagingID: leg.PackagingID,
			WarehouseID: leg.WarehouseID,
			Available:   current,
			Requested:   leg.Quantity,
		}
	}
	return nil
}

// SortPairs ordena los pares por packaging_id y luego warehouse_id.
// Bloquear siempre en este orden evita interbloqueos entre transacciones con pares en común.
func SortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].PackagingID != pairs[j].PackagingID {
			return pairs[i].PackagingID < pairs[j].PackagingID
		}
		return pairs[i].WarehouseID < pairs[j].WarehouseID
	})
}

// Replay reconstruye cantidades sumando signed_quantity desde una base en cero.
func Replay(items []entity.TransactionItem) map[Pair]int64 {
	out := make(map[Pair]int64)
	for _, it := range items {
		out[Pair{PackagingID: it.PackagingID, WarehouseID: it.WarehouseID}] += it.SignedQuantity
	}
	return out
}
