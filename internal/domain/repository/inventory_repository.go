package repository

import (
	"context"

	"github.com/jhoicas/packaging-ledger/internal/domain/entity"
)

// InventoryRepository define el puerto sobre inventory_records.
// GetOrCreate y ApplyDeltas se usan dentro de la unidad de trabajo de TxRunner.
type InventoryRepository interface {
	// GetOrCreate devuelve el registro del par (creándolo en 0 si no existe) y bloquea la fila
	// hasta el fin de la transacción (SELECT FOR UPDATE).
	GetOrCreate(ctx context.Context, packagingID, warehouseID string) (*entity.InventoryRecord, error)
	// ApplyDeltas suma el signed_quantity de cada ítem de la transacción al registro del par.
	ApplyDeltas(ctx context.Context, transactionID string) error
	// Get lectura sin bloqueo; un par inexistente se devuelve con cantidad 0.
	Get(ctx context.Context, packagingID, warehouseID string) (*entity.InventoryRecord, error)
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryRecord, error)
}
