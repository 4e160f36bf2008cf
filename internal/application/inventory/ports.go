package inventory

import (
	"context"

	"github.com/jhoicas/packaging-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el ledger: o persiste todo (cabecera, ítems, cantidades) o nada.
// La implementación puede reintentar fn completa ante errores reintentables, por lo que fn no debe
// tener efectos fuera de los repositorios recibidos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		inventoryRepo repository.InventoryRepository,
		ledger repository.TransactionLedger,
	) error) error
}

// SnapshotRunner ejecuta lecturas sobre una única instantánea consistente, sin bloqueos ni escrituras.
// Las lecturas hechas dentro de fn ven el mismo estado aunque haya commits concurrentes.
type SnapshotRunner interface {
	ReadSnapshot(ctx context.Context, fn func(
		inventoryRepo repository.InventoryRepository,
		ledger repository.TransactionLedger,
	) error) error
}
