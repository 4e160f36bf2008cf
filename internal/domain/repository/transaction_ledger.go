package repository

import (
	"context"
	"time"

	"github.com/jhoicas/packaging-ledger/internal/domain/entity"
)

// TransactionLedger puerto append-only de transacciones y sus ítems.
// No expone actualización ni borrado.
type TransactionLedger interface {
	Insert(ctx context.Context, header *entity.Transaction, items []entity.TransactionItem) (*entity.Transaction, error)
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, error)
	// CompletedItems devuelve los ítems de transacciones COMPLETED para un par, en orden de creación.
	CompletedItems(ctx context.Context, packagingID, warehouseID string) ([]entity.TransactionItem, error)
}

// TransactionPredicate condición tipada para filtrar transacciones.
// La capa de almacenamiento la traduce a una consulta parametrizada.
type TransactionPredicate interface {
	transactionPredicate()
}

// TypeIs filtra por tipo.
type TypeIs struct{ Type entity.TransactionType }

// StatusIs filtra por estado.
type StatusIs struct{ Status entity.TransactionStatus }

// TouchesWarehouse filtra transacciones con la bodega como origen o destino.
type TouchesWarehouse struct{ WarehouseID string }

// HasPackaging filtra transacciones con al menos un ítem del empaque.
type HasPackaging struct{ PackagingID string }

// DateBetween filtra por transaction_date; From y To son opcionales e inclusivos.
type DateBetween struct {
	From *time.Time
	To   *time.Time
}

func (TypeIs) transactionPredicate()           {}
func (StatusIs) transactionPredicate()         {}
func (TouchesWarehouse) transactionPredicate() {}
func (HasPackaging) transactionPredicate()     {}
func (DateBetween) transactionPredicate()      {}

// TransactionFilter combina predicados (AND) con paginación.
type TransactionFilter struct {
	Predicates []TransactionPredicate
	Limit      int
	Offset     int
}
