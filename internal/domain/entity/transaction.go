package entity

import "time"

// TransactionType tipo de documento de movimiento.
type TransactionType string

// Tipos de transacción de inventario.
const (
	TransactionTypeImport   TransactionType = "IMPORT"   // entrada
	TransactionTypeExport   TransactionType = "EXPORT"   // salida
	TransactionTypeAdjust   TransactionType = "ADJUST"   // ajuste a nivel absoluto
	TransactionTypeTransfer TransactionType = "TRANSFER" // traslado entre bodegas
)

// Valid indica si el tipo es uno de los soportados.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeImport, TransactionTypeExport, TransactionTypeAdjust, TransactionTypeTransfer:
		return true
	}
	return false
}

// Depletes indica si el tipo descuenta stock y requiere verificación de suficiencia.
func (t TransactionType) Depletes() bool {
	return t == TransactionTypeExport || t == TransactionTypeTransfer
}

// TransactionStatus estado del documento. Se fija al crearlo.
type TransactionStatus string

const (
	TransactionStatusDraft     TransactionStatus = "DRAFT"
	TransactionStatusCreated   TransactionStatus = "CREATED"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
)

// Valid indica si el estado es uno de los soportados.
func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusDraft, TransactionStatusCreated, TransactionStatusCompleted:
		return true
	}
	return false
}

// Transaction cabecera de un documento de movimiento (ledger append-only).
// ToWarehouseID solo se llena cuando Type es TRANSFER.
type Transaction struct {
	ID              string
	Type            TransactionType
	FromWarehouseID string
	ToWarehouseID   string
	Note            string
	TransactionDate time.Time
	Status          TransactionStatus
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Items           []TransactionItem
}

// TransactionItem línea del documento. Quantity es la magnitud enviada por el llamador;
// SignedQuantity es el delta aplicado a InventoryRecord.Quantity.
type TransactionItem struct {
	ID             string
	TransactionID  string
	PackagingID    string
	WarehouseID    string
	Quantity       int64
	SignedQuantity int64
}
