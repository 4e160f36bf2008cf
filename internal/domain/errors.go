package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrLockTimeout       = errors.New("tiempo de espera de bloqueo agotado")
	ErrPersistence       = errors.New("falla de persistencia")
)

// InvalidRequestError solicitud mal formada (traslado a la misma bodega, sin ítems, etc.).
// No es reintentable: el llamador debe corregir la solicitud.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("solicitud inválida: %s", e.Reason)
	}
	return fmt.Sprintf("solicitud inválida: %s: %s", e.Field, e.Reason)
}

func (e *InvalidRequestError) Unwrap() error   { return ErrInvalidInput }
func (e *InvalidRequestError) Retryable() bool { return false }

// Tipos de referencia para ReferenceNotFoundError.
const (
	ReferenceWarehouse   = "warehouse"
	ReferencePackaging   = "packaging"
	ReferenceTransaction = "transaction"
)

// ReferenceNotFoundError una bodega, empaque o transacción referenciada no existe.
type ReferenceNotFoundError struct {
	Kind string
	ID   string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q no encontrado", e.Kind, e.ID)
}

func (e *ReferenceNotFoundError) Unwrap() error   { return ErrNotFound }
func (e *ReferenceNotFoundError) Retryable() bool { return false }

// InsufficientStockError una salida o traslado dejaría el par en negativo.
type InsufficientStockError struct {
	PackagingID string
	WarehouseID string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para empaque %s en bodega %s: disponible %d, solicitado %d",
		e.PackagingID, e.WarehouseID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error   { return ErrInsufficientStock }
func (e *InsufficientStockError) Retryable() bool { return false }

// ConcurrencyConflictError contención transitoria sobre un par (packaging, warehouse).
// Reintentable reenviando la operación completa.
type ConcurrencyConflictError struct {
	PackagingID string
	WarehouseID string
	Err         error
}

func (e *ConcurrencyConflictError) Error() string {
	if e.PackagingID == "" {
		return fmt.Sprintf("conflicto de concurrencia: %v", e.Err)
	}
	return fmt.Sprintf("conflicto de concurrencia en empaque %s / bodega %s: %v", e.PackagingID, e.WarehouseID, e.Err)
}

func (e *ConcurrencyConflictError) Unwrap() []error { return []error{ErrConflict, e.Err} }
func (e *ConcurrencyConflictError) Retryable() bool { return true }

// LockTimeoutError no se obtuvo el bloqueo de fila dentro del tiempo configurado.
type LockTimeoutError struct {
	PackagingID string
	WarehouseID string
	Err         error
}

func (e *LockTimeoutError) Error() string {
	if e.PackagingID == "" {
		return fmt.Sprintf("tiempo de bloqueo agotado: %v", e.Err)
	}
	return fmt.Sprintf("tiempo de bloqueo agotado en empaque %s / bodega %s: %v", e.PackagingID, e.WarehouseID, e.Err)
}

func (e *LockTimeoutError) Unwrap() []error { return []error{ErrLockTimeout, e.Err} }
func (e *LockTimeoutError) Retryable() bool { return true }

// PersistenceError falla del almacenamiento ajena a las reglas de negocio.
// Fatal marca fallas deterministas (integridad, dato fuera de rango) y las que agotaron los reintentos.
type PersistenceError struct {
	Op    string
	Err   error
	Fatal bool
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }
func (e *PersistenceError) Retryable() bool { return !e.Fatal }

// IsRetryable indica si el error (o alguno que envuelva) admite reintento.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}
