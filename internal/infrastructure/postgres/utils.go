package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/packaging-ledger/internal/domain"
)

// Códigos SQLSTATE relevantes para el ledger.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeRaiseException       = "P0001" // trigger append-only

	classDataException      = "22"
	classIntegrityViolation = "23"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// deterministic indica fallas que se repiten igual en cada intento: datos fuera de rango,
// violaciones de integridad (salvo unicidad, que es carrera) y excepciones de triggers.
func deterministic(code string) bool {
	switch {
	case code == codeRaiseException:
		return true
	case strings.HasPrefix(code, classDataException):
		return true
	case strings.HasPrefix(code, classIntegrityViolation):
		return code != codeUniqueViolation
	}
	return false
}

// classify traduce un error de pgx a la taxonomía de domain. packagingID/warehouseID identifican
// el par afectado cuando se conoce (vacíos si no aplica).
func classify(op string, err error, packagingID, warehouseID string) error {
	if err == nil {
		return nil
	}
	code := pgCode(err)
	switch code {
	case codeLockNotAvailable:
		return &domain.LockTimeoutError{PackagingID: packagingID, WarehouseID: warehouseID, Err: err}
	case codeUniqueViolation, codeSerializationFailure, codeDeadlockDetected:
		return &domain.ConcurrencyConflictError{PackagingID: packagingID, WarehouseID: warehouseID, Err: err}
	}
	return &domain.PersistenceError{Op: op, Err: err, Fatal: deterministic(code)}
}
