package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/packaging-ledger/internal/domain"
	"github.com/jhoicas/packaging-ledger/internal/domain/entity"
	"github.com/jhoicas/packaging-ledger/internal/domain/repository"
)

// TransactionValidator verifica precondiciones estructurales y referenciales de una solicitud.
// No muta nada; solo consulta las bodegas y empaques.
type TransactionValidator struct {
	warehouses repository.WarehouseLookup
	packagings repository.PackagingLookup
}

// NewTransactionValidator construye el validador.
func NewTransactionValidator(warehouses repository.WarehouseLookup, packagings repository.PackagingLookup) *TransactionValidator {
	return &TransactionValidator{warehouses: warehouses, packagings: packagings}
}

// Validate revisa primero la forma de la solicitud y luego la existencia de cada referencia.
func (v *TransactionValidator) Validate(ctx context.Context, in SubmitTransactionInput) error {
	if err := validateShape(in); err != nil {
		return err
	}

	if err := v.warehouseExists(ctx, in.FromWarehouseID); err != nil {
		return err
	}
	if in.Type == entity.TransactionTypeTransfer {
		if err := v.warehouseExists(ctx, in.ToWarehouseID); err != nil {
			return err
		}
	}

	checked := make(map[string]struct{}, len(in.Items))
	for _, it := range in.Items {
		if _, ok := checked[it.PackagingID]; ok {
			continue
		}
		checked[it.PackagingID] = struct{}{}
		ok, err := v.packagings.Exists(ctx, it.PackagingID)
		if err != nil {
			return lookupError("lookup packaging "+it.PackagingID, err)
		}
		if !ok {
			return &domain.ReferenceNotFoundError{Kind: domain.ReferencePackaging, ID: it.PackagingID}
		}
	}
	return nil
}

func (v *TransactionValidator) warehouseExists(ctx context.Context, id string) error {
	ok, err := v.warehouses.Exists(ctx, id)
	if err != nil {
		return lookupError("lookup warehouse "+id, err)
	}
	if !ok {
		return &domain.ReferenceNotFoundError{Kind: domain.ReferenceWarehouse, ID: id}
	}
	return nil
}

// lookupError conserva los errores que el almacenamiento ya tipó y envuelve el resto como PersistenceError.
func lookupError(op string, err error) error {
	var typed interface{ Retryable() bool }
	if errors.As(err, &typed) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

func validateShape(in SubmitTransactionInput) error {
	if in.ActorID == "" {
		return &domain.InvalidRequestError{Field: "actor", Reason: "requerido"}
	}
	if !in.Type.Valid() {
		return &domain.InvalidRequestError{Field: "type", Reason: "debe ser IMPORT, EXPORT, ADJUST o TRANSFER"}
	}
	if !in.Status.Valid() {
		return &domain.InvalidRequestError{Field: "status", Reason: "debe ser DRAFT, CREATED o COMPLETED"}
	}
	if in.FromWarehouseID == "" {
		return &domain.InvalidRequestError{Field: "from_warehouse_id", Reason: "requerido"}
	}
	if in.Type == entity.TransactionTypeTransfer {
		if in.ToWarehouseID == "" {
			return &domain.InvalidRequestError{Field: "to_warehouse_id", Reason: "requerido para TRANSFER"}
		}
		if in.ToWarehouseID == in.FromWarehouseID {
			return &domain.InvalidRequestError{Field: "to_warehouse_id", Reason: "debe ser distinta de la bodega origen"}
		}
	} else if in.ToWarehouseID != "" {
		return &domain.InvalidRequestError{Field: "to_warehouse_id", Reason: "solo se permite en TRANSFER"}
	}
	if len(in.Items) == 0 {
		return &domain.InvalidRequestError{Field: "items", Reason: "se requiere al menos un ítem"}
	}
	for i, it := range in.Items {
		if it.PackagingID == "" {
			return &domain.InvalidRequestError{Field: itemField(i, "packaging_id"), Reason: "requerido"}
		}
		if it.Quantity < 1 {
			return &domain.InvalidRequestError{Field: itemField(i, "quantity"), Reason: "debe ser mayor o igual a 1"}
		}
	}
	return nil
}
